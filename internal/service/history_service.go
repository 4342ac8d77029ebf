// internal/service/history_service.go
package service

import (
	"context"
	"io"

	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
)

const DefaultImportHistoryLimit = 20

// HistoryService reads and prunes send and import records.
type HistoryService struct {
	SendRepo   repository.SendHistoryRepositoryInterface
	ImportRepo repository.ImportBatchRepositoryInterface
}

func (s *HistoryService) ListSends(ctx context.Context, page, limit int) ([]model.SendHistory, Pagination, error) {
	page, limit, offset := normalizePage(page, limit)
	histories, total, err := s.SendRepo.List(ctx, offset, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return histories, newPagination(page, limit, total), nil
}

func (s *HistoryService) GetSend(ctx context.Context, id int) (*model.SendHistory, error) {
	return s.SendRepo.GetByID(ctx, id)
}

func (s *HistoryService) DeleteSend(ctx context.Context, id int) error {
	return s.SendRepo.Delete(ctx, id)
}

func (s *HistoryService) DeleteAllSends(ctx context.Context) (int64, error) {
	return s.SendRepo.DeleteAll(ctx)
}

// ExportSends writes every send history as CSV, newest first.
func (s *HistoryService) ExportSends(ctx context.Context, w io.Writer) error {
	histories, err := s.SendRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	return WriteHistoryCSV(w, histories)
}

func (s *HistoryService) ListImports(ctx context.Context, limit int) ([]model.ImportBatch, error) {
	if limit < 1 {
		limit = DefaultImportHistoryLimit
	}
	return s.ImportRepo.List(ctx, limit)
}

// DeleteImports removes one record, or all when id is nil.
func (s *HistoryService) DeleteImports(ctx context.Context, id *int) (int64, error) {
	if id == nil {
		return s.ImportRepo.DeleteAll(ctx)
	}
	if err := s.ImportRepo.Delete(ctx, *id); err != nil {
		return 0, err
	}
	return 1, nil
}
