// internal/service/import_service.go
package service

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/logger"
	"github.com/unclebandit/salesmail-backend/internal/metrics"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/repository"
)

const (
	DefaultImportChunkSize = 1000
	UnclassifiedIndustry   = "未分類"
)

var (
	xlsxFileName = regexp.MustCompile(`^(.+?)\.xlsx`)
	csvFileName  = regexp.MustCompile(`^(.+?)\.csv`)
)

type ImportService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	IndustryRepo repository.IndustryRepositoryInterface
	BatchRepo    repository.ImportBatchRepositoryInterface
	ChunkSize    int
	Logger       *zap.Logger
}

// ImportSummary is the outcome of one import run.
type ImportSummary struct {
	FileName          string `json:"file_name"`
	Industry          string `json:"industry"`
	TotalRows         int    `json:"total_rows"`
	Processed         int    `json:"processed"`
	SuccessCount      int    `json:"success_count"`
	ErrorCount        int    `json:"error_count"`
	IndustriesTouched int    `json:"industries"`
	CategoriesTouched int    `json:"categories"`
	BatchID           int    `json:"batch_id,omitempty"`
}

type categoryKey struct {
	name       string
	industryID int
}

// resolutionCache is owned by a single import run.
type resolutionCache struct {
	industries map[string]int
	categories map[categoryKey]int
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{
		industries: map[string]int{},
		categories: map[categoryKey]int{},
	}
}

// IndustryFromFileName derives the industry label of a whole file, e.g.
// "通信業.xlsx - シート1.csv" -> "通信業".
func IndustryFromFileName(fileName string) string {
	for _, re := range []*regexp.Regexp{xlsxFileName, csvFileName} {
		if m := re.FindStringSubmatch(fileName); m != nil {
			if label := strings.TrimSpace(m[1]); label != "" {
				return label
			}
		}
	}
	return UnclassifiedIndustry
}

// ReadCSVRecords parses a header-row CSV into one map per data row. A UTF-8
// BOM is skipped and header names are trimmed. Blank rows are dropped.
func ReadCSVRecords(r io.Reader) ([]map[string]string, error) {
	br := bufio.NewReader(r)
	if bom, err := br.Peek(3); err == nil && string(bom) == "\ufeff" {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	records := []map[string]string{}
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV row: %w", err)
		}
		if isBlankRow(fields) {
			continue
		}
		record := make(map[string]string, len(header))
		for i, name := range header {
			if _, seen := record[name]; seen {
				continue
			}
			if i < len(fields) {
				record[name] = fields[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records, nil
}

func isBlankRow(fields []string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type pendingCustomer struct {
	line     int
	customer *model.Customer
}

// ImportFile reads a CSV export and upserts every valid row as a customer
// keyed by email. Row failures are counted and never abort the file.
func (s *ImportService) ImportFile(ctx context.Context, fileName string, r io.Reader) (*ImportSummary, error) {
	log := s.logger().With(zap.String("file", fileName))

	records, err := ReadCSVRecords(r)
	if err != nil {
		return nil, appErrors.NewValidation("invalid CSV file: %v", err)
	}
	if len(records) == 0 {
		return nil, appErrors.NewValidation("CSV file has no data rows")
	}

	if err := s.CustomerRepo.Ping(ctx); err != nil {
		return nil, appErrors.NewUnavailable("storage", err)
	}

	summary := &ImportSummary{
		FileName:  fileName,
		Industry:  IndustryFromFileName(fileName),
		TotalRows: len(records),
	}
	log.Info("starting customer import",
		zap.String("industry", summary.Industry),
		zap.Int("rows", summary.TotalRows),
	)

	chunkSize := s.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultImportChunkSize
	}
	cache := newResolutionCache()

	for start := 0; start < len(records); start += chunkSize {
		end := min(start+chunkSize, len(records))
		s.importChunk(ctx, log, records[start:end], start, summary, cache)
		summary.Processed += end - start
	}

	summary.IndustriesTouched = len(cache.industries)
	summary.CategoriesTouched = len(cache.categories)

	batch := &model.ImportBatch{
		FileName:        fileName,
		TotalRows:       summary.TotalRows,
		SuccessCount:    summary.SuccessCount,
		ErrorCount:      summary.ErrorCount,
		IndustriesCount: summary.IndustriesTouched,
		CategoriesCount: summary.CategoriesTouched,
	}
	if err := s.BatchRepo.Create(ctx, batch); err != nil {
		log.Error("failed to record import batch", zap.Error(err))
	} else {
		summary.BatchID = batch.ID
	}
	metrics.ImportsCompleted.Inc()

	log.Info("customer import finished",
		zap.Int("processed", summary.Processed),
		zap.Int("success", summary.SuccessCount),
		zap.Int("errors", summary.ErrorCount),
		zap.Int("industries", summary.IndustriesTouched),
		zap.Int("categories", summary.CategoriesTouched),
	)
	return summary, nil
}

// importChunk normalizes and resolves every row of the chunk in input order,
// then upserts the survivors in the same order.
func (s *ImportService) importChunk(ctx context.Context, log *zap.Logger, rows []map[string]string, offset int, summary *ImportSummary, cache *resolutionCache) {
	pending := make([]pendingCustomer, 0, len(rows))

	for i, row := range rows {
		line := offset + i + 1
		normalized, ok := NormalizeRow(row, summary.Industry)
		if !ok {
			log.Debug("skipping row without a usable email",
				zap.Int("line", line),
				zap.String("email", logger.RedactEmail(emailRule.extract(row))),
			)
			summary.ErrorCount++
			metrics.ImportedRows.WithLabelValues("skipped").Inc()
			continue
		}

		customer, err := s.resolve(ctx, normalized, cache)
		if err != nil {
			log.Warn("failed to resolve industry/category", zap.Int("line", line), zap.Error(err))
			summary.ErrorCount++
			metrics.ImportedRows.WithLabelValues("failed").Inc()
			continue
		}
		pending = append(pending, pendingCustomer{line: line, customer: customer})
	}

	for _, p := range pending {
		if err := s.CustomerRepo.UpsertByEmail(ctx, p.customer); err != nil {
			log.Warn("customer upsert failed",
				zap.Int("line", p.line),
				zap.String("email", logger.RedactEmail(p.customer.Email)),
				zap.Error(err),
			)
			summary.ErrorCount++
			metrics.ImportedRows.WithLabelValues("failed").Inc()
			continue
		}
		summary.SuccessCount++
		metrics.ImportedRows.WithLabelValues("success").Inc()
	}
}

// resolve maps the row's industry and category names to ids, creating them
// on first sight.
func (s *ImportService) resolve(ctx context.Context, n *NormalizedCustomer, cache *resolutionCache) (*model.Customer, error) {
	customer := &model.Customer{
		Name:  n.Name,
		Email: strings.ToLower(n.Email),
	}
	if n.Company != "" {
		customer.Company = &n.Company
	}
	if n.Position != "" {
		customer.Position = &n.Position
	}
	if n.Industry == "" {
		return customer, nil
	}

	industryID, ok := cache.industries[n.Industry]
	if !ok {
		industry, err := s.IndustryRepo.GetOrCreateIndustry(ctx, n.Industry)
		if err != nil {
			return nil, fmt.Errorf("industry %q: %w", n.Industry, err)
		}
		industryID = industry.ID
		cache.industries[n.Industry] = industryID
	}
	customer.IndustryID = &industryID

	if n.Category == "" {
		return customer, nil
	}
	key := categoryKey{name: n.Category, industryID: industryID}
	categoryID, ok := cache.categories[key]
	if !ok {
		category, err := s.IndustryRepo.GetOrCreateCategory(ctx, n.Category, industryID)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", n.Category, err)
		}
		categoryID = category.ID
		cache.categories[key] = categoryID
	}
	customer.CategoryID = &categoryID
	return customer, nil
}

func (s *ImportService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
