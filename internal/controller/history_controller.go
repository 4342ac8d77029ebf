// internal/controller/history_controller.go
package controller

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/service"
)

type HistoryController struct {
	HistoryService *service.HistoryService
	Logger         *zap.Logger
}

func (c *HistoryController) ListSendHistory(w http.ResponseWriter, r *http.Request) {
	histories, pagination, err := c.HistoryService.ListSends(r.Context(), queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondErr(w, c.Logger, "failed to list send history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"histories":  histories,
		"pagination": pagination,
	})
}

func (c *HistoryController) GetSendHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	history, err := c.HistoryService.GetSend(r.Context(), id)
	if err != nil {
		respondErr(w, c.Logger, "failed to load send history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": history})
}

func (c *HistoryController) DeleteSendHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if err := c.HistoryService.DeleteSend(r.Context(), id); err != nil {
		respondErr(w, c.Logger, "failed to delete send history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *HistoryController) DeleteAllSendHistory(w http.ResponseWriter, r *http.Request) {
	n, err := c.HistoryService.DeleteAllSends(r.Context())
	if err != nil {
		respondErr(w, c.Logger, "failed to delete send history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedCount": n})
}

// ExportSendHistory writes every send as a BOM-prefixed UTF-8 CSV.
func (c *HistoryController) ExportSendHistory(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	buf.WriteString("\ufeff")
	if err := c.HistoryService.ExportSends(r.Context(), &buf); err != nil {
		respondErr(w, c.Logger, "failed to export send history", err)
		return
	}

	fileName := fmt.Sprintf("send-history-%s.csv", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (c *HistoryController) ListImportHistory(w http.ResponseWriter, r *http.Request) {
	batches, err := c.HistoryService.ListImports(r.Context(), queryInt(r, "limit"))
	if err != nil {
		respondErr(w, c.Logger, "failed to list import history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"histories": batches})
}

// DeleteImportHistory removes the record named by ?id, or all records.
func (c *HistoryController) DeleteImportHistory(w http.ResponseWriter, r *http.Request) {
	id, err := queryIntPtr(r, "id")
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	n, err := c.HistoryService.DeleteImports(r.Context(), id)
	if err != nil {
		respondErr(w, c.Logger, "failed to delete import history", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "deletedCount": n})
}
