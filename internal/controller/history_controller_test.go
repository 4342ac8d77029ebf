package controller_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/salesmail-backend/internal/controller"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

func newHistoryController(sends *MockHistoryRepo, imports *MockBatchRepo) *controller.HistoryController {
	return &controller.HistoryController{
		HistoryService: &service.HistoryService{SendRepo: sends, ImportRepo: imports},
	}
}

func TestSendHistoryEndpoints(t *testing.T) {
	sends := &MockHistoryRepo{Histories: []model.SendHistory{
		{ID: 1, Subject: "秋のご案内", TotalRecipients: 4, SuccessCount: 3, FailedCount: 1},
		{ID: 2, Subject: "新製品", TotalRecipients: 2, SuccessCount: 2},
	}}
	ctrl := newHistoryController(sends, &MockBatchRepo{})

	w := httptest.NewRecorder()
	ctrl.ListSendHistory(w, httptest.NewRequest("GET", "/history?page=1&limit=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	res := decodeBody(t, w)
	assert.Len(t, res["histories"], 1)
	assert.EqualValues(t, 2, res["pagination"].(map[string]any)["totalPages"])

	w = httptest.NewRecorder()
	ctrl.GetSendHistory(w, withURLParam(httptest.NewRequest("GET", "/history/2", nil), "id", "2"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "新製品")

	w = httptest.NewRecorder()
	ctrl.DeleteSendHistory(w, withURLParam(httptest.NewRequest("DELETE", "/history/7", nil), "id", "7"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	ctrl.DeleteSendHistory(w, withURLParam(httptest.NewRequest("DELETE", "/history/1", nil), "id", "1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sends.Histories, 1)

	w = httptest.NewRecorder()
	ctrl.DeleteAllSendHistory(w, httptest.NewRequest("DELETE", "/history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sends.Histories)
}

func TestExportSendHistory(t *testing.T) {
	sentAt := time.Date(2024, 3, 5, 14, 7, 0, 0, time.UTC)
	sends := &MockHistoryRepo{Histories: []model.SendHistory{
		{ID: 1, Subject: "秋のご案内", TotalRecipients: 3, SuccessCount: 2, FailedCount: 1, SentAt: sentAt},
	}}
	ctrl := newHistoryController(sends, &MockBatchRepo{})

	w := httptest.NewRecorder()
	ctrl.ExportSendHistory(w, httptest.NewRequest("GET", "/history/export.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment;")

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "\ufeff"))
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "送信日時,件名,総送信数,成功数,失敗数,成功率", lines[0])
	assert.Equal(t, "2024/03/05 14:07,秋のご案内,3,2,1,67%", lines[1])
}

func TestImportHistoryEndpoints(t *testing.T) {
	imports := &MockBatchRepo{Batches: []model.ImportBatch{
		{ID: 1, FileName: "a.csv"}, {ID: 2, FileName: "b.csv"}, {ID: 3, FileName: "c.csv"},
	}}
	ctrl := newHistoryController(&MockHistoryRepo{}, imports)

	w := httptest.NewRecorder()
	ctrl.ListImportHistory(w, httptest.NewRequest("GET", "/import-history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["histories"], 3)

	w = httptest.NewRecorder()
	ctrl.DeleteImportHistory(w, httptest.NewRequest("DELETE", "/import-history?id=2", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["deletedCount"])
	assert.Len(t, imports.Batches, 2)

	w = httptest.NewRecorder()
	ctrl.DeleteImportHistory(w, httptest.NewRequest("DELETE", "/import-history?id=two", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	ctrl.DeleteImportHistory(w, httptest.NewRequest("DELETE", "/import-history", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["deletedCount"])
	assert.Empty(t, imports.Batches)
}
