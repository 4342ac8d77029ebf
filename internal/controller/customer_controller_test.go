package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/salesmail-backend/internal/controller"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var res map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	return res
}

func newCustomerController(repo *MockCustomerRepo) *controller.CustomerController {
	industries := &MockIndustryRepo{}
	return &controller.CustomerController{
		CustomerService: &service.CustomerService{CustomerRepo: repo, IndustryRepo: industries},
		ImportService: &service.ImportService{
			CustomerRepo: repo,
			IndustryRepo: industries,
			BatchRepo:    &MockBatchRepo{},
		},
	}
}

func seedCustomers(n int) []model.Customer {
	customers := make([]model.Customer, 0, n)
	for i := 1; i <= n; i++ {
		customers = append(customers, model.Customer{
			ID:    i,
			Name:  "Customer " + strconv.Itoa(i),
			Email: "c" + strconv.Itoa(i) + "@example.co.jp",
		})
	}
	return customers
}

func TestListCustomersPagination(t *testing.T) {
	repo := &MockCustomerRepo{Customers: seedCustomers(25)}
	ctrl := newCustomerController(repo)

	pageSize := 10
	seen := map[int]bool{}
	for page := 1; page <= 3; page++ {
		req := httptest.NewRequest("GET",
			"/customers?page="+strconv.Itoa(page)+"&limit="+strconv.Itoa(pageSize)+"&industryId=4&sectorId=9&search=foo", nil)
		w := httptest.NewRecorder()
		ctrl.ListCustomers(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Customers  []model.Customer   `json:"customers"`
			Pagination service.Pagination `json:"pagination"`
		}
		require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
		assert.Equal(t, 25, res.Pagination.Total)
		assert.Equal(t, 3, res.Pagination.TotalPages)
		assert.Equal(t, page, res.Pagination.Page)
		for _, c := range res.Customers {
			assert.False(t, seen[c.ID], "customer %d returned twice", c.ID)
			seen[c.ID] = true
		}
	}
	assert.Len(t, seen, 25)

	require.NotNil(t, repo.LastQuery.IndustryID)
	require.NotNil(t, repo.LastQuery.CategoryID)
	assert.Equal(t, 4, *repo.LastQuery.IndustryID)
	assert.Equal(t, 9, *repo.LastQuery.CategoryID)
	assert.Equal(t, "foo", repo.LastQuery.Search)
}

func TestListCustomersRejectsBadFilter(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{})
	w := httptest.NewRecorder()
	ctrl.ListCustomers(w, httptest.NewRequest("GET", "/customers?industry_id=abc", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeBody(t, w)["error"], "industry_id")
}

func TestListCustomersStorageFailure(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{ListErr: errBoom})
	w := httptest.NewRecorder()
	ctrl.ListCustomers(w, httptest.NewRequest("GET", "/customers", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decodeBody(t, w)
	assert.Equal(t, "failed to list customers", res["error"])
	assert.Equal(t, "boom", res["details"])
}

func TestGetCustomer(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{Customers: seedCustomers(2)})

	w := httptest.NewRecorder()
	ctrl.GetCustomer(w, withURLParam(httptest.NewRequest("GET", "/customers/2", nil), "id", "2"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "c2@example.co.jp")

	w = httptest.NewRecorder()
	ctrl.GetCustomer(w, withURLParam(httptest.NewRequest("GET", "/customers/99", nil), "id", "99"))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	ctrl.GetCustomer(w, withURLParam(httptest.NewRequest("GET", "/customers/x", nil), "id", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCustomer(t *testing.T) {
	repo := &MockCustomerRepo{Customers: seedCustomers(2)}
	ctrl := newCustomerController(repo)

	update := func(id, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("PUT", "/customers/"+id, strings.NewReader(body))
		w := httptest.NewRecorder()
		ctrl.UpdateCustomer(w, withURLParam(req, "id", id))
		return w
	}

	w := update("1", `{"name":" 山田 太郎 ","email":"Yamada@Example.co.jp","company":"  "}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yamada@example.co.jp", repo.Customers[0].Email)
	assert.Equal(t, "山田 太郎", repo.Customers[0].Name)
	assert.Nil(t, repo.Customers[0].Company)

	w = update("1", `{"name":"A","email":"c2@example.co.jp"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = update("1", `{"name":"A","email":"not-an-email"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = update("1", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = update("42", `{"name":"A","email":"a@example.com"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteCustomers(t *testing.T) {
	repo := &MockCustomerRepo{Customers: seedCustomers(3)}
	ctrl := newCustomerController(repo)

	w := httptest.NewRecorder()
	ctrl.DeleteCustomer(w, withURLParam(httptest.NewRequest("DELETE", "/customers/1", nil), "id", "1"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, repo.Customers, 2)

	w = httptest.NewRecorder()
	ctrl.DeleteAllCustomers(w, httptest.NewRequest("DELETE", "/customers", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["deletedCount"])
	assert.Empty(t, repo.Customers)
}

func multipartUpload(t *testing.T, field, fileName, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, fileName)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/customers/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImportCustomers(t *testing.T) {
	repo := &MockCustomerRepo{}
	ctrl := newCustomerController(repo)

	csv := "会社名,担当者名,メールアドレス,業種(中分類1)\n" +
		"株式会社A,佐藤,sato@a.co.jp,ソフトウェア開発\n" +
		"株式会社B,鈴木,,小売\n"
	w := httptest.NewRecorder()
	ctrl.ImportCustomers(w, multipartUpload(t, "file", "情報通信業.csv", csv))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Success bool                  `json:"success"`
		Summary service.ImportSummary `json:"summary"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.True(t, res.Success)
	assert.Equal(t, "情報通信業", res.Summary.Industry)
	assert.Equal(t, 2, res.Summary.Processed)
	assert.Equal(t, 1, res.Summary.SuccessCount)
	assert.Equal(t, 1, res.Summary.ErrorCount)
	require.Len(t, repo.Customers, 1)
	assert.Equal(t, "sato@a.co.jp", repo.Customers[0].Email)
}

func TestImportCustomersRequiresFile(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{})

	w := httptest.NewRecorder()
	ctrl.ImportCustomers(w, multipartUpload(t, "upload", "a.csv", "x"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	ctrl.ImportCustomers(w, multipartUpload(t, "file", "empty.csv", "メールアドレス\n"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportCustomersTooLarge(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{})
	ctrl.MaxUploadBytes = 64

	w := httptest.NewRecorder()
	ctrl.ImportCustomers(w, multipartUpload(t, "file", "big.csv", strings.Repeat("a,b,c\n", 100)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestListIndustries(t *testing.T) {
	ctrl := newCustomerController(&MockCustomerRepo{})
	ctrl.ImportService.IndustryRepo.GetOrCreateIndustry(context.Background(), "製造業")

	w := httptest.NewRecorder()
	ctrl.ListIndustries(w, httptest.NewRequest("GET", "/industries", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "製造業")
}

func TestPreviewCustomer(t *testing.T) {
	company := "株式会社A"
	repo := &MockCustomerRepo{Customers: []model.Customer{{ID: 5, Name: "佐藤", Email: "sato@a.co.jp", Company: &company}}}
	ctrl := newCustomerController(repo)

	req := httptest.NewRequest("POST", "/customers/5/preview",
		strings.NewReader(`{"subject":"{company}様","bodyTemplate":"{name}様 {unknown}"}`))
	w := httptest.NewRecorder()
	ctrl.PreviewCustomer(w, withURLParam(req, "id", "5"))
	require.Equal(t, http.StatusOK, w.Code)

	var preview service.Preview
	require.NoError(t, json.NewDecoder(w.Body).Decode(&preview))
	assert.Equal(t, "株式会社A様", preview.Subject)
	assert.Equal(t, "佐藤様 {unknown}", preview.Body)
	assert.Equal(t, []string{"unknown"}, preview.Unresolved)

	req = httptest.NewRequest("POST", "/customers/5/preview", strings.NewReader(`{}`))
	w = httptest.NewRecorder()
	ctrl.PreviewCustomer(w, withURLParam(req, "id", "5"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
