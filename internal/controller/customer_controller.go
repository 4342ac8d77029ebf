// internal/controller/customer_controller.go
package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/model"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

const defaultMaxUploadBytes = 32 << 20

type CustomerController struct {
	CustomerService *service.CustomerService
	ImportService   *service.ImportService
	MaxUploadBytes  int64
	Logger          *zap.Logger
}

func (c *CustomerController) ListCustomers(w http.ResponseWriter, r *http.Request) {
	industryID, err := queryIntPtr(r, "industry_id", "industryId")
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	categoryID, err := queryIntPtr(r, "category_id", "sectorId")
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	filter := model.CustomerFilter{
		IndustryID: industryID,
		CategoryID: categoryID,
		Search:     r.URL.Query().Get("search"),
	}

	customers, pagination, err := c.CustomerService.List(r.Context(), filter, queryInt(r, "page"), queryInt(r, "limit"))
	if err != nil {
		respondErr(w, c.Logger, "failed to list customers", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"customers":  customers,
		"pagination": pagination,
	})
}

func (c *CustomerController) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	customer, err := c.CustomerService.Get(r.Context(), id)
	if err != nil {
		respondErr(w, c.Logger, "failed to load customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (c *CustomerController) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	var body service.CustomerUpdate
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}

	customer, err := c.CustomerService.Update(r.Context(), id, body)
	if err != nil {
		respondErr(w, c.Logger, "failed to update customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customer": customer})
}

func (c *CustomerController) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if err := c.CustomerService.Delete(r.Context(), id); err != nil {
		respondErr(w, c.Logger, "failed to delete customer", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *CustomerController) DeleteAllCustomers(w http.ResponseWriter, r *http.Request) {
	n, err := c.CustomerService.DeleteAll(r.Context())
	if err != nil {
		respondErr(w, c.Logger, "failed to delete customers", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"message":      fmt.Sprintf("%d件の顧客データを削除しました", n),
		"deletedCount": n,
	})
}

// PreviewCustomer renders a subject/body template for one stored customer.
func (c *CustomerController) PreviewCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	var body struct {
		Subject      string            `json:"subject"`
		BodyTemplate string            `json:"bodyTemplate"`
		CustomFields map[string]string `json:"customFields"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}

	preview, err := c.CustomerService.RenderPreview(r.Context(), id, body.Subject, body.BodyTemplate, body.CustomFields)
	if err != nil {
		respondErr(w, c.Logger, "failed to render preview", err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// ImportCustomers accepts a multipart upload in field "file".
func (c *CustomerController) ImportCustomers(w http.ResponseWriter, r *http.Request) {
	limit := c.MaxUploadBytes
	if limit <= 0 {
		limit = defaultMaxUploadBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file is too large", "")
			return
		}
		respondErr(w, c.Logger, "", appErrors.NewValidation("invalid multipart form: %v", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondErr(w, c.Logger, "", appErrors.NewValidation("%v", errMissingFile))
		return
	}
	defer file.Close()

	fileName := strings.TrimSpace(header.Filename)
	summary, err := c.ImportService.ImportFile(r.Context(), fileName, file)
	if err != nil {
		respondErr(w, c.Logger, "import failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": fmt.Sprintf("%d件のデータをインポートしました", summary.SuccessCount),
		"summary": summary,
	})
}

func (c *CustomerController) ListIndustries(w http.ResponseWriter, r *http.Request) {
	industries, err := c.CustomerService.ListIndustries(r.Context())
	if err != nil {
		respondErr(w, c.Logger, "failed to list industries", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"industries": industries})
}
