// internal/controller/content_controller.go
package controller

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/content"
	appErrors "github.com/unclebandit/salesmail-backend/internal/errors"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

type ContentController struct {
	Generator          content.Generator
	PersonalizeService *service.PersonalizeService
	Logger             *zap.Logger
}

// GenerateHTML turns plain text into a styled HTML email body.
func (c *ContentController) GenerateHTML(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text         string `json:"text"`
		PrimaryColor string `json:"primaryColor"`
		AccentColor  string `json:"accentColor"`
		Font         string `json:"font"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		respondErr(w, c.Logger, "", appErrors.NewValidation("text is required"))
		return
	}

	html, err := c.Generator.GenerateHTML(r.Context(), content.HTMLRequest{
		Text:         body.Text,
		PrimaryColor: body.PrimaryColor,
		AccentColor:  body.AccentColor,
		Font:         body.Font,
	})
	if err != nil {
		respondErr(w, c.Logger, "failed to generate HTML", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

func (c *ContentController) GenerateContent(w http.ResponseWriter, r *http.Request) {
	var body content.ContentRequest
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if strings.TrimSpace(body.Instruction) == "" {
		respondErr(w, c.Logger, "", appErrors.NewValidation("instruction is required"))
		return
	}

	generated, err := c.Generator.GenerateContent(r.Context(), body)
	if err != nil {
		respondErr(w, c.Logger, "failed to generate content", err)
		return
	}
	writeJSON(w, http.StatusOK, generated)
}

func (c *ContentController) GeneratePersonalizedBulk(w http.ResponseWriter, r *http.Request) {
	var body service.PersonalizeRequest
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}

	results, err := c.PersonalizeService.GenerateBulk(r.Context(), body)
	if err != nil {
		respondErr(w, c.Logger, "failed to generate personalized content", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}
