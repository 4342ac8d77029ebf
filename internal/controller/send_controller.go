// internal/controller/send_controller.go
package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/salesmail-backend/internal/preset"
	"github.com/unclebandit/salesmail-backend/internal/queue"
	"github.com/unclebandit/salesmail-backend/internal/service"
)

type SendController struct {
	BulkSendService *service.BulkSendService
	Jobs            *queue.BulkSendJobs
	Presets         *preset.Catalog
	Logger          *zap.Logger
}

func (c *SendController) Send(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To          string `json:"to"`
		Subject     string `json:"subject"`
		HTMLContent string `json:"htmlContent"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if err := c.BulkSendService.SendSingle(r.Context(), body.To, body.Subject, body.HTMLContent); err != nil {
		respondErr(w, c.Logger, "failed to send email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (c *SendController) SendTest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		HTML    string `json:"html"`
	}
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	if err := c.BulkSendService.SendTest(r.Context(), body.To, body.Subject, body.HTML); err != nil {
		respondErr(w, c.Logger, "failed to send test email", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// BulkSend runs the whole send inside the request. A started run finishes
// even if the client disconnects.
func (c *SendController) BulkSend(w http.ResponseWriter, r *http.Request) {
	var body service.BulkSendRequest
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	result, err := c.BulkSendService.Send(r.Context(), body, nil)
	if err != nil {
		respondErr(w, c.Logger, "bulk send failed", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (c *SendController) EnqueueBulkSend(w http.ResponseWriter, r *http.Request) {
	var body service.BulkSendRequest
	if err := decodeJSON(r, &body); err != nil {
		respondErr(w, c.Logger, "", err)
		return
	}
	job, err := c.Jobs.Enqueue(r.Context(), body)
	if err != nil {
		respondErr(w, c.Logger, "failed to queue bulk send", err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (c *SendController) GetBulkSendJob(w http.ResponseWriter, r *http.Request) {
	job, err := c.Jobs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondErr(w, c.Logger, "failed to load bulk send job", err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (c *SendController) ListPresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": c.Presets.All(),
		"default": c.Presets.Default().ID,
	})
}
