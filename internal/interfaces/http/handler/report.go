package handler

import (
	"net/http"

	appreport "github.com/finops/backend/internal/application/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler serves the grouped summaries under /reports
type ReportHandler struct {
	BaseHandler
	service *appreport.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(base BaseHandler, service *appreport.ReportService) *ReportHandler {
	return &ReportHandler{BaseHandler: base, service: service}
}

// ClientSummary handles GET /reports/clients. It takes the transaction list
// filters and search; page and limit are ignored.
func (h *ReportHandler) ClientSummary(c *gin.Context) {
	summary, err := h.service.ClientSummary(c.Request.Context(), c.Request.URL.Query())
	respond(&h.BaseHandler, c, http.StatusOK, summary, err)
}

// ProfileSummary handles GET /reports/profiles
func (h *ReportHandler) ProfileSummary(c *gin.Context) {
	summary, err := h.service.ProfileSummary(c.Request.Context(), c.Request.URL.Query())
	respond(&h.BaseHandler, c, http.StatusOK, summary, err)
}
