package handler

import (
	"context"
	"mime"
	"net/http"
	"strconv"

	appexport "github.com/finops/backend/internal/application/export"
	"github.com/finops/backend/internal/domain/export"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

// ExportHandler serves /exports
type ExportHandler struct {
	BaseHandler
	service *appexport.Service
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(base BaseHandler, service *appexport.Service) *ExportHandler {
	return &ExportHandler{BaseHandler: base, service: service}
}

// downloadParam switches an export from the JSON envelope to the bare file.
const downloadParam = "download"

// Transactions handles POST /exports/transactions
func (h *ExportHandler) Transactions(c *gin.Context) {
	h.export(c, h.service.ExportTransactions)
}

// PreviewTransactions handles POST /exports/transactions/preview
func (h *ExportHandler) PreviewTransactions(c *gin.Context) {
	h.preview(c, h.service.PreviewTransactions)
}

// ProfilerTransactions handles POST /exports/profiler-transactions
func (h *ExportHandler) ProfilerTransactions(c *gin.Context) {
	h.export(c, h.service.ExportProfilerTransactions)
}

// PreviewProfilerTransactions handles POST /exports/profiler-transactions/preview
func (h *ExportHandler) PreviewProfilerTransactions(c *gin.Context) {
	h.preview(c, h.service.PreviewProfilerTransactions)
}

func (h *ExportHandler) export(c *gin.Context, fn func(context.Context, appexport.Request) (*export.Result, error)) {
	download, err := downloadRequested(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var req appexport.Request
	if !h.bindJSON(c, &req) {
		return
	}
	res, err := fn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	if download {
		c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
		c.Header("X-Export-Rows", strconv.FormatInt(res.Metadata.TotalRows, 10))
		c.Data(http.StatusOK, res.MimeType, res.Content)
		return
	}
	h.Success(c, res)
}

func (h *ExportHandler) preview(c *gin.Context, fn func(context.Context, appexport.Request) (*export.Estimate, error)) {
	var req appexport.Request
	if !h.bindJSON(c, &req) {
		return
	}
	est, err := fn(c.Request.Context(), req)
	respond(&h.BaseHandler, c, http.StatusOK, est, err)
}

// downloadRequested reads ?download=true. Without it the file travels
// base64-encoded inside the response envelope together with its metadata.
func downloadRequested(c *gin.Context) (bool, error) {
	raw, ok := c.GetQuery(downloadParam)
	if !ok || raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, shared.NewFieldError(downloadParam, "must be true or false")
	}
	return v, nil
}
