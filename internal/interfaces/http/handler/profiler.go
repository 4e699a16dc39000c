package handler

import (
	"net/http"
	"strings"

	appprofiler "github.com/finops/backend/internal/application/profiler"
	"github.com/finops/backend/internal/domain/shared"
	"github.com/finops/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// ProfilerClientHandler serves /profiler/clients
type ProfilerClientHandler struct {
	BaseHandler
	service *appprofiler.ClientService
}

// NewProfilerClientHandler creates a new ProfilerClientHandler
func NewProfilerClientHandler(base BaseHandler, service *appprofiler.ClientService) *ProfilerClientHandler {
	return &ProfilerClientHandler{BaseHandler: base, service: service}
}

// Create handles POST /profiler/clients
func (h *ProfilerClientHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /profiler/clients/:id
func (h *ProfilerClientHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /profiler/clients
func (h *ProfilerClientHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /profiler/clients/:id
func (h *ProfilerClientHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /profiler/clients/:id
func (h *ProfilerClientHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }

// ProfilerBankHandler serves /profiler/banks
type ProfilerBankHandler struct {
	BaseHandler
	service *appprofiler.BankService
}

// NewProfilerBankHandler creates a new ProfilerBankHandler
func NewProfilerBankHandler(base BaseHandler, service *appprofiler.BankService) *ProfilerBankHandler {
	return &ProfilerBankHandler{BaseHandler: base, service: service}
}

// Create handles POST /profiler/banks
func (h *ProfilerBankHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /profiler/banks/:id
func (h *ProfilerBankHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /profiler/banks
func (h *ProfilerBankHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /profiler/banks/:id
func (h *ProfilerBankHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /profiler/banks/:id
func (h *ProfilerBankHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }

// ProfileHandler serves /profiler/profiles
type ProfileHandler struct {
	BaseHandler
	service *appprofiler.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(base BaseHandler, service *appprofiler.ProfileService) *ProfileHandler {
	return &ProfileHandler{BaseHandler: base, service: service}
}

// Create handles POST /profiler/profiles
func (h *ProfileHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /profiler/profiles/:id
func (h *ProfileHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /profiler/profiles
func (h *ProfileHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /profiler/profiles/:id
func (h *ProfileHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /profiler/profiles/:id
func (h *ProfileHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }

// MarkDone handles POST /profiler/profiles/:id/done. The response carries
// the carried-forward profile when one was opened.
func (h *ProfileHandler) MarkDone(c *gin.Context) { get(&h.BaseHandler, c, h.service.MarkDone) }

// ProfilerTransactionHandler serves /profiler/transactions
type ProfilerTransactionHandler struct {
	BaseHandler
	service *appprofiler.TransactionService
}

// NewProfilerTransactionHandler creates a new ProfilerTransactionHandler
func NewProfilerTransactionHandler(base BaseHandler, service *appprofiler.TransactionService) *ProfilerTransactionHandler {
	return &ProfilerTransactionHandler{BaseHandler: base, service: service}
}

// Create handles POST /profiler/transactions. A repeated Idempotency-Key is
// answered with 409 DUPLICATE_REQUEST.
func (h *ProfilerTransactionHandler) Create(c *gin.Context) {
	key := strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader))
	if err := shared.ValidateIdempotencyKey(key); err != nil {
		h.HandleError(c, err)
		return
	}
	var req appprofiler.CreateTransactionRequest
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := h.service.Create(c.Request.Context(), req, key)
	respond(&h.BaseHandler, c, http.StatusCreated, out, err)
}

// GetByID handles GET /profiler/transactions/:id
func (h *ProfilerTransactionHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /profiler/transactions
func (h *ProfilerTransactionHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /profiler/transactions/:id. Only notes change.
func (h *ProfilerTransactionHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /profiler/transactions/:id. The profile balance is
// reverted in the same unit of work.
func (h *ProfilerTransactionHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }
