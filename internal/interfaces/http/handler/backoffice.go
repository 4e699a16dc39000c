package handler

import (
	"strconv"

	appbackoffice "github.com/finops/backend/internal/application/backoffice"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ClientHandler serves /clients
type ClientHandler struct {
	BaseHandler
	service *appbackoffice.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(base BaseHandler, service *appbackoffice.ClientService) *ClientHandler {
	return &ClientHandler{BaseHandler: base, service: service}
}

// Create handles POST /clients
func (h *ClientHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /clients/:id
func (h *ClientHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /clients. Accepts search, sort_by, sort_order, page,
// limit and the client filters.
func (h *ClientHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /clients/:id
func (h *ClientHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /clients/:id. Clients with transactions are kept.
func (h *ClientHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }

// BankHandler serves /banks
type BankHandler struct {
	BaseHandler
	service *appbackoffice.BankService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(base BaseHandler, service *appbackoffice.BankService) *BankHandler {
	return &BankHandler{BaseHandler: base, service: service}
}

// Create handles POST /banks
func (h *BankHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /banks/:id
func (h *BankHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /banks
func (h *BankHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /banks/:id
func (h *BankHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /banks/:id
func (h *BankHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }

// CardHandler serves /cards
type CardHandler struct {
	BaseHandler
	service *appbackoffice.CardService
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(base BaseHandler, service *appbackoffice.CardService) *CardHandler {
	return &CardHandler{BaseHandler: base, service: service}
}

// Create handles POST /cards
func (h *CardHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /cards/:id
func (h *CardHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /cards
func (h *CardHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /cards/:id
func (h *CardHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /cards/:id. With ?cascade=true the card is detached
// from its transactions instead of blocking the delete.
func (h *CardHandler) Delete(c *gin.Context) {
	cascade := false
	if raw := c.Query("cascade"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.BadRequest(c, "cascade must be true or false")
			return
		}
		cascade = v
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, cascade); err != nil {
		h.HandleError(c, err)
		return
	}
	if cascade {
		h.logger.Info("Card deleted with cascade", zap.String("card_id", id.String()))
	}
	h.NoContent(c)
}

// TransactionHandler serves /transactions
type TransactionHandler struct {
	BaseHandler
	service *appbackoffice.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(base BaseHandler, service *appbackoffice.TransactionService) *TransactionHandler {
	return &TransactionHandler{BaseHandler: base, service: service}
}

// Create handles POST /transactions
func (h *TransactionHandler) Create(c *gin.Context) { create(&h.BaseHandler, c, h.service.Create) }

// GetByID handles GET /transactions/:id
func (h *TransactionHandler) GetByID(c *gin.Context) { get(&h.BaseHandler, c, h.service.GetByID) }

// List handles GET /transactions. Besides the common parameters it accepts
// client_ids, bank_ids, card_ids, transaction_type, min/max_amount,
// min/max_charges and start/end_date.
func (h *TransactionHandler) List(c *gin.Context) { list(&h.BaseHandler, c, h.service.List) }

// Update handles PATCH /transactions/:id
func (h *TransactionHandler) Update(c *gin.Context) { update(&h.BaseHandler, c, h.service.Update) }

// Delete handles DELETE /transactions/:id
func (h *TransactionHandler) Delete(c *gin.Context) { remove(&h.BaseHandler, c, h.service.Delete) }
