package handler

import (
	"context"
	"net/http"
	"net/url"

	"github.com/finops/backend/internal/application/listing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// The helpers below carry the request plumbing shared by every entity
// endpoint; handlers pass the service method that does the work.

func create[C, R any](h *BaseHandler, c *gin.Context, fn func(context.Context, C) (*R, error)) {
	var req C
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := fn(c.Request.Context(), req)
	respond(h, c, http.StatusCreated, out, err)
}

func get[R any](h *BaseHandler, c *gin.Context, fn func(context.Context, uuid.UUID) (*R, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	out, err := fn(c.Request.Context(), id)
	respond(h, c, http.StatusOK, out, err)
}

func list[R any](h *BaseHandler, c *gin.Context, fn func(context.Context, url.Values) (*listing.Result[R], error)) {
	result, err := fn(c.Request.Context(), c.Request.URL.Query())
	respondList(h, c, result, err)
}

func update[U, R any](h *BaseHandler, c *gin.Context, fn func(context.Context, uuid.UUID, U) (*R, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req U
	if !h.bindJSON(c, &req) {
		return
	}
	out, err := fn(c.Request.Context(), id, req)
	respond(h, c, http.StatusOK, out, err)
}

func remove(h *BaseHandler, c *gin.Context, fn func(context.Context, uuid.UUID) error) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := fn(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
