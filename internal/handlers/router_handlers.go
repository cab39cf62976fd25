package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/interfaces"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/cyphera/remote-accounts/internal/services"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/gin-gonic/gin"
)

type RouterHandler struct {
	service interfaces.RouterAdminService
}

func NewRouterHandler(service interfaces.RouterAdminService) *RouterHandler {
	return &RouterHandler{service: service}
}

func (h *RouterHandler) ListRouters(c *gin.Context) {
	routers, err := h.service.ListRouters(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list routers", err)
		return
	}
	sendSuccess(c, http.StatusOK, gin.H{"object": "list", "data": routers})
}

// GetSuccessor serves GET /routers/:address/successor.
func (h *RouterHandler) GetSuccessor(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}
	resp, err := h.service.GetRouter(c.Request.Context(), addr)
	if err != nil {
		h.routerError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}

// SetSuccessor serves PUT /admin/successor.
func (h *RouterHandler) SetSuccessor(c *gin.Context) {
	var req types.SetSuccessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	resp, err := h.service.SetSuccessor(c.Request.Context(), req.Router, req.Successor)
	if err != nil {
		h.routerError(c, err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}

func (h *RouterHandler) routerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnknownRouter):
		sendError(c, http.StatusNotFound, "Router not found", err)
	case errors.Is(err, ownable.ErrUnauthorizedCaller):
		sendError(c, http.StatusForbidden, "Not the router authority", err)
	default:
		sendError(c, http.StatusInternalServerError, "Router operation failed", err)
	}
}
