package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/interfaces"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/services"
	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service interfaces.AccountService
}

func NewAccountHandler(service interfaces.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

// GetAddress serves GET /accounts/address?principal=chain:account.
func (h *AccountHandler) GetAddress(c *gin.Context) {
	p, err := principal.Parse(c.Query("principal"))
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid principal", err)
		return
	}
	resp, err := h.service.AddressOf(c.Request.Context(), p)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPrincipal) {
			sendError(c, http.StatusBadRequest, "Invalid principal", err)
			return
		}
		sendError(c, http.StatusInternalServerError, "Failed to compute address", err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}

// GetAccount serves GET /accounts/:address.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	addr, ok := parseAddress(c, c.Param("address"))
	if !ok {
		return
	}
	resp, err := h.service.DescribeAccount(c.Request.Context(), addr)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to describe account", err)
		return
	}
	sendSuccess(c, http.StatusOK, resp)
}

func parseAddress(c *gin.Context, s string) (common.Address, bool) {
	if !common.IsHexAddress(s) {
		sendError(c, http.StatusBadRequest, "Invalid address", errors.New(s))
		return common.Address{}, false
	}
	return common.HexToAddress(s), true
}
