package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/bridge"
	"github.com/cyphera/remote-accounts/internal/interfaces"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/gin-gonic/gin"
)

// MessageHandler is the relay endpoint of the bridge.
type MessageHandler struct {
	service interfaces.MessageService
}

func NewMessageHandler(service interfaces.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Relay delivers one bridge message.
//
// 200 returns the per-instruction results, 409 reports a message that was
// already delivered and 422 a message the router rejected as a whole.
func (h *MessageHandler) Relay(c *gin.Context) {
	var msg bridge.Message
	if err := c.ShouldBindJSON(&msg); err != nil {
		sendError(c, http.StatusBadRequest, "Invalid message body", err)
		return
	}

	delivery, err := h.service.Deliver(c.Request.Context(), msg)
	switch {
	case err == nil:
		sendSuccess(c, http.StatusOK, delivery)
	case errors.Is(err, bridge.ErrInvalidMessage):
		sendError(c, http.StatusBadRequest, "Invalid message", err)
	case errors.Is(err, bridge.ErrAlreadyDelivered):
		sendError(c, http.StatusConflict, "Message already delivered", err)
	default:
		sendError(c, http.StatusUnprocessableEntity, ledger.DescribeRevert(ledger.RevertData(err)), err)
	}
}
