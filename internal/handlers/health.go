package handlers

import (
	"net/http"

	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	chainID     uint64
	sourceChain string
	clock       func() uint64
}

// NewHealthHandler reports the chain identity; clock returns the current
// block time.
func NewHealthHandler(chainID uint64, sourceChain string, clock func() uint64) *HealthHandler {
	return &HealthHandler{chainID: chainID, sourceChain: sourceChain, clock: clock}
}

func (h *HealthHandler) Health(c *gin.Context) {
	resp := types.HealthResponse{
		Status:      "ok",
		ChainID:     h.chainID,
		SourceChain: h.sourceChain,
	}
	if h.clock != nil {
		resp.BlockTime = h.clock()
	}
	c.JSON(http.StatusOK, resp)
}
