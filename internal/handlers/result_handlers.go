package handlers

import (
	"errors"
	"net/http"

	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/interfaces"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/cyphera/remote-accounts/internal/results"
	"github.com/cyphera/remote-accounts/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gin-gonic/gin"
)

type ResultHandler struct {
	service interfaces.ResultService
}

func NewResultHandler(service interfaces.ResultService) *ResultHandler {
	return &ResultHandler{service: service}
}

// ListResults serves GET /results. Filters: ?source=chain:account or
// ?message=<id>; paging with limit/offset/page.
func (h *ResultHandler) ListResults(c *gin.Context) {
	if messageID := c.Query("message"); messageID != "" {
		records, err := h.service.ListMessageResults(c.Request.Context(), messageID)
		if err != nil {
			sendError(c, http.StatusInternalServerError, "Failed to list results", err)
			return
		}
		sendSuccess(c, http.StatusOK, types.ResultListResponse{Object: "list", Data: records, Limit: len(records)})
		return
	}

	page, err := helpers.ParsePaginationParams(c, results.DefaultLimit, results.MaxLimit)
	if err != nil {
		sendError(c, http.StatusBadRequest, "Invalid pagination", err)
		return
	}
	q := results.Query{Limit: page.Limit, Offset: page.Offset}
	if source := c.Query("source"); source != "" {
		p, err := principal.Parse(source)
		if err != nil {
			sendError(c, http.StatusBadRequest, "Invalid source", err)
			return
		}
		q.SourceChain, q.SourceAddress = p.ChainRef, p.Account
	}

	records, err := h.service.ListResults(c.Request.Context(), q)
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to list results", err)
		return
	}
	sendSuccess(c, http.StatusOK, types.ResultListResponse{Object: "list", Data: records, Limit: q.Limit, Offset: q.Offset})
}

// GetResult serves GET /results/:id where id is the 32 byte transaction id.
func (h *ResultHandler) GetResult(c *gin.Context) {
	raw, err := hexutil.Decode(c.Param("id"))
	if err != nil || len(raw) != common.HashLength {
		sendError(c, http.StatusBadRequest, "Invalid transaction id", err)
		return
	}
	record, err := h.service.GetResult(c.Request.Context(), common.BytesToHash(raw))
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			sendError(c, http.StatusNotFound, "Result not found", err)
			return
		}
		sendError(c, http.StatusInternalServerError, "Failed to get result", err)
		return
	}
	sendSuccess(c, http.StatusOK, record)
}
