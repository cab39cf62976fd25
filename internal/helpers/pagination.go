package helpers

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginationParams holds the parsed limit and offset query parameters.
type PaginationParams struct {
	Limit  int
	Offset int
}

// ParsePaginationParams reads ?limit= and ?offset=, or ?page= in place of
// offset. Limits above maxLimit are clamped.
func ParsePaginationParams(c *gin.Context, defaultLimit, maxLimit int) (PaginationParams, error) {
	params := PaginationParams{Limit: defaultLimit}

	if s := c.Query("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			return params, fmt.Errorf("invalid limit parameter %q", s)
		}
		if limit > 0 {
			params.Limit = min(limit, maxLimit)
		}
	}

	if s := c.Query("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid page parameter %q", s)
		}
		params.Offset = (page - 1) * params.Limit
	} else if s := c.Query("offset"); s != "" {
		offset, err := strconv.Atoi(s)
		if err != nil || offset < 0 {
			return params, fmt.Errorf("invalid offset parameter %q", s)
		}
		params.Offset = offset
	}
	return params, nil
}
