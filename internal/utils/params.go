package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/planboard/internal/apperror"
)

// ParseID parses a positive integer id from s; label names it in the error.
func ParseID(s, label string) (uint, error) {
	if s == "" {
		return 0, apperror.Validation("%s is required", label)
	}

	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Invalid %s", label)
	}

	return uint(id), nil
}

func GetPathID(ctx *gin.Context, param, label string) (uint, error) {
	return ParseID(ctx.Param(param), label)
}

// GetQueryID returns nil when the query parameter is absent.
func GetQueryID(ctx *gin.Context, key string) (*uint, error) {
	raw, ok := ctx.GetQuery(key)
	if !ok {
		return nil, nil
	}

	id, err := ParseID(raw, key)
	if err != nil {
		return nil, err
	}

	return &id, nil
}
