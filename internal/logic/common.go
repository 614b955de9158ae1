package logic

import (
	"strings"

	"cryptodata-api/internal/errorx"
)

func requirePair(exchange, symbol string) error {
	if strings.TrimSpace(exchange) == "" {
		return errorx.BadRequest("exchange is required")
	}
	if strings.TrimSpace(symbol) == "" {
		return errorx.BadRequest("symbol is required")
	}
	return nil
}

func requireLimit(limit int) error {
	if limit < 0 {
		return errorx.BadRequest("limit cannot be negative")
	}
	return nil
}
