// Package errorx maps service errors onto HTTP responses.
package errorx

import (
	"context"
	"errors"
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/marketdata"
	"cryptodata-api/internal/types"
)

// BadRequestError marks malformed client input caught before orchestration.
type BadRequestError struct {
	Msg string
}

func (e *BadRequestError) Error() string { return e.Msg }

// BadRequest wraps msg as a client error.
func BadRequest(msg string) error {
	return &BadRequestError{Msg: msg}
}

// Handler is installed with httpx.SetErrorHandlerCtx. Client input errors
// map to 400, everything else to 500.
func Handler(ctx context.Context, err error) (int, any) {
	var badReq *BadRequestError
	switch {
	case errors.As(err, &badReq), marketdata.KindOf(err).ClientError():
		return http.StatusBadRequest, types.ErrorResp{Detail: err.Error()}
	default:
		logx.WithContext(ctx).Errorf("request failed: %v", err)
		return http.StatusInternalServerError, types.ErrorResp{
			Detail: err.Error(),
			Error:  http.StatusText(http.StatusInternalServerError),
		}
	}
}
