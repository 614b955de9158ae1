package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"cryptodata-api/internal/errorx"
	"cryptodata-api/internal/logic"
	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

func GetOrderBookHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.OrderBookReq
		if err := httpx.Parse(r, &req); err != nil {
			httpx.ErrorCtx(r.Context(), w, errorx.BadRequest(err.Error()))
			return
		}

		l := logic.NewGetOrderBookLogic(r.Context(), svcCtx)
		resp, err := l.GetOrderBook(&req)
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
