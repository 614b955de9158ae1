package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest/httpx"

	"cryptodata-api/internal/logic"
	"cryptodata-api/internal/svc"
)

func ListExchangesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewListExchangesLogic(r.Context(), svcCtx)
		resp, err := l.ListExchanges()
		if err != nil {
			httpx.ErrorCtx(r.Context(), w, err)
		} else {
			httpx.OkJsonCtx(r.Context(), w, resp)
		}
	}
}
