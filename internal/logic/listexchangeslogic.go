package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type ListExchangesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListExchangesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListExchangesLogic {
	return &ListExchangesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListExchangesLogic) ListExchanges() (resp *types.ExchangeListResp, err error) {
	return &types.ExchangeListResp{Exchanges: l.svcCtx.Fetcher.ListVenues()}, nil
}
