package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type GetTickerLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetTickerLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetTickerLogic {
	return &GetTickerLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetTickerLogic) GetTicker(req *types.TickerReq) (resp *types.TickerResp, err error) {
	if err := requirePair(req.Exchange, req.Symbol); err != nil {
		return nil, err
	}
	ticker, err := l.svcCtx.Fetcher.GetTicker(l.ctx, req.Exchange, req.Symbol)
	if err != nil {
		return nil, err
	}
	return &types.TickerResp{
		Exchange:  ticker.Venue,
		Symbol:    ticker.Symbol,
		Price:     ticker.Price,
		Timestamp: ticker.Timestamp,
	}, nil
}
