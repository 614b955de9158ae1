package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type GetTradesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetTradesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetTradesLogic {
	return &GetTradesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetTradesLogic) GetTrades(req *types.TradeHistoryReq) (resp *types.TradeHistoryResp, err error) {
	if err := requirePair(req.Exchange, req.Symbol); err != nil {
		return nil, err
	}
	if err := requireLimit(req.Limit); err != nil {
		return nil, err
	}
	history, err := l.svcCtx.Fetcher.GetTrades(l.ctx, req.Exchange, req.Symbol, req.Limit)
	if err != nil {
		return nil, err
	}
	resp = &types.TradeHistoryResp{
		Exchange: history.Venue,
		Symbol:   history.Symbol,
		Trades:   make([]types.TradeItem, 0, len(history.Trades)),
	}
	for _, t := range history.Trades {
		resp.Trades = append(resp.Trades, types.TradeItem{
			Price:     t.Price,
			Amount:    t.Amount,
			Side:      t.Side,
			Timestamp: t.Timestamp,
			TradeId:   t.TradeID,
		})
	}
	return resp, nil
}
