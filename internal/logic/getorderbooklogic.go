package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type GetOrderBookLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetOrderBookLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetOrderBookLogic {
	return &GetOrderBookLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetOrderBookLogic) GetOrderBook(req *types.OrderBookReq) (resp *types.OrderBookResp, err error) {
	if err := requirePair(req.Exchange, req.Symbol); err != nil {
		return nil, err
	}
	if err := requireLimit(req.Limit); err != nil {
		return nil, err
	}
	book, err := l.svcCtx.Fetcher.GetOrderBook(l.ctx, req.Exchange, req.Symbol, req.Limit)
	if err != nil {
		return nil, err
	}
	resp = &types.OrderBookResp{
		Exchange:  book.Venue,
		Symbol:    book.Symbol,
		Bids:      make([][2]float64, 0, len(book.Bids)),
		Asks:      make([][2]float64, 0, len(book.Asks)),
		Timestamp: book.Timestamp,
	}
	for _, b := range book.Bids {
		resp.Bids = append(resp.Bids, b)
	}
	for _, a := range book.Asks {
		resp.Asks = append(resp.Asks, a)
	}
	return resp, nil
}
