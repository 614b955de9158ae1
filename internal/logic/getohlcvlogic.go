package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/errorx"
	"cryptodata-api/internal/marketdata"
	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type GetOHLCVLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewGetOHLCVLogic(ctx context.Context, svcCtx *svc.ServiceContext) *GetOHLCVLogic {
	return &GetOHLCVLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *GetOHLCVLogic) GetOHLCV(req *types.OHLCVReq) (resp *types.OHLCVResp, err error) {
	if err := requirePair(req.Exchange, req.Symbol); err != nil {
		return nil, err
	}
	if err := requireLimit(req.Limit); err != nil {
		return nil, err
	}
	if req.StartTimestamp != nil && *req.StartTimestamp < 0 {
		return nil, errorx.BadRequest("start_timestamp cannot be negative")
	}
	if req.StartTimestamp != nil && req.EndTimestamp != nil && *req.EndTimestamp < *req.StartTimestamp {
		return nil, errorx.BadRequest("end_timestamp must not be before start_timestamp")
	}
	series, err := l.svcCtx.Fetcher.GetCandles(l.ctx, marketdata.CandleQuery{
		Venue:    req.Exchange,
		Symbol:   req.Symbol,
		Interval: req.Interval,
		Start:    req.StartTimestamp,
		End:      req.EndTimestamp,
		Limit:    req.Limit,
	})
	if err != nil {
		return nil, err
	}
	resp = &types.OHLCVResp{
		Exchange: series.Venue,
		Symbol:   series.Symbol,
		Interval: series.Interval,
		Ohlcv:    make([]types.OHLCVItem, 0, len(series.Candles)),
	}
	for _, c := range series.Candles {
		resp.Ohlcv = append(resp.Ohlcv, types.OHLCVItem{
			Timestamp: c.Timestamp,
			Open:      c.Open,
			High:      c.High,
			Low:       c.Low,
			Close:     c.Close,
			Volume:    c.Volume,
		})
	}
	return resp, nil
}
