package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type ListSymbolsLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewListSymbolsLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ListSymbolsLogic {
	return &ListSymbolsLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

func (l *ListSymbolsLogic) ListSymbols(req *types.SymbolListReq) (resp *types.SymbolListResp, err error) {
	symbols, err := l.svcCtx.Fetcher.GetSymbols(l.ctx, req.Exchange)
	if err != nil {
		return nil, err
	}
	return &types.SymbolListResp{Exchange: req.Exchange, Symbols: symbols}, nil
}
