package logic

import (
	"context"

	"github.com/zeromicro/go-zero/core/logx"

	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

type ValidatePairLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewValidatePairLogic(ctx context.Context, svcCtx *svc.ServiceContext) *ValidatePairLogic {
	return &ValidatePairLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// ValidatePair never fails; invalid input is reported in the response body.
func (l *ValidatePairLogic) ValidatePair(req *types.ValidationReq) (resp *types.ValidationResp, err error) {
	if err := requirePair(req.Exchange, req.Symbol); err != nil {
		return &types.ValidationResp{Valid: false, Detail: err.Error()}, nil
	}
	if err := l.svcCtx.Fetcher.ValidatePair(l.ctx, req.Exchange, req.Symbol); err != nil {
		return &types.ValidationResp{Valid: false, Detail: err.Error()}, nil
	}
	return &types.ValidationResp{Valid: true, Detail: "Valid exchange-symbol pair"}, nil
}
