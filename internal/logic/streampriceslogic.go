package logic

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/core/threading"

	"cryptodata-api/internal/errorx"
	"cryptodata-api/internal/stream"
	"cryptodata-api/internal/svc"
	"cryptodata-api/internal/types"
)

const writeWait = 10 * time.Second

type StreamPricesLogic struct {
	logx.Logger
	ctx    context.Context
	svcCtx *svc.ServiceContext
}

func NewStreamPricesLogic(ctx context.Context, svcCtx *svc.ServiceContext) *StreamPricesLogic {
	return &StreamPricesLogic{
		Logger: logx.WithContext(ctx),
		ctx:    ctx,
		svcCtx: svcCtx,
	}
}

// Subscribe turns the query into a validated subscription. It runs before the
// connection is upgraded so bad input is answered with a plain HTTP error.
func (l *StreamPricesLogic) Subscribe(req *types.StreamPricesReq) (stream.Subscription, error) {
	sub, err := l.svcCtx.Streamer.Normalize(stream.Subscription{
		Venue:   strings.TrimSpace(req.Exchange),
		Symbols: splitSymbols(req.Symbols),
	})
	if err != nil {
		return sub, errorx.BadRequest(err.Error())
	}
	for _, symbol := range sub.Symbols {
		if err := l.svcCtx.Fetcher.ValidatePair(l.ctx, sub.Venue, symbol); err != nil {
			return sub, err
		}
	}
	return sub, nil
}

// Serve pushes price frames to conn until the client goes away or the stream
// fails, then sends a normal close frame.
func (l *StreamPricesLogic) Serve(conn *websocket.Conn, sub stream.Subscription) error {
	ctx, cancel := context.WithCancel(l.ctx)
	defer cancel()

	logger := l.Logger.WithFields(
		logx.Field("session", uuid.NewString()),
		logx.Field("venue", sub.Venue),
	)

	// Incoming messages are ignored; a read error means the peer is gone.
	threading.GoSafe(func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	logger.Infow("price stream opened",
		logx.Field("symbols", sub.Symbols),
		logx.Field("interval", l.svcCtx.Streamer.Interval().String()))
	err := l.svcCtx.Streamer.Run(ctx, sub, func(frame stream.Frame) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		return conn.WriteJSON(frame)
	})

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(writeWait))

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("price stream stopped", logx.Field("error", err.Error()))
		return err
	}
	logger.Infow("price stream closed")
	return nil
}

func splitSymbols(raw string) []string {
	parts := strings.Split(raw, ",")
	symbols := make([]string, 0, len(parts))
	for _, part := range parts {
		if s := strings.TrimSpace(part); s != "" {
			symbols = append(symbols, s)
		}
	}
	return symbols
}
