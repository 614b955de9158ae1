package types

type TickerReq struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
}

type TickerResp struct {
	Exchange  string  `json:"exchange"`
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

type OrderBookReq struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Limit    int    `json:"limit,default=20"`
}

type OrderBookResp struct {
	Exchange  string       `json:"exchange"`
	Symbol    string       `json:"symbol"`
	Bids      [][2]float64 `json:"bids"`
	Asks      [][2]float64 `json:"asks"`
	Timestamp int64        `json:"timestamp"`
}

type TradeHistoryReq struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
	Limit    int    `json:"limit,default=20"`
}

type TradeItem struct {
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Side      string  `json:"side"`
	Timestamp int64   `json:"timestamp"`
	TradeId   string  `json:"trade_id"`
}

type TradeHistoryResp struct {
	Exchange string      `json:"exchange"`
	Symbol   string      `json:"symbol"`
	Trades   []TradeItem `json:"trades"`
}

type OHLCVReq struct {
	Exchange       string `json:"exchange"`
	Symbol         string `json:"symbol"`
	Interval       string `json:"interval"`
	StartTimestamp *int64 `json:"start_timestamp,optional"`
	EndTimestamp   *int64 `json:"end_timestamp,optional"`
	Limit          int    `json:"limit,default=100"`
}

type OHLCVItem struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type OHLCVResp struct {
	Exchange string      `json:"exchange"`
	Symbol   string      `json:"symbol"`
	Interval string      `json:"interval"`
	Ohlcv    []OHLCVItem `json:"ohlcv"`
}

type ExchangeListResp struct {
	Exchanges []string `json:"exchanges"`
}

type SymbolListReq struct {
	Exchange string `path:"exchange"`
}

type SymbolListResp struct {
	Exchange string   `json:"exchange"`
	Symbols  []string `json:"symbols"`
}

type ValidationReq struct {
	Exchange string `json:"exchange"`
	Symbol   string `json:"symbol"`
}

type ValidationResp struct {
	Valid  bool   `json:"valid"`
	Detail string `json:"detail"`
}

type StatusResp struct {
	Status string `json:"status"`
}

type StreamPricesReq struct {
	Exchange string `form:"exchange,default=binance"`
	Symbols  string `form:"symbols,default=BTC/USDT"`
}

type ErrorResp struct {
	Detail string `json:"detail"`
	Error  string `json:"error,omitempty"`
}
