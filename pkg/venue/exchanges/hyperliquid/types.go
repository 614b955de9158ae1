package hyperliquid

import (
	"encoding/json"
	"fmt"
)

// InfoRequest is the shared envelope for Hyperliquid info endpoint requests.
type InfoRequest struct {
	Type string `json:"type"`
	Coin string `json:"coin,omitempty"`
	Req  any    `json:"req,omitempty"`
}

// CandleSnapshotRequest carries parameters for the candleSnapshot request.
type CandleSnapshotRequest struct {
	Coin      string `json:"coin"`
	Interval  string `json:"interval"`
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
}

// CandleResponse mirrors the payload returned from candleSnapshot requests.
type CandleResponse []struct {
	T      int64  `json:"t"` // open time (ms)
	TClose int64  `json:"T"`
	S      string `json:"s"`
	I      string `json:"i"`
	O      string `json:"o"`
	C      string `json:"c"`
	H      string `json:"h"`
	L      string `json:"l"`
	V      string `json:"v"`
}

// AllMidsResponse maps coins to their current mid prices.
type AllMidsResponse map[string]string

// L2BookResponse is the level-2 snapshot returned by l2Book.
type L2BookResponse struct {
	Coin   string      `json:"coin"`
	Time   int64       `json:"time"`
	Levels [][]L2Level `json:"levels"` // [bids, asks]
}

// L2Level is one aggregated price level.
type L2Level struct {
	Px string `json:"px"`
	Sz string `json:"sz"`
	N  int    `json:"n"`
}

// RecentTrade is one public fill returned by recentTrades. Side is B for an
// aggressive buy and A for an aggressive sell.
type RecentTrade struct {
	Coin string `json:"coin"`
	Side string `json:"side"`
	Px   string `json:"px"`
	Sz   string `json:"sz"`
	Time int64  `json:"time"`
	Hash string `json:"hash"`
	TID  int64  `json:"tid"`
}

// MetaAndAssetCtxsResponse contains market meta data and per-asset contexts.
type MetaAndAssetCtxsResponse struct {
	Universe  []UniverseEntry
	AssetCtxs []AssetCtx
}

// UniverseEntry enumerates tradable assets on Hyperliquid.
type UniverseEntry struct {
	Name        string  `json:"name"`
	SzDecimals  int     `json:"szDecimals"`
	MaxLeverage float64 `json:"maxLeverage"`
	IsDelisted  bool    `json:"isDelisted"`
}

// AssetCtx holds per-coin market context.
type AssetCtx struct {
	MarkPx    string `json:"markPx"`
	MidPx     string `json:"midPx"`
	PrevDayPx string `json:"prevDayPx"`
}

// UnmarshalJSON accepts both the [meta, ctxs] pair returned live and the
// single-object form shown in the public docs.
func (m *MetaAndAssetCtxsResponse) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) == 0 {
		return fmt.Errorf("unexpected metaAndAssetCtxs payload: empty array")
	}
	var meta struct {
		Universe  []UniverseEntry `json:"universe"`
		AssetCtxs []AssetCtx      `json:"assetCtxs"`
	}
	if err := json.Unmarshal(raw[0], &meta); err != nil {
		return err
	}
	m.Universe = meta.Universe
	m.AssetCtxs = meta.AssetCtxs
	if len(raw) > 1 {
		if err := json.Unmarshal(raw[1], &m.AssetCtxs); err != nil {
			return err
		}
	}
	return nil
}
