package marketdata

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindClassification(t *testing.T) {
	tests := []struct {
		kind     Kind
		name     string
		client   bool
		sentinel error
	}{
		{KindUnsupportedVenue, "UnsupportedVenue", true, ErrUnsupportedVenue},
		{KindInvalidPair, "InvalidPair", true, ErrInvalidPair},
		{KindUnsupportedInterval, "UnsupportedInterval", true, ErrUnsupportedInterval},
		{KindConnectorInit, "ConnectorInit", false, ErrConnectorInit},
		{KindFetchFailed, "FetchFailed", false, ErrFetchFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := fmt.Errorf("wrapped: %w", &Error{Kind: tt.kind, Venue: "binance"})
			assert.Equal(t, tt.name, tt.kind.String())
			assert.Equal(t, tt.client, tt.kind.ClientError())
			assert.Equal(t, tt.kind, KindOf(err))
			assert.True(t, errors.Is(err, tt.sentinel))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("boom")
	err := &Error{Kind: KindFetchFailed, Venue: "binance", Symbol: "BTC/USDT", Op: "ticker", Attempts: 3, Err: cause}
	assert.Equal(t, "could not fetch ticker for binance:BTC/USDT after 3 attempts: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, ErrInvalidPair))

	assert.Equal(t, `venue "kraken" is not supported`, (&Error{Kind: KindUnsupportedVenue, Venue: "kraken"}).Error())
	assert.Equal(t, `interval "2m" is not supported, use one of 1m, 5m, 15m, 30m, 1h, 4h, 1d`,
		(&Error{Kind: KindUnsupportedInterval, Interval: "2m"}).Error())
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestSupportedIntervalsMatchGate(t *testing.T) {
	got := SupportedIntervals()
	assert.Equal(t, []string{"1m", "5m", "15m", "30m", "1h", "4h", "1d"}, got)
	assert.Len(t, supportedIntervals, len(got))
	for _, interval := range got {
		assert.Contains(t, supportedIntervals, interval)
	}

	got[0] = "2m"
	assert.Equal(t, "1m", SupportedIntervals()[0], "callers get a copy")
}
