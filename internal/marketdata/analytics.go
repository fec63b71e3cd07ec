// Package marketdata derives read-only analytics from the simulation's
// trade log: price history, candlesticks, indicators and per-agent P&L.
// Every function is a pure transform over a trade slice; nothing here
// touches matching or scheduling state.
package marketdata

import (
	"math"
	"time"

	"github.com/nathanyu/market-sim/internal/domain"
)

// PricePoint is one executed price on the tick time base.
type PricePoint struct {
	Tick  int64     `json:"tick"`
	Time  time.Time `json:"time"`
	Price int64     `json:"price"`
}

// PriceHistory flattens the trade log into a {tick, price} series for
// charting.
func PriceHistory(trades []domain.Trade) []PricePoint {
	points := make([]PricePoint, len(trades))
	for i, t := range trades {
		points[i] = PricePoint{Tick: t.Tick, Time: t.CreatedAt, Price: t.Price}
	}
	return points
}

// Candle is OHLCV data for one bucket of ticks.
type Candle struct {
	Tick   int64 `json:"tick"` // first tick of the bucket
	Open   int64 `json:"open"`
	High   int64 `json:"high"`
	Low    int64 `json:"low"`
	Close  int64 `json:"close"`
	Volume int64 `json:"volume"`
}

// Candles buckets trades by tick into candles of timeframe ticks each.
// Buckets with no trades produce no candle.
func Candles(trades []domain.Trade, timeframe int64) []Candle {
	if timeframe <= 0 || len(trades) == 0 {
		return nil
	}

	var candles []Candle
	var current *Candle
	for _, t := range trades {
		bucket := t.Tick / timeframe * timeframe
		if current == nil || current.Tick != bucket {
			candles = append(candles, Candle{
				Tick: bucket,
				Open: t.Price, High: t.Price, Low: t.Price, Close: t.Price,
				Volume: t.Quantity,
			})
			current = &candles[len(candles)-1]
			continue
		}
		if t.Price > current.High {
			current.High = t.Price
		}
		if t.Price < current.Low {
			current.Low = t.Price
		}
		current.Close = t.Price
		current.Volume += t.Quantity
	}
	return candles
}

// SMAPoint is one simple-moving-average value, anchored at the tick of
// the window's last trade.
type SMAPoint struct {
	Tick int64   `json:"tick"`
	SMA  float64 `json:"sma"`
}

// SMA computes the simple moving average of trade prices over a sliding
// window of period trades. Returns nil until enough trades exist.
func SMA(trades []domain.Trade, period int) []SMAPoint {
	if period <= 0 || len(trades) < period {
		return nil
	}

	points := make([]SMAPoint, 0, len(trades)-period+1)
	var sum int64
	for i, t := range trades {
		sum += t.Price
		if i >= period {
			sum -= trades[i-period].Price
		}
		if i >= period-1 {
			points = append(points, SMAPoint{
				Tick: t.Tick,
				SMA:  float64(sum) / float64(period),
			})
		}
	}
	return points
}

// BollingerPoint carries the three Bollinger band values at one tick.
type BollingerPoint struct {
	Tick   int64   `json:"tick"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// Bollinger computes Bollinger bands over a sliding window of period
// trades: middle is the SMA, upper/lower are two population standard
// deviations away.
func Bollinger(trades []domain.Trade, period int) []BollingerPoint {
	if period <= 0 || len(trades) < period {
		return nil
	}

	points := make([]BollingerPoint, 0, len(trades)-period+1)
	for i := period - 1; i < len(trades); i++ {
		window := trades[i-period+1 : i+1]

		var sum float64
		for _, t := range window {
			sum += float64(t.Price)
		}
		mean := sum / float64(period)

		var variance float64
		for _, t := range window {
			d := float64(t.Price) - mean
			variance += d * d
		}
		sigma := math.Sqrt(variance / float64(period))

		points = append(points, BollingerPoint{
			Tick:   trades[i].Tick,
			Upper:  mean + 2*sigma,
			Middle: mean,
			Lower:  mean - 2*sigma,
		})
	}
	return points
}

// AgentPnL is an agent's portfolio marked to the last traded price.
type AgentPnL struct {
	AgentID   int64  `json:"agent_id"`
	Type      string `json:"type"`
	Cash      int64  `json:"cash"`
	Shares    int64  `json:"shares"`
	MarkPrice int64  `json:"mark_price"`
	PnL       int64  `json:"pnl"`
}

// PnL marks every agent's holdings to the last trade price and reports
// profit relative to the baseline cash. With no trades yet, shares are
// marked at zero.
func PnL(agents []domain.AgentInfo, trades []domain.Trade, baselineCash int64) []AgentPnL {
	var mark int64
	if len(trades) > 0 {
		mark = trades[len(trades)-1].Price
	}

	result := make([]AgentPnL, len(agents))
	for i, a := range agents {
		result[i] = AgentPnL{
			AgentID:   a.ID,
			Type:      a.Type,
			Cash:      a.Portfolio.Cash,
			Shares:    a.Portfolio.Shares,
			MarkPrice: mark,
			PnL:       a.Portfolio.Cash + a.Portfolio.Shares*mark - baselineCash,
		}
	}
	return result
}
