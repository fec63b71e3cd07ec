package agent

import (
	"math/rand"
	"testing"

	"github.com/nathanyu/market-sim/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubView is a fixed book view for driving agent decisions.
type stubView struct {
	bid, ask       int64
	hasBid, hasAsk bool
}

func (v stubView) BestBid() (int64, bool) { return v.bid, v.hasBid }
func (v stubView) BestAsk() (int64, bool) { return v.ask, v.hasAsk }

func TestNew(t *testing.T) {
	for _, typ := range []string{TypeLiquidityProvider, TypeNoiseTrader, TypeMarketTaker} {
		a, err := New(typ, 7)
		require.NoError(t, err)
		assert.Equal(t, typ, a.Type())
		assert.Equal(t, int64(7), a.ID())
		assert.Positive(t, a.Latency())
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New("HighFrequencyWizard", 1)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestLatencies(t *testing.T) {
	lp, _ := New(TypeLiquidityProvider, 1)
	nt, _ := New(TypeNoiseTrader, 2)
	mt, _ := New(TypeMarketTaker, 3)

	assert.Equal(t, int64(1), lp.Latency())
	assert.Equal(t, int64(5), nt.Latency())
	assert.Equal(t, int64(2), mt.Latency())
}

func TestLiquidityProvider_QuotesOutsideBest(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	a := &LiquidityProvider{id: 1}
	view := stubView{bid: 10000, ask: 10020, hasBid: true, hasAsk: true}

	sidesSeen := map[domain.Side]bool{}
	for i := 0; i < 100; i++ {
		order := a.Act(view, rng)
		require.NotNil(t, order) // always acts

		assert.Equal(t, domain.OrderKindLimit, order.Kind)
		assert.Equal(t, int64(10), order.Quantity)
		assert.Equal(t, int64(1), order.AgentID)

		sidesSeen[order.Side] = true
		if order.Side == domain.SideBuy {
			assert.Equal(t, int64(9999), order.Price) // one cent below best bid
		} else {
			assert.Equal(t, int64(10021), order.Price) // one cent above best ask
		}
	}
	assert.True(t, sidesSeen[domain.SideBuy])
	assert.True(t, sidesSeen[domain.SideSell])
}

func TestLiquidityProvider_EmptyBookDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := &LiquidityProvider{id: 1}

	for i := 0; i < 100; i++ {
		order := a.Act(stubView{}, rng)
		require.NotNil(t, order)
		if order.Side == domain.SideBuy {
			assert.Equal(t, int64(9989), order.Price) // 99.90 - 0.01
		} else {
			assert.Equal(t, int64(10011), order.Price) // 100.10 + 0.01
		}
	}
}

func TestNoiseTrader_OrderShape(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	a := &NoiseTrader{id: 2}
	view := stubView{bid: 10000, ask: 10000, hasBid: true, hasAsk: true}

	var acted, skipped int
	kindsSeen := map[domain.OrderKind]bool{}
	for i := 0; i < 400; i++ {
		order := a.Act(view, rng)
		if order == nil {
			skipped++
			continue
		}
		acted++

		require.NoError(t, order.Validate())
		assert.Equal(t, int64(2), order.AgentID)
		assert.GreaterOrEqual(t, order.Quantity, int64(1))
		assert.LessOrEqual(t, order.Quantity, int64(10))

		kindsSeen[order.Kind] = true
		if order.Kind == domain.OrderKindLimit {
			// ±5% around the reference price of 10000.
			assert.GreaterOrEqual(t, order.Price, int64(9500))
			assert.LessOrEqual(t, order.Price, int64(10500))
		}
	}

	// Roughly half the draws act; both outcomes and both kinds occur.
	assert.Positive(t, acted)
	assert.Positive(t, skipped)
	assert.True(t, kindsSeen[domain.OrderKindLimit])
	assert.True(t, kindsSeen[domain.OrderKindMarket])
}

func TestNoiseTrader_DefaultReferencePrice(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	a := &NoiseTrader{id: 2}

	for i := 0; i < 400; i++ {
		order := a.Act(stubView{}, rng)
		if order == nil || order.Kind != domain.OrderKindLimit {
			continue
		}
		assert.GreaterOrEqual(t, order.Price, int64(9500))
		assert.LessOrEqual(t, order.Price, int64(10500))
	}
}

func TestMarketTaker_OnlyMarketOrders(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	a := &MarketTaker{id: 3}

	var acted, skipped int
	for i := 0; i < 400; i++ {
		order := a.Act(stubView{}, rng)
		if order == nil {
			skipped++
			continue
		}
		acted++

		assert.Equal(t, domain.OrderKindMarket, order.Kind)
		assert.Zero(t, order.Price)
		assert.GreaterOrEqual(t, order.Quantity, int64(5))
		assert.LessOrEqual(t, order.Quantity, int64(20))
	}

	// Acts about a fifth of the time.
	assert.Positive(t, acted)
	assert.Greater(t, skipped, acted)
}

func TestAct_Deterministic(t *testing.T) {
	view := stubView{bid: 10000, ask: 10020, hasBid: true, hasAsk: true}

	for _, typ := range []string{TypeLiquidityProvider, TypeNoiseTrader, TypeMarketTaker} {
		a, err := New(typ, 1)
		require.NoError(t, err)

		r1 := rand.New(rand.NewSource(42))
		r2 := rand.New(rand.NewSource(42))
		for i := 0; i < 50; i++ {
			o1 := a.Act(view, r1)
			o2 := a.Act(view, r2)
			assert.Equal(t, o1, o2)
		}
	}
}
