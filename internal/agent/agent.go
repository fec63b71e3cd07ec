package agent

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/nathanyu/market-sim/internal/domain"
)

// Agent type names, as accepted by the registry API.
const (
	TypeLiquidityProvider = "LiquidityProvider"
	TypeNoiseTrader       = "NoiseTrader"
	TypeMarketTaker       = "MarketTaker"
)

// ErrUnknownType is returned when an agent type string is not one of
// the known variants.
var ErrUnknownType = errors.New("unknown agent type")

// BookView is the read-only slice of the order book an agent may see
// when deciding whether to act.
type BookView interface {
	BestBid() (int64, bool)
	BestAsk() (int64, bool)
}

// Agent is a trading decision unit. Act is a pure function of the
// current book view and the injected random source: it returns a new
// order or nil, and has no other side effects. The agent never touches
// its own portfolio; settlement is the simulation's job.
type Agent interface {
	ID() int64
	Type() string
	Latency() int64
	Act(view BookView, rng *rand.Rand) *domain.Order
}

// New constructs an agent of the named type with the given identifier.
func New(agentType string, id int64) (Agent, error) {
	switch agentType {
	case TypeLiquidityProvider:
		return &LiquidityProvider{id: id}, nil
	case TypeNoiseTrader:
		return &NoiseTrader{id: id}, nil
	case TypeMarketTaker:
		return &MarketTaker{id: id}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, agentType)
	}
}

// Prices are in cents. When a side of the book is empty the agents fall
// back to a reference price around $100.
const (
	defaultBestBid   = 9990  // $99.90
	defaultBestAsk   = 10010 // $100.10
	defaultMidPrice  = 10000 // $100.00
	priceIncrement   = 1     // one cent
	providerQuantity = 10
)

func randomSide(rng *rand.Rand) domain.Side {
	if rng.Intn(2) == 0 {
		return domain.SideBuy
	}
	return domain.SideSell
}

// LiquidityProvider always acts, quoting a fixed-size limit order one
// increment outside the current best price on a randomly chosen side.
// Latency 1: its quotes reach the book on the next tick.
type LiquidityProvider struct {
	id int64
}

func (a *LiquidityProvider) ID() int64      { return a.id }
func (a *LiquidityProvider) Type() string   { return TypeLiquidityProvider }
func (a *LiquidityProvider) Latency() int64 { return 1 }

func (a *LiquidityProvider) Act(view BookView, rng *rand.Rand) *domain.Order {
	side := randomSide(rng)

	var price int64
	if side == domain.SideBuy {
		best, ok := view.BestBid()
		if !ok {
			best = defaultBestBid
		}
		price = best - priceIncrement
	} else {
		best, ok := view.BestAsk()
		if !ok {
			best = defaultBestAsk
		}
		price = best + priceIncrement
	}

	order, err := domain.NewLimitOrder(a.id, side, price, providerQuantity)
	if err != nil {
		return nil
	}
	return order
}

// NoiseTrader acts half the time, with a random side, quantity and
// order kind. Limit prices are drawn uniformly from a ±5% band around
// the relevant best price. Latency 5: the slowest participant.
type NoiseTrader struct {
	id int64
}

func (a *NoiseTrader) ID() int64      { return a.id }
func (a *NoiseTrader) Type() string   { return TypeNoiseTrader }
func (a *NoiseTrader) Latency() int64 { return 5 }

func (a *NoiseTrader) Act(view BookView, rng *rand.Rand) *domain.Order {
	if rng.Float64() < 0.5 {
		return nil
	}

	side := randomSide(rng)
	quantity := 1 + rng.Int63n(10) // 1..10

	if rng.Intn(2) == 0 {
		order, err := domain.NewMarketOrder(a.id, side, quantity)
		if err != nil {
			return nil
		}
		return order
	}

	var ref int64
	var ok bool
	if side == domain.SideBuy {
		ref, ok = view.BestBid()
	} else {
		ref, ok = view.BestAsk()
	}
	if !ok {
		ref = defaultMidPrice
	}

	lo := ref * 95 / 100
	hi := ref * 105 / 100
	price := lo + rng.Int63n(hi-lo+1)

	order, err := domain.NewLimitOrder(a.id, side, price, quantity)
	if err != nil {
		return nil
	}
	return order
}

// MarketTaker acts 20% of the time and only ever takes liquidity with
// market orders. Latency 2.
type MarketTaker struct {
	id int64
}

func (a *MarketTaker) ID() int64      { return a.id }
func (a *MarketTaker) Type() string   { return TypeMarketTaker }
func (a *MarketTaker) Latency() int64 { return 2 }

func (a *MarketTaker) Act(view BookView, rng *rand.Rand) *domain.Order {
	if rng.Float64() < 0.8 {
		return nil
	}

	side := randomSide(rng)
	quantity := 5 + rng.Int63n(16) // 5..20

	order, err := domain.NewMarketOrder(a.id, side, quantity)
	if err != nil {
		return nil
	}
	return order
}
