package domain

import (
	"errors"
	"time"
)

// Side represents the order side (buy or sell).
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderKind represents how an order executes. Market orders consume
// whatever liquidity is available; limit orders carry a price and rest
// on the book when not immediately filled.
type OrderKind string

const (
	OrderKindMarket OrderKind = "market"
	OrderKindLimit  OrderKind = "limit"
)

// Validation errors surfaced by the order constructors. A failed
// construction never produces a partially usable order.
var (
	ErrLimitWithoutPrice = errors.New("limit order must have a price")
	ErrMarketWithPrice   = errors.New("market order must not have a price")
	ErrNonPositiveQty    = errors.New("order quantity must be positive")
	ErrNonPositivePrice  = errors.New("order price must be positive")
)

// Order is a request to trade. Prices are in cents (int64) to avoid
// floating-point issues, e.g. 10010 = $100.10. Quantity is the remaining
// unfilled amount and is decremented by the matching engine; an order is
// removed from the book the moment it reaches zero.
//
// ID and CreatedTick are zero until the simulation stamps them on
// enqueue; both are monotonically increasing per simulation context.
type Order struct {
	ID          int64     `json:"order_id"`
	Side        Side      `json:"side"`
	Kind        OrderKind `json:"order_type"`
	Price       int64     `json:"price,omitempty"` // cents; only meaningful for limit orders
	Quantity    int64     `json:"quantity"`
	AgentID     int64     `json:"agent_id"`
	CreatedTick int64     `json:"created_tick"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewLimitOrder builds a validated limit order. The price and quantity
// must be strictly positive.
func NewLimitOrder(agentID int64, side Side, price, quantity int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrNonPositiveQty
	}
	if price <= 0 {
		return nil, ErrNonPositivePrice
	}
	return &Order{
		Side:     side,
		Kind:     OrderKindLimit,
		Price:    price,
		Quantity: quantity,
		AgentID:  agentID,
	}, nil
}

// NewMarketOrder builds a validated market order. Market orders never
// carry a price.
func NewMarketOrder(agentID int64, side Side, quantity int64) (*Order, error) {
	if quantity <= 0 {
		return nil, ErrNonPositiveQty
	}
	return &Order{
		Side:     side,
		Kind:     OrderKindMarket,
		Quantity: quantity,
		AgentID:  agentID,
	}, nil
}

// Validate re-checks the order invariants, for orders built outside the
// constructors (e.g. decoded from a request body).
func (o *Order) Validate() error {
	if o.Quantity <= 0 {
		return ErrNonPositiveQty
	}
	switch o.Kind {
	case OrderKindLimit:
		if o.Price <= 0 {
			return ErrLimitWithoutPrice
		}
	case OrderKindMarket:
		if o.Price != 0 {
			return ErrMarketWithPrice
		}
	}
	return nil
}

// Trade is a single execution between an aggressor and a resting order.
// The price is always the resting order's quoted price. Trades are
// append-only and never mutated once emitted.
type Trade struct {
	ID               int64     `json:"trade_id"`
	Price            int64     `json:"price"` // cents; the resting order's price
	Quantity         int64     `json:"quantity"`
	AggressorOrderID int64     `json:"aggressor_order_id"`
	RestingOrderID   int64     `json:"resting_order_id"`
	AggressorAgentID int64     `json:"aggressor_agent_id"`
	RestingAgentID   int64     `json:"resting_agent_id"`
	AggressorSide    Side      `json:"side"`
	Tick             int64     `json:"tick"`
	CreatedAt        time.Time `json:"timestamp"`
}

// BuyerAgentID returns the agent on the buy side of the trade.
func (t *Trade) BuyerAgentID() int64 {
	if t.AggressorSide == SideBuy {
		return t.AggressorAgentID
	}
	return t.RestingAgentID
}

// SellerAgentID returns the agent on the sell side of the trade.
func (t *Trade) SellerAgentID() int64 {
	if t.AggressorSide == SideSell {
		return t.AggressorAgentID
	}
	return t.RestingAgentID
}

// PriceLevel is an aggregated resting quantity at one price.
type PriceLevel struct {
	Price    int64 `json:"price"`
	Quantity int64 `json:"quantity"`
}

// BookSnapshot is the full resting order state, bids sorted by
// (price desc, arrival asc) and asks by (price asc, arrival asc).
type BookSnapshot struct {
	Bids []Order `json:"bids"`
	Asks []Order `json:"asks"`
}

// Depth is the aggregated depth-by-price view of the book.
type Depth struct {
	Bids []PriceLevel `json:"bids"`
	Asks []PriceLevel `json:"asks"`
}

// Portfolio tracks an agent's cash (cents) and share count. It starts
// at the configured baseline and is mutated only by trade settlement.
type Portfolio struct {
	Cash   int64 `json:"cash"`
	Shares int64 `json:"shares"`
}

// AgentInfo is the read-side description of a registered agent.
type AgentInfo struct {
	ID        int64     `json:"agent_id"`
	Type      string    `json:"type"`
	Latency   int64     `json:"latency"`
	Portfolio Portfolio `json:"portfolio"`
}
