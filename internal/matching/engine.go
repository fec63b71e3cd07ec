package matching

import (
	"time"

	"github.com/nathanyu/market-sim/internal/domain"
	"github.com/nathanyu/market-sim/internal/orderbook"
	"github.com/nathanyu/market-sim/internal/sequence"
)

// Engine crosses incoming orders against the resting side of the book
// and emits trades. It is synchronous: one order in, its trades out.
//
// Self-trading is permitted: the engine never compares agent IDs, so an
// agent can cross its own resting order. That mirrors the simulated
// market's design and is not silently "fixed" here.
type Engine struct {
	book     *orderbook.Book
	tradeSeq *sequence.Generator
}

// NewEngine creates a matching engine over the given book. Trade IDs
// are drawn from tradeSeq, which the owning simulation context shares
// with nothing else.
func NewEngine(book *orderbook.Book, tradeSeq *sequence.Generator) *Engine {
	return &Engine{
		book:     book,
		tradeSeq: tradeSeq,
	}
}

// ProcessOrder matches an order against the opposite side of the book
// in price-time priority. Fills always execute at the resting order's
// price; the aggressor never improves on what was quoted. A limit order
// with remaining quantity rests on the book; a market order's unfilled
// remainder is discarded (insufficient liquidity, the excess demand
// vanishes).
func (e *Engine) ProcessOrder(order *domain.Order, tick int64) ([]*domain.Trade, error) {
	opposite := order.Side.Opposite()
	now := time.Now()

	var trades []*domain.Trade
	for order.Quantity > 0 {
		resting := e.book.PeekBest(opposite)
		if resting == nil {
			break
		}
		if !crosses(order, resting) {
			break
		}

		qty := min(order.Quantity, resting.Quantity)
		trades = append(trades, &domain.Trade{
			ID:               e.tradeSeq.Next(),
			Price:            resting.Price,
			Quantity:         qty,
			AggressorOrderID: order.ID,
			RestingOrderID:   resting.ID,
			AggressorAgentID: order.AgentID,
			RestingAgentID:   resting.AgentID,
			AggressorSide:    order.Side,
			Tick:             tick,
			CreatedAt:        now,
		})

		order.Quantity -= qty
		e.book.ConsumeBest(opposite, qty)
	}

	if order.Kind == domain.OrderKindLimit && order.Quantity > 0 {
		if err := e.book.AddOrder(order); err != nil {
			return trades, err
		}
	}

	return trades, nil
}

// crosses reports whether the aggressor's price reaches the resting
// order. Market orders cross any resting price.
func crosses(order, resting *domain.Order) bool {
	if order.Kind == domain.OrderKindMarket {
		return true
	}
	if order.Side == domain.SideBuy {
		return order.Price >= resting.Price
	}
	return order.Price <= resting.Price
}
