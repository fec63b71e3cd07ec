package orderbook

import (
	"container/list"
	"fmt"
	"sort"

	"github.com/nathanyu/market-sim/internal/domain"
)

// orderEntry maps an order to its linked list element for O(1) cancel.
type orderEntry struct {
	order   *domain.Order
	element *list.Element
	level   *bookLevel
}

// bookLevel is a price level in one side of the book.
// It holds a doubly-linked list of orders at this price (FIFO), so time
// priority within a price is the list's insertion order.
type bookLevel struct {
	Price       int64
	TotalVolume int64
	Orders      *list.List // of *domain.Order
}

// bookSide represents one side (buy or sell) of the order book.
type bookSide struct {
	Side      domain.Side
	LimitMap  map[int64]*bookLevel // price -> level
	bestPrice int64                // best bid (highest buy) or best ask (lowest sell)
	hasOrders bool
	count     int
}

func newBookSide(side domain.Side) *bookSide {
	return &bookSide{
		Side:     side,
		LimitMap: make(map[int64]*bookLevel),
	}
}

// addOrder appends an order to the tail of its price level's list.
func (b *bookSide) addOrder(order *domain.Order) *list.Element {
	level, exists := b.LimitMap[order.Price]
	if !exists {
		level = &bookLevel{
			Price:  order.Price,
			Orders: list.New(),
		}
		b.LimitMap[order.Price] = level
	}

	level.TotalVolume += order.Quantity
	elem := level.Orders.PushBack(order)
	b.count++

	b.refreshBestPrice()
	return elem
}

// removeOrder removes an order from its price level.
func (b *bookSide) removeOrder(entry *orderEntry) {
	level := entry.level
	level.Orders.Remove(entry.element)
	level.TotalVolume -= entry.order.Quantity
	b.count--

	if level.Orders.Len() == 0 {
		delete(b.LimitMap, level.Price)
	}

	b.refreshBestPrice()
}

// refreshBestPrice recalculates the best price.
func (b *bookSide) refreshBestPrice() {
	if len(b.LimitMap) == 0 {
		b.hasOrders = false
		b.bestPrice = 0
		return
	}

	b.hasOrders = true
	if b.Side == domain.SideBuy {
		// Best bid = highest price
		best := int64(0)
		for price := range b.LimitMap {
			if price > best {
				best = price
			}
		}
		b.bestPrice = best
	} else {
		// Best ask = lowest price
		best := int64(1<<62 - 1)
		for price := range b.LimitMap {
			if price < best {
				best = price
			}
		}
		b.bestPrice = best
	}
}

// sortedPrices returns this side's prices in priority order:
// descending for bids, ascending for asks.
func (b *bookSide) sortedPrices() []int64 {
	prices := make([]int64, 0, len(b.LimitMap))
	for price := range b.LimitMap {
		prices = append(prices, price)
	}
	if b.Side == domain.SideBuy {
		sort.Slice(prices, func(i, j int) bool { return prices[i] > prices[j] })
	} else {
		sort.Slice(prices, func(i, j int) bool { return prices[i] < prices[j] })
	}
	return prices
}

// Book holds the two-sided order book for the simulated asset. It only
// ever contains resting limit orders with positive remaining quantity;
// market orders exist transiently inside the matching engine.
type Book struct {
	bids     *bookSide
	asks     *bookSide
	orderMap map[int64]*orderEntry // orderID -> entry for O(1) lookup/cancel
}

// New creates an empty order book.
func New() *Book {
	return &Book{
		bids:     newBookSide(domain.SideBuy),
		asks:     newBookSide(domain.SideSell),
		orderMap: make(map[int64]*orderEntry),
	}
}

func (b *Book) sideFor(s domain.Side) *bookSide {
	if s == domain.SideBuy {
		return b.bids
	}
	return b.asks
}

// AddOrder rests a limit order on its side of the book. Only limit
// orders with positive quantity may rest.
func (b *Book) AddOrder(order *domain.Order) error {
	if order.Kind != domain.OrderKindLimit {
		return fmt.Errorf("only limit orders can rest on the book, got %s", order.Kind)
	}
	if order.Quantity <= 0 {
		return domain.ErrNonPositiveQty
	}

	side := b.sideFor(order.Side)
	elem := side.addOrder(order)
	b.orderMap[order.ID] = &orderEntry{
		order:   order,
		element: elem,
		level:   side.LimitMap[order.Price],
	}
	return nil
}

// CancelOrder removes an order from the book by ID. Returns whether an
// order was found; cancellation has no other ordering side effects.
func (b *Book) CancelOrder(orderID int64) bool {
	entry, exists := b.orderMap[orderID]
	if !exists {
		return false
	}

	b.sideFor(entry.order.Side).removeOrder(entry)
	delete(b.orderMap, orderID)
	return true
}

// BestBid returns the highest bid price, if any bid is resting.
func (b *Book) BestBid() (int64, bool) {
	return b.bids.bestPrice, b.bids.hasOrders
}

// BestAsk returns the lowest ask price, if any ask is resting.
func (b *Book) BestAsk() (int64, bool) {
	return b.asks.bestPrice, b.asks.hasOrders
}

// Spread returns best ask minus best bid, valid only when both sides
// are non-empty.
func (b *Book) Spread() (int64, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()
	if !okBid || !okAsk {
		return 0, false
	}
	return ask - bid, true
}

// PeekBest returns the highest-priority resting order on the given
// side (best price, earliest arrival), or nil if the side is empty.
func (b *Book) PeekBest(s domain.Side) *domain.Order {
	side := b.sideFor(s)
	if !side.hasOrders {
		return nil
	}
	level := side.LimitMap[side.bestPrice]
	return level.Orders.Front().Value.(*domain.Order)
}

// ConsumeBest decrements the head order of the given side's best level
// by qty, removing it when fully consumed. The caller guarantees qty
// does not exceed the head order's remaining quantity.
func (b *Book) ConsumeBest(s domain.Side, qty int64) {
	side := b.sideFor(s)
	level := side.LimitMap[side.bestPrice]
	front := level.Orders.Front()
	order := front.Value.(*domain.Order)

	order.Quantity -= qty
	level.TotalVolume -= qty

	if order.Quantity == 0 {
		level.Orders.Remove(front)
		side.count--
		delete(b.orderMap, order.ID)
		if level.Orders.Len() == 0 {
			delete(side.LimitMap, level.Price)
			side.refreshBestPrice()
		}
	}
}

// OrderCount returns the number of resting orders on one side.
func (b *Book) OrderCount(s domain.Side) int {
	return b.sideFor(s).count
}

// Depth aggregates resting quantity per distinct price on each side,
// bids descending and asks ascending. Pure read-side view.
func (b *Book) Depth() domain.Depth {
	return domain.Depth{
		Bids: aggregateLevels(b.bids),
		Asks: aggregateLevels(b.asks),
	}
}

func aggregateLevels(side *bookSide) []domain.PriceLevel {
	prices := side.sortedPrices()
	levels := make([]domain.PriceLevel, len(prices))
	for i, price := range prices {
		levels[i] = domain.PriceLevel{
			Price:    price,
			Quantity: side.LimitMap[price].TotalVolume,
		}
	}
	return levels
}

// Snapshot copies out every resting order in price-time priority order.
func (b *Book) Snapshot() domain.BookSnapshot {
	return domain.BookSnapshot{
		Bids: collectOrders(b.bids),
		Asks: collectOrders(b.asks),
	}
}

func collectOrders(side *bookSide) []domain.Order {
	orders := make([]domain.Order, 0, side.count)
	for _, price := range side.sortedPrices() {
		for e := side.LimitMap[price].Orders.Front(); e != nil; e = e.Next() {
			orders = append(orders, *e.Value.(*domain.Order))
		}
	}
	return orders
}
