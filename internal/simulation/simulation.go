package simulation

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nathanyu/market-sim/internal/agent"
	"github.com/nathanyu/market-sim/internal/domain"
	"github.com/nathanyu/market-sim/internal/matching"
	"github.com/nathanyu/market-sim/internal/orderbook"
	"github.com/nathanyu/market-sim/internal/sequence"
)

// DefaultBaselineCash is each agent's starting cash: $100,000 in cents.
const DefaultBaselineCash = 10_000_000

// DefaultAgentTypes is the agent mix installed by New and restored by
// Reset.
var DefaultAgentTypes = []string{
	agent.TypeLiquidityProvider,
	agent.TypeNoiseTrader,
	agent.TypeMarketTaker,
}

// Config controls a simulation instance.
type Config struct {
	// Seed for the shared random source. The whole run is deterministic
	// given a seed; Reset reseeds so replays are exact.
	Seed int64
	// BaselineCash is the starting cash per agent, in cents.
	BaselineCash int64
	// AgentTypes is the default agent set. Empty means DefaultAgentTypes.
	AgentTypes []string
	Logger     *slog.Logger
}

// queueEntry is an order waiting out its owner's latency.
type queueEntry struct {
	DueTick int64
	Order   *domain.Order
}

// registeredAgent pairs an agent's decision logic with its portfolio.
// The portfolio is mutated only by trade settlement.
type registeredAgent struct {
	agent     agent.Agent
	portfolio domain.Portfolio
}

// StepResult summarizes what a Step call did.
type StepResult struct {
	Tick              int64 `json:"tick"`
	TradesEmitted     int   `json:"trades_emitted"`
	NewlyQueuedOrders int   `json:"newly_queued_orders"`
}

// Sim is one self-contained market simulation: the discrete-tick clock,
// the latency queue, the order book and matching engine, the trade log
// and the agent registry. It owns all of them exclusively; concurrent
// API access is serialized by a single mutex, so every step, cancel and
// registry mutation runs as one exclusive section.
type Sim struct {
	mu sync.Mutex

	runID string
	tick  int64
	queue []queueEntry

	book   *orderbook.Book
	engine *matching.Engine
	trades []*domain.Trade

	agents   map[int64]*registeredAgent
	agentIDs []int64 // draw order: stable, insertion-ordered

	orderSeq sequence.Generator
	tradeSeq sequence.Generator
	agentSeq sequence.Generator

	cfg Config
	rng *rand.Rand
	log *slog.Logger
}

// New creates a simulation with the default agent set installed.
func New(cfg Config) *Sim {
	if cfg.BaselineCash == 0 {
		cfg.BaselineCash = DefaultBaselineCash
	}
	if len(cfg.AgentTypes) == 0 {
		cfg.AgentTypes = DefaultAgentTypes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Sim{
		cfg: cfg,
		log: cfg.Logger.With("component", "simulation"),
	}
	s.reinit()
	return s
}

// reinit rebuilds all simulation state. Caller holds the lock (or is
// the constructor).
func (s *Sim) reinit() {
	s.runID = uuid.New().String()
	s.tick = 0
	s.queue = nil
	s.trades = nil
	s.book = orderbook.New()
	s.orderSeq.Reset()
	s.tradeSeq.Reset()
	s.agentSeq.Reset()
	s.engine = matching.NewEngine(s.book, &s.tradeSeq)
	s.rng = rand.New(rand.NewSource(s.cfg.Seed))

	s.agents = make(map[int64]*registeredAgent)
	s.agentIDs = nil
	for _, typ := range s.cfg.AgentTypes {
		// Config agent types are validated at load; a bad entry is
		// skipped rather than poisoning the whole reset.
		if err := s.addAgent(typ); err != nil {
			s.log.Warn("skipping default agent", "type", typ, "error", err)
		}
	}

	s.log.Info("simulation initialized",
		"run_id", s.runID, "seed", s.cfg.Seed, "agents", len(s.agentIDs))
}

// Reset restores tick 0, an empty book, queue and trade log, and the
// default agent set. It is idempotent.
func (s *Sim) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reinit()
}

// RunID identifies the current run; it changes on every Reset.
func (s *Sim) RunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runID
}

// Step advances the clock n ticks. Each tick drains due queue entries
// into the matching engine in enqueue order, settles the resulting
// trades against both portfolios, appends them to the trade log, and
// only then draws one agent to generate a new latency-delayed order.
func (s *Sim) Step(n int) (StepResult, error) {
	if n <= 0 {
		return StepResult{}, fmt.Errorf("step count must be positive, got %d", n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var res StepResult
	for i := 0; i < n; i++ {
		trades, queued := s.stepOnce()
		res.TradesEmitted += trades
		res.NewlyQueuedOrders += queued
	}
	res.Tick = s.tick
	return res, nil
}

// stepOnce processes exactly one tick. Caller holds the lock.
func (s *Sim) stepOnce() (tradesEmitted, newlyQueued int) {
	// Partition the queue: due entries leave in their enqueue order.
	due := make([]queueEntry, 0)
	remaining := s.queue[:0]
	for _, entry := range s.queue {
		if entry.DueTick <= s.tick {
			due = append(due, entry)
		} else {
			remaining = append(remaining, entry)
		}
	}
	s.queue = remaining

	for _, entry := range due {
		trades, err := s.engine.ProcessOrder(entry.Order, s.tick)
		if err != nil {
			s.log.Error("order rejected by engine",
				"order_id", entry.Order.ID, "error", err)
		}
		for _, t := range trades {
			s.settle(t)
			s.trades = append(s.trades, t)
		}
		tradesEmitted += len(trades)
	}

	// Settlement is done before the draw, so an agent's latest fill is
	// reflected in its portfolio before it next acts.
	if len(s.agentIDs) > 0 {
		id := s.agentIDs[s.rng.Intn(len(s.agentIDs))]
		reg := s.agents[id]
		if order := reg.agent.Act(s.book, s.rng); order != nil {
			order.ID = s.orderSeq.Next()
			order.CreatedTick = s.tick
			order.CreatedAt = time.Now()
			s.queue = append(s.queue, queueEntry{
				DueTick: s.tick + reg.agent.Latency(),
				Order:   order,
			})
			newlyQueued++
		}
	}

	s.tick++
	return tradesEmitted, newlyQueued
}

// settle applies one trade to both portfolios: the buy side pays cash
// for shares, the sell side the reverse; the deltas are zero-sum. An
// agent removed with in-flight orders simply misses its settlement.
func (s *Sim) settle(t *domain.Trade) {
	notional := t.Price * t.Quantity

	if buyer, ok := s.agents[t.BuyerAgentID()]; ok {
		buyer.portfolio.Cash -= notional
		buyer.portfolio.Shares += t.Quantity
	}
	if seller, ok := s.agents[t.SellerAgentID()]; ok {
		seller.portfolio.Cash += notional
		seller.portfolio.Shares -= t.Quantity
	}
}

// Cancel removes an order wherever it currently lives: the book first,
// then the latency queue. Returns whether anything was found.
func (s *Sim) Cancel(orderID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.book.CancelOrder(orderID) {
		return true
	}
	for i, entry := range s.queue {
		if entry.Order.ID == orderID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// addAgent registers one agent of the given type. Caller holds the lock.
func (s *Sim) addAgent(agentType string) error {
	id := s.agentSeq.Next()
	a, err := agent.New(agentType, id)
	if err != nil {
		return err
	}

	s.agents[id] = &registeredAgent{
		agent:     a,
		portfolio: domain.Portfolio{Cash: s.cfg.BaselineCash},
	}
	s.agentIDs = append(s.agentIDs, id)
	return nil
}

// AddAgents registers count agents of the given type and returns their
// assigned IDs. An unknown type is an error and leaves the registry
// unchanged.
func (s *Sim) AddAgents(agentType string, count int) ([]int64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("agent count must be positive, got %d", count)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the type before touching the registry.
	if _, err := agent.New(agentType, 0); err != nil {
		return nil, err
	}

	ids := make([]int64, 0, count)
	for i := 0; i < count; i++ {
		if err := s.addAgent(agentType); err != nil {
			return ids, err
		}
		ids = append(ids, s.agentSeq.Current())
	}

	s.log.Info("agents added", "type", agentType, "ids", ids)
	return ids, nil
}

// RemoveAgent removes an agent by ID. Its queued and resting orders
// stay in flight; only future draws and settlements stop.
func (s *Sim) RemoveAgent(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.agents[id]; !ok {
		return false
	}
	delete(s.agents, id)
	for i, existing := range s.agentIDs {
		if existing == id {
			s.agentIDs = append(s.agentIDs[:i], s.agentIDs[i+1:]...)
			break
		}
	}

	s.log.Info("agent removed", "agent_id", id)
	return true
}

// Agents lists all registered agents in registration order.
func (s *Sim) Agents() []domain.AgentInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]domain.AgentInfo, 0, len(s.agentIDs))
	for _, id := range s.agentIDs {
		reg := s.agents[id]
		infos = append(infos, domain.AgentInfo{
			ID:        id,
			Type:      reg.agent.Type(),
			Latency:   reg.agent.Latency(),
			Portfolio: reg.portfolio,
		})
	}
	return infos
}

// Agent returns a single agent's info.
func (s *Sim) Agent(id int64) (domain.AgentInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	reg, ok := s.agents[id]
	if !ok {
		return domain.AgentInfo{}, false
	}
	return domain.AgentInfo{
		ID:        id,
		Type:      reg.agent.Type(),
		Latency:   reg.agent.Latency(),
		Portfolio: reg.portfolio,
	}, true
}

// Tick returns the current tick.
func (s *Sim) Tick() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// QueueLength returns the number of in-flight latency-queued orders.
func (s *Sim) QueueLength() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// SnapshotBook copies out the resting order state in priority order.
func (s *Sim) SnapshotBook() domain.BookSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Snapshot()
}

// Depth returns the aggregated depth-by-price view.
func (s *Sim) Depth() domain.Depth {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.Depth()
}

// BookCounts returns the number of resting orders per side.
func (s *Sim) BookCounts() (bids, asks int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.book.OrderCount(domain.SideBuy), s.book.OrderCount(domain.SideSell)
}

// Trades copies out the trade log, which grows monotonically until the
// next Reset.
func (s *Sim) Trades() []domain.Trade {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Trade, len(s.trades))
	for i, t := range s.trades {
		out[i] = *t
	}
	return out
}
