package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nathanyu/market-sim/internal/config"
	"github.com/nathanyu/market-sim/internal/domain"
	"github.com/nathanyu/market-sim/internal/marketdata"
	"github.com/nathanyu/market-sim/internal/middleware"
	"github.com/nathanyu/market-sim/internal/simulation"
	"github.com/nathanyu/market-sim/internal/stream"
)

// Handler holds the HTTP handler dependencies.
type Handler struct {
	sim *simulation.Sim
	hub *stream.Hub
	cfg *config.Config
}

// NewHandler creates a new Handler.
func NewHandler(sim *simulation.Sim, hub *stream.Hub, cfg *config.Config) *Handler {
	return &Handler{
		sim: sim,
		hub: hub,
		cfg: cfg,
	}
}

// RegisterRoutes sets up the Gin routes.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	r.POST("/simulation/reset", h.Reset)
	r.POST("/simulation/step", h.Step)
	r.DELETE("/order/:id", h.CancelOrder)

	data := r.Group("/data")
	{
		data.GET("/book", h.GetBook)
		data.GET("/depth", h.GetDepth)
		data.GET("/trades", h.GetTrades)
		data.GET("/price-history", h.GetPriceHistory)
		data.GET("/candlestick", h.GetCandles)
		data.GET("/indicators/sma", h.GetSMA)
		data.GET("/indicators/bbands", h.GetBollinger)
		data.GET("/pnl", h.GetPnL)
	}

	r.GET("/agents", h.ListAgents)
	r.GET("/agents/:id", h.GetAgent)
	r.POST("/agents", h.AddAgents)
	r.DELETE("/agents/:id", h.RemoveAgent)

	r.GET("/ws", h.StreamWS)
}

// Health returns a health check response.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "market-sim",
		"run_id":  h.sim.RunID(),
	})
}

// Reset handles POST /simulation/reset.
func (h *Handler) Reset(c *gin.Context) {
	h.sim.Reset()
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{
		"message": "simulation reset",
		"run_id":  h.sim.RunID(),
	})
}

// Step handles POST /simulation/step. The optional count query param
// advances multiple ticks in one call.
func (h *Handler) Step(c *gin.Context) {
	countStr := c.DefaultQuery("count", "1")
	count, err := strconv.Atoi(countStr)
	if err != nil || count <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a positive integer"})
		return
	}

	result, err := h.sim.Step(count)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	middleware.TicksTotal.Add(float64(count))
	middleware.TradesTotal.Add(float64(result.TradesEmitted))
	middleware.OrdersQueuedTotal.Add(float64(result.NewlyQueuedOrders))
	h.syncGauges()

	h.broadcastStep(result)

	c.JSON(http.StatusOK, result)
}

// broadcastStep pushes the step's trades and the fresh book snapshot to
// websocket subscribers.
func (h *Handler) broadcastStep(result simulation.StepResult) {
	if h.hub.SubscriberCount() == 0 {
		return
	}

	if result.TradesEmitted > 0 {
		trades := h.sim.Trades()
		h.hub.Broadcast(stream.Message{
			Type: "trades",
			Data: trades[len(trades)-result.TradesEmitted:],
		})
	}
	h.hub.Broadcast(stream.Message{
		Type: "book",
		Data: h.sim.SnapshotBook(),
	})
}

func (h *Handler) syncGauges() {
	bids, asks := h.sim.BookCounts()
	middleware.OrderBookDepth.WithLabelValues(string(domain.SideBuy)).Set(float64(bids))
	middleware.OrderBookDepth.WithLabelValues(string(domain.SideSell)).Set(float64(asks))
	middleware.LatencyQueueLength.Set(float64(h.sim.QueueLength()))
	middleware.AgentCount.Set(float64(len(h.sim.Agents())))
}

// CancelOrder handles DELETE /order/:id. The simulation searches the
// book first, then the latency queue.
func (h *Handler) CancelOrder(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order id must be an integer"})
		return
	}

	if !h.sim.Cancel(orderID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{"order_id": orderID, "canceled": true})
}

// GetBook handles GET /data/book.
func (h *Handler) GetBook(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.SnapshotBook())
}

// GetDepth handles GET /data/depth.
func (h *Handler) GetDepth(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Depth())
}

// GetTrades handles GET /data/trades.
func (h *Handler) GetTrades(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Trades())
}

// GetPriceHistory handles GET /data/price-history.
func (h *Handler) GetPriceHistory(c *gin.Context) {
	c.JSON(http.StatusOK, marketdata.PriceHistory(h.sim.Trades()))
}

// GetCandles handles GET /data/candlestick.
func (h *Handler) GetCandles(c *gin.Context) {
	timeframe := h.cfg.CandleTimeframe
	if raw := c.Query("timeframe"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timeframe must be a positive integer"})
			return
		}
		timeframe = parsed
	}

	candles := marketdata.Candles(h.sim.Trades(), timeframe)
	if candles == nil {
		candles = []marketdata.Candle{}
	}
	c.JSON(http.StatusOK, candles)
}

func parsePeriod(c *gin.Context) (int, bool) {
	period, err := strconv.Atoi(c.DefaultQuery("period", "20"))
	if err != nil || period <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "period must be a positive integer"})
		return 0, false
	}
	return period, true
}

// GetSMA handles GET /data/indicators/sma.
func (h *Handler) GetSMA(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	points := marketdata.SMA(h.sim.Trades(), period)
	if points == nil {
		points = []marketdata.SMAPoint{}
	}
	c.JSON(http.StatusOK, points)
}

// GetBollinger handles GET /data/indicators/bbands.
func (h *Handler) GetBollinger(c *gin.Context) {
	period, ok := parsePeriod(c)
	if !ok {
		return
	}
	points := marketdata.Bollinger(h.sim.Trades(), period)
	if points == nil {
		points = []marketdata.BollingerPoint{}
	}
	c.JSON(http.StatusOK, points)
}

// GetPnL handles GET /data/pnl.
func (h *Handler) GetPnL(c *gin.Context) {
	c.JSON(http.StatusOK, marketdata.PnL(h.sim.Agents(), h.sim.Trades(), h.cfg.BaselineCash))
}

// ListAgents handles GET /agents.
func (h *Handler) ListAgents(c *gin.Context) {
	c.JSON(http.StatusOK, h.sim.Agents())
}

// GetAgent handles GET /agents/:id.
func (h *Handler) GetAgent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent id must be an integer"})
		return
	}

	info, ok := h.sim.Agent(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}

	pnl := marketdata.PnL([]domain.AgentInfo{info}, h.sim.Trades(), h.cfg.BaselineCash)
	c.JSON(http.StatusOK, gin.H{
		"agent": info,
		"pnl":   pnl[0],
	})
}

// AddAgentsRequest is the request body for registering agents.
type AddAgentsRequest struct {
	AgentType string `json:"agent_type" binding:"required"`
	Count     int    `json:"count"`
}

// AddAgents handles POST /agents.
func (h *Handler) AddAgents(c *gin.Context) {
	var req AddAgentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Count == 0 {
		req.Count = 1
	}

	ids, err := h.sim.AddAgents(req.AgentType, req.Count)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.syncGauges()

	c.JSON(http.StatusCreated, gin.H{"agent_ids": ids})
}

// RemoveAgent handles DELETE /agents/:id.
func (h *Handler) RemoveAgent(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agent id must be an integer"})
		return
	}

	if !h.sim.RemoveAgent(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	h.syncGauges()
	c.JSON(http.StatusOK, gin.H{"agent_id": id, "removed": true})
}

// StreamWS handles GET /ws.
func (h *Handler) StreamWS(c *gin.Context) {
	h.hub.ServeWS(c.Writer, c.Request)
}
