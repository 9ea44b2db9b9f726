package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NgigiN/fintrack/internal/finance"
	"github.com/NgigiN/fintrack/internal/store"
	"github.com/NgigiN/fintrack/internal/tips"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status reports the liveness of a long-running component, such as the
// chat bot connection.
type Status interface {
	Connected() bool
	Uptime() time.Duration
}

type Server struct {
	store  *store.Store
	status Status
	log    *zap.Logger
	router *gin.Engine
}

// New builds the router. status may be nil when no bot is running.
func New(s *store.Store, status Status, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	srv := &Server{store: s, status: status, log: log, router: gin.New()}
	srv.router.Use(gin.Recovery(), srv.logRequests)

	srv.router.GET("/health", srv.health)

	api := srv.router.Group("/api")
	{
		api.GET("/summary", srv.summary)
		api.GET("/transactions", srv.listTransactions)
		api.POST("/transactions", srv.createTransaction)
		api.DELETE("/transactions/:id", srv.deleteTransaction)
		api.GET("/tips", srv.tips)
		api.GET("/annual", srv.annual)
	}
	return srv
}

func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpSrv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("http request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("latency", time.Since(start)))
}

func (s *Server) health(c *gin.Context) {
	status := "healthy"
	code := http.StatusOK
	resp := gin.H{"timestamp": time.Now().Format(time.RFC3339)}

	if s.status != nil {
		connected := s.status.Connected()
		resp["discord_connected"] = connected
		resp["uptime"] = s.status.Uptime().String()
		if !connected {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}
	if _, ok := s.store.User(); !ok {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	resp["status"] = status
	c.JSON(code, resp)
}

// month reads ?month=YYYY-MM, defaulting to the store's selected month.
func (s *Server) month(c *gin.Context) (time.Time, bool) {
	raw := c.Query("month")
	if raw == "" {
		return s.store.SelectedMonth(), true
	}
	m, err := time.ParseInLocation("2006-01", raw, s.store.SelectedMonth().Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return time.Time{}, false
	}
	return m, true
}

func (s *Server) monthData(month time.Time) ([]finance.Transaction, finance.Summary) {
	reservation := decimal.Zero
	if u, ok := s.store.User(); ok {
		reservation = u.Reservation
	}
	all := s.store.Transactions()
	var txs []finance.Transaction
	for _, t := range all {
		if finance.InMonth(t, month) {
			txs = append(txs, t)
		}
	}
	return txs, finance.MonthSummary(all, month, reservation)
}

func (s *Server) summary(c *gin.Context) {
	month, ok := s.month(c)
	if !ok {
		return
	}
	_, sum := s.monthData(month)
	c.JSON(http.StatusOK, gin.H{
		"month":         month.Format("2006-01"),
		"summary":       sum,
		"healthScore":   finance.HealthScore(sum),
		"committedCost": finance.CommittedCost(s.store.Transactions()),
	})
}

func (s *Server) listTransactions(c *gin.Context) {
	month, ok := s.month(c)
	if !ok {
		return
	}
	txs, _ := s.monthData(month)
	if txs == nil {
		txs = []finance.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txs})
}

type createRequest struct {
	Description  string          `json:"description" binding:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Type         finance.Kind    `json:"type" binding:"required,oneof=income expense"`
	Category     string          `json:"category"`
	Date         *time.Time      `json:"date"`
	IsFixed      bool            `json:"isFixed"`
	Installments int             `json:"installments" binding:"omitempty,min=1,max=120"`
}

func (s *Server) createTransaction(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}

	draft := finance.Draft{
		Description: req.Description,
		Amount:      req.Amount,
		Kind:        req.Type,
		Category:    finance.ParseCategory(req.Category),
		IsFixed:     req.IsFixed,
	}
	if req.Date != nil {
		draft.Date = *req.Date
	}

	ctx := c.Request.Context()
	if req.Installments > 1 {
		txs, err := s.store.AddInstallments(ctx, draft, req.Installments)
		if err != nil {
			s.writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"transactions": txs})
		return
	}

	t, err := s.store.AddTransaction(ctx, draft)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": t})
}

func (s *Server) deleteTransaction(c *gin.Context) {
	if err := s.store.RemoveTransaction(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) tips(c *gin.Context) {
	month, ok := s.month(c)
	if !ok {
		return
	}
	txs, sum := s.monthData(month)
	list := tips.Analyze(txs, sum.Balance)
	if list == nil {
		list = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"tips": list})
}

func (s *Server) annual(c *gin.Context) {
	year := s.store.SelectedMonth().Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "year must be a number"})
			return
		}
		year = y
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "months": s.store.AnnualProjection(year)})
}

func (s *Server) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNoUser):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrPending):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
