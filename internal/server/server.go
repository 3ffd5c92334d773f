package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stock-research-agent/internal/conversation"
	"stock-research-agent/internal/interfaces"
	"stock-research-agent/internal/logger"
	"stock-research-agent/internal/orchestrator"
	"stock-research-agent/internal/status"
	"stock-research-agent/internal/types"
)

// Server exposes the research agent over HTTP.
type Server struct {
	engine   *gin.Engine
	analyzer interfaces.Analyzer
	statuses *status.Store
}

func New(analyzer interfaces.Analyzer, statuses *status.Store) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:   engine,
		analyzer: analyzer,
		statuses: statuses,
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.health)

	v1 := s.engine.Group("/api/v1")
	v1.POST("/analyze", s.analyze)
	v1.DELETE("/analyze/:request_id", s.cancel)
	v1.GET("/status/:request_id", s.requestStatus)
	v1.GET("/agents", s.agents)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "stock-research-agent"})
}

func (s *Server) analyze(c *gin.Context) {
	var req types.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Query == "" && len(req.Tickers) == 0 && req.ConversationID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query, tickers or conversation_id is required"})
		return
	}

	resp, err := s.analyzer.Analyze(c.Request.Context(), req)
	if err != nil {
		s.writeAnalyzeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) writeAnalyzeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrNoTickers):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": "could not identify any stock ticker in the query",
		})
	case errors.Is(err, orchestrator.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error": "analysis did not finish within the allowed time",
		})
	case errors.Is(err, conversation.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "conversation not found or expired",
		})
	case errors.Is(err, conversation.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{
			"error": "conversation already resolved",
		})
	default:
		logger.ErrorWithErr(c.Request.Context(), "Analyze failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (s *Server) requestStatus(c *gin.Context) {
	rec, ok := s.statuses.Get(c.Param("request_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown request_id"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) cancel(c *gin.Context) {
	id := c.Param("request_id")
	if !s.statuses.Cancel(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "request not found or already finished"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": id, "status": status.StateCancelled})
}

func (s *Server) agents(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"agents": []gin.H{
			{
				"name":        types.AgentNews,
				"description": "Fetches recent news coverage and summarizes sentiment.",
			},
			{
				"name":        types.AgentPrice,
				"description": "Computes trend, support and resistance from price history.",
			},
			{
				"name":        types.AgentSynthesis,
				"description": "Combines news, technicals and fundamentals into a recommendation.",
			},
		},
	})
}

// requestLogger logs one line per request with latency and status.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
		)
	}
}
