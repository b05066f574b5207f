package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"candlescan/internal/market"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handlePatterns returns recently emitted pattern events, newest first.
// Optional ?limit= caps the result (default all retained events).
func (s *Server) handlePatterns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	events := s.engine.Recent(limit)
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// handleCandles returns the current window for one series.
func (s *Server) handleCandles(c *gin.Context) {
	symbol := strings.ToUpper(c.Query("symbol"))
	timeframe := c.Query("timeframe")
	if symbol == "" || timeframe == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol and timeframe are required"})
		return
	}

	key := market.SeriesKey{Instrument: symbol, Timeframe: timeframe}
	candles := s.engine.Store().Get(key)
	c.JSON(http.StatusOK, gin.H{
		"symbol":    symbol,
		"timeframe": timeframe,
		"count":     len(candles),
		"candles":   candles,
	})
}

// handleSeries lists the series currently held in the store.
func (s *Server) handleSeries(c *gin.Context) {
	keys := s.engine.Store().Keys()
	series := make([]gin.H, 0, len(keys))
	for _, k := range keys {
		series = append(series, gin.H{
			"symbol":    k.Instrument,
			"timeframe": k.Timeframe,
			"candles":   s.engine.Store().Len(k),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(series),
		"series": series,
	})
}

func (s *Server) handleStats(c *gin.Context) {
	resp := gin.H{
		"engine": s.engine.Stats(),
		"feed":   s.subs.Stats(),
	}
	if s.stream != nil {
		resp["reconnects"] = s.stream.Reconnects()
	}
	c.JSON(http.StatusOK, resp)
}
