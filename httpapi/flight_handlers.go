package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	igcroute "github.com/lucasjlepore/igc-route"
	"github.com/lucasjlepore/igc-route/route"
)

// handleAnalyze decodes a raw IGC body and returns header, stats and notes.
// POST /v1/flights/analyze
func (s *Server) handleAnalyze(c *gin.Context) {
	a, ok := s.analyzeBody(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"header":            a.Header,
			"stats":             a.Stats,
			"malformed_records": a.MalformedRecords,
			"line_count":        a.LineCount,
			"notes":             a.Notes,
		},
	})
}

// handleRoute returns the simplified waypoint list.
// POST /v1/flights/route?level=low|medium|high
func (s *Server) handleRoute(c *gin.Context) {
	a, ok := s.analyzeBody(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"level":           a.Level,
			"distance_km":     a.Stats.DistanceKm,
			"target_count":    a.TargetCount,
			"candidate_count": a.CandidateCount,
			"waypoints":       a.Waypoints,
			"route_structure": a.Structure,
		},
		"meta": gin.H{
			"count": len(a.Waypoints),
		},
	})
}

// handleExport renders the route as a QR-sized payload.
// POST /v1/flights/export?level=...&format=gpx|csv
func (s *Server) handleExport(c *gin.Context) {
	format, err := route.ParseFormat(c.Query("format"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, ok := s.analyzeBody(c)
	if !ok {
		return
	}

	payload, err := a.Export(format)
	if errors.Is(err, route.ErrExportTooLarge) {
		s.logger.Warn("export rejected", "waypoints", len(a.Waypoints), "error", err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": route.ErrExportTooLarge.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": payload})
}

// analyzeBody reads the capped request body and runs the analysis at the
// requested level. On failure it has already written the response.
func (s *Server) analyzeBody(c *gin.Context) (*igcroute.Analysis, bool) {
	level := s.cfg.DefaultLevel
	if lvlStr := c.Query("level"); lvlStr != "" {
		parsed, err := route.ParseLevel(lvlStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return nil, false
		}
		level = parsed
	}

	body, err := readBody(c, s.cfg.MaxUploadBytes)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("flight log exceeds %d bytes", tooLarge.Limit),
			})
			return nil, false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must contain an IGC flight log"})
		return nil, false
	}

	a := igcroute.Analyze(string(body), igcroute.Config{Level: level, Now: s.now})
	if a.MalformedRecords > 0 {
		s.logger.Debug("malformed fixes skipped", "count", a.MalformedRecords)
	}
	return a, true
}

func readBody(c *gin.Context, limit int64) ([]byte, error) {
	if limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	return body, nil
}
