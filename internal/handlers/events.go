package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"citypulse/internal/metrics"
	"citypulse/internal/models"
)

// IngestSnapshot - POST /api/events/snapshot
// Полная замена коллекции событий; частичных обновлений нет
func (h *Handlers) IngestSnapshot(c *gin.Context) {
	var req models.SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, e := range req.Events {
		if e.ID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event id is required"})
			return
		}
		if !e.Category.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + string(e.Category)})
			return
		}
		if e.Capacity <= 0 || e.BookedSeats < 0 || e.BookedSeats > e.Capacity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat counts for event " + e.ID})
			return
		}
	}

	h.events.ReplaceAll(req.Events)
	metrics.SnapshotsReceived.Inc()

	slog.Info("Applied event snapshot", "count", len(req.Events))
	c.Status(http.StatusNoContent)
}

// Search - GET /api/search?q=...&size=20
// Глубокий поиск по названию и описанию
func (h *Handlers) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	}

	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if size < 1 || size > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 100"})
		return
	}

	if h.searcher != nil {
		results, err := h.searcher.Search(c.Request.Context(), query, size)
		if err == nil {
			c.JSON(http.StatusOK, results)
			return
		}
		// Degrade to the snapshot scan; the last known state beats a 500.
		slog.Error("Deep search failed, falling back to snapshot scan", "error", err)
	}

	lower := strings.ToLower(query)
	results := make([]models.Event, 0)
	for _, e := range h.events.All() {
		if strings.Contains(strings.ToLower(e.Title), lower) ||
			strings.Contains(strings.ToLower(e.Description), lower) {
			results = append(results, e)
		}
		if len(results) == size {
			break
		}
	}

	c.JSON(http.StatusOK, results)
}
