package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"citypulse/internal/metrics"
	"citypulse/internal/models"
)

// Trending - GET /api/views/trending
// Десять ближайших событий с наибольшим числом броней
func (h *Handlers) Trending(c *gin.Context) {
	h.serveCachedView(c, "trending", func() interface{} {
		return h.engine.Trending()
	})
}

// AllEvents - GET /api/views/all
// Все предстоящие события, ближайшие по дате первыми
func (h *Handlers) AllEvents(c *gin.Context) {
	h.serveCachedView(c, "all", func() interface{} {
		return h.engine.AllEvents()
	})
}

// NearYou - GET /api/views/nearyou
func (h *Handlers) NearYou(c *gin.Context) {
	metrics.ViewRequests.WithLabelValues("nearyou").Inc()

	status, events := h.engine.NearYou()
	if events == nil {
		events = []models.EventDistance{}
	}

	c.JSON(http.StatusOK, models.NearYouResponse{
		Status: status,
		Events: events,
	})
}

// Calendar - GET /api/views/calendar?month=2025-06 or ?date=2025-06-03
func (h *Handlers) Calendar(c *gin.Context) {
	metrics.ViewRequests.WithLabelValues("calendar").Inc()

	if date := c.Query("date"); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
			return
		}

		events := h.engine.EventsOn(day)
		if events == nil {
			events = []models.Event{}
		}
		c.JSON(http.StatusOK, models.CalendarDayResponse{
			Date:   date,
			Events: events,
		})
		return
	}

	month := c.Query("month")
	if month == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month or date is required"})
		return
	}

	parsed, err := time.Parse("2006-01", month)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be YYYY-MM"})
		return
	}

	days := h.engine.EventDays(parsed.Year(), parsed.Month())
	if days == nil {
		days = []int{}
	}
	c.JSON(http.StatusOK, models.CalendarMonthResponse{
		Month: month,
		Days:  days,
	})
}

// MapPins - GET /api/views/map
func (h *Handlers) MapPins(c *gin.Context) {
	metrics.ViewRequests.WithLabelValues("map").Inc()

	pins := h.engine.MapPins()
	if pins == nil {
		pins = []models.Event{}
	}
	c.JSON(http.StatusOK, pins)
}

// UpdateCriteria - PUT /api/criteria
// Заменяет выбранные категории и поисковый запрос сессии
func (h *Handlers) UpdateCriteria(c *gin.Context) {
	var req models.UpdateCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	for _, cat := range req.Categories {
		if !cat.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category: " + string(cat)})
			return
		}
	}

	h.engine.SetCriteria(req.Categories, req.Query)
	c.Status(http.StatusNoContent)
}

// UpdateLocation - POST /api/location
// Принимает разрешенную локацию; пустое тело сбрасывает ее
func (h *Handlers) UpdateLocation(c *gin.Context) {
	var req models.LocationUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Lat == nil || req.Lng == nil {
		// Resolution failed upstream; absence is a valid state.
		h.engine.SetLocation(c.Request.Context(), nil)
		c.Status(http.StatusNoContent)
		return
	}

	h.engine.SetLocation(c.Request.Context(), &models.LatLng{Lat: *req.Lat, Lng: *req.Lng})
	c.Status(http.StatusNoContent)
}

// serveCachedView derives a view, going through the Valkey cache when
// one is configured. Cached entries are keyed by snapshot and criteria
// versions, so hits are always current.
func (h *Handlers) serveCachedView(c *gin.Context, view string, derive func() interface{}) {
	metrics.ViewRequests.WithLabelValues(view).Inc()

	snapVer, critVer := h.engine.Versions()

	if h.valkeyClient != nil {
		rawJSON, err := h.valkeyClient.GetViewRaw(c.Request.Context(), view, snapVer, critVer)
		if err == nil {
			metrics.ViewCacheHits.WithLabelValues(view).Inc()
			c.Data(http.StatusOK, "application/json", rawJSON)
			return
		}
		slog.Debug("Cache miss for view", "view", view, "error", err)
	}

	response := derive()

	if h.valkeyClient != nil {
		h.valkeyClient.SetView(c.Request.Context(), view, snapVer, critVer, response)
	}

	c.JSON(http.StatusOK, response)
}
