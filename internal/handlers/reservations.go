package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"citypulse/internal/engine"
	"citypulse/internal/metrics"
	"citypulse/internal/models"
)

// CreateReservation - POST /api/reservations
// Создать бронирование одного места
func (h *Handlers) CreateReservation(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reservation, err := h.guard.Reserve(c.Request.Context(), req.EventID, req.UserID, req.UserName)
	if err != nil {
		metrics.Reservations.WithLabelValues(reservationOutcome(err)).Inc()

		switch {
		case errors.Is(err, engine.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case errors.Is(err, engine.ErrSoldOut):
			c.JSON(http.StatusConflict, gin.H{"error": "sold out"})
		case errors.Is(err, engine.ErrEventEnded):
			c.JSON(http.StatusConflict, gin.H{"error": "event ended"})
		case errors.Is(err, engine.ErrAlreadyReserved):
			c.JSON(http.StatusConflict, gin.H{"error": "already reserved"})
		default:
			slog.Error("Failed to create reservation", "error", err, "event_id", req.EventID)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reservation"})
		}
		return
	}

	metrics.Reservations.WithLabelValues("success").Inc()
	c.JSON(http.StatusCreated, reservation)
}

// ListReservations - GET /api/reservations?userId=...
func (h *Handlers) ListReservations(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	reservations, err := h.guard.Reservations(c.Request.Context(), userID)
	if err != nil {
		slog.Error("Failed to list reservations", "error", err, "user_id", userID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reservations"})
		return
	}

	if reservations == nil {
		reservations = []models.Reservation{}
	}
	c.JSON(http.StatusOK, reservations)
}

func reservationOutcome(err error) string {
	switch {
	case errors.Is(err, engine.ErrEventNotFound):
		return "not_found"
	case errors.Is(err, engine.ErrSoldOut):
		return "sold_out"
	case errors.Is(err, engine.ErrEventEnded):
		return "event_ended"
	case errors.Is(err, engine.ErrAlreadyReserved):
		return "already_reserved"
	default:
		return "error"
	}
}
