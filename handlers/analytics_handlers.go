package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/models"
	"ecomdemo/datagen/utils"
)

const queryTimeout = 10 * time.Second

type AnalyticsRepository interface {
	InsertEvents(ctx context.Context, events []models.Event) error
	Funnel(ctx context.Context, start, end time.Time) ([]models.FunnelStep, error)
	EventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventType string) ([]models.CountByTime, error)
	UniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.CountByTime, error)
	RevenueOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.RevenueByTime, error)
	TopProducts(ctx context.Context, start, end time.Time, limit uint64) ([]models.TopProductResult, error)
}

type AnalyticsHandlers struct {
	Analytics AnalyticsRepository
	now       func() time.Time
}

func NewAnalyticsHandlers(repo AnalyticsRepository) *AnalyticsHandlers {
	return &AnalyticsHandlers{Analytics: repo, now: time.Now}
}

// TrackEvent ingests a JSON array of events. Ids, timestamps and dates are filled in
// when the client leaves them empty.
func (h *AnalyticsHandlers) TrackEvent(c *gin.Context) {
	var incoming []models.Event
	if err := c.ShouldBindJSON(&incoming); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(incoming) == 0 {
		c.Status(http.StatusOK)
		return
	}

	now := h.now().UTC()
	events := make([]models.Event, 0, len(incoming))
	for i, e := range incoming {
		if !e.EventType.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("event %d has unknown eventType %q", i, e.EventType)})
			return
		}
		if e.EventID == "" {
			e.EventID = uuid.New().String()
		}
		if e.EventTS.IsZero() {
			e.EventTS = now
		}
		e.EventTS = e.EventTS.UTC()
		e.EventDate = models.DateOf(e.EventTS)
		events = append(events, e)
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Analytics.InsertEvents(ctx, events); err != nil {
		log.Error().Err(err).Int("events", len(events)).Msg("failed to record tracked events")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record events"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accepted": len(events)})
}

func (h *AnalyticsHandlers) timeRange(c *gin.Context) (time.Time, time.Time, bool) {
	start, end, err := utils.ParseTimeRange(c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func interval(c *gin.Context) (string, bool) {
	iv := c.Query("interval")
	if !utils.IsValidInterval(iv) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval query parameter must be one of Minute, Hour, Day, Week, Month, Quarter, Year"})
		return "", false
	}
	return iv, true
}

func (h *AnalyticsHandlers) GetFunnel(c *gin.Context) {
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	steps, err := h.Analytics.Funnel(ctx, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get funnel")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve funnel statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"startDate": start.Format(time.RFC3339),
		"endDate":   end.Format(time.RFC3339),
		"steps":     steps,
	})
}

func (h *AnalyticsHandlers) GetEventCountsOverTime(c *gin.Context) {
	iv, ok := interval(c)
	if !ok {
		return
	}
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}
	eventType := c.Query("eventType")
	if eventType != "" && !models.EventType(eventType).Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown eventType %q", eventType)})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.Analytics.EventCountsOverTime(ctx, iv, start, end, eventType)
	if err != nil {
		log.Error().Err(err).Msg("failed to get event counts over time")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve event statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetUniqueUsersOverTime(c *gin.Context) {
	iv, ok := interval(c)
	if !ok {
		return
	}
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.Analytics.UniqueUsersOverTime(ctx, iv, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get unique users over time")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve unique user statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetRevenueOverTime(c *gin.Context) {
	iv, ok := interval(c)
	if !ok {
		return
	}
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.Analytics.RevenueOverTime(ctx, iv, start, end)
	if err != nil {
		log.Error().Err(err).Msg("failed to get revenue over time")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve revenue statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}

func (h *AnalyticsHandlers) GetTopProducts(c *gin.Context) {
	start, end, ok := h.timeRange(c)
	if !ok {
		return
	}
	limit, err := utils.ParseLimit(c.Query("limit"), 10)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), queryTimeout)
	defer cancel()

	results, err := h.Analytics.TopProducts(ctx, start, end, limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to get top products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top product statistics"})
		return
	}
	c.JSON(http.StatusOK, results)
}
