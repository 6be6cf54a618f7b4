// internal/handler/campaign_handler.go
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/cache"
	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

const weeklySummaryWeeks = 8

// Analytics is implemented by service.AnalyticsService.
type Analytics interface {
	CampaignStats(ctx context.Context, campaignID string) (*model.CampaignEffectiveness, error)
	WeeklyTrends(ctx context.Context, weeks int) ([]model.WeeklyTrend, error)
}

// CampaignHandler holds the dependencies for the read-only reporting endpoints
type CampaignHandler struct {
	Analytics Analytics
	Cache     cache.Cache
	CacheTTL  time.Duration
	Logger    *zap.Logger
	Now       func() time.Time
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetCampaignStats returns the effectiveness row of one campaign.
func (h *CampaignHandler) GetCampaignStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "campaignId")

	err := h.serveCached(w, r, "campaign-stats:"+id, func(ctx context.Context) (any, error) {
		return h.Analytics.CampaignStats(ctx, id)
	})
	if err == nil {
		return
	}

	var notFound *appErrors.ErrCampaignNotFound
	if errors.As(err, &notFound) {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "Campaign not found"})
		return
	}
	h.Logger.Error("failed to get campaign stats", zap.String("campaign_id", id), zap.Error(err))
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, errorResponse{Error: "Failed to get campaign stats"})
}

// WeeklySummary returns the trends of the last eight weeks, newest first.
func (h *CampaignHandler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	err := h.serveCached(w, r, "weekly-summary", func(ctx context.Context) (any, error) {
		trends, err := h.Analytics.WeeklyTrends(ctx, weeklySummaryWeeks)
		if trends == nil {
			trends = []model.WeeklyTrend{}
		}
		return trends, err
	})
	if err != nil {
		h.Logger.Error("failed to get weekly summary", zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Failed to get weekly summary"})
	}
}

func (h *CampaignHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{
		"status":    "OK",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

// serveCached writes the cached JSON for key, or loads, stores and writes it.
// Nothing is written when load fails.
func (h *CampaignHandler) serveCached(w http.ResponseWriter, r *http.Request, key string, load func(ctx context.Context) (any, error)) error {
	ctx := r.Context()
	if h.Cache != nil {
		if data, ok := h.Cache.Get(ctx, key); ok {
			writeJSON(w, data, "HIT")
			return nil
		}
	}

	v, err := load(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if h.Cache != nil && h.CacheTTL > 0 {
		if err := h.Cache.Set(ctx, key, data, h.CacheTTL); err != nil {
			h.Logger.Warn("failed to cache response", zap.String("key", key), zap.Error(err))
		}
	}
	writeJSON(w, data, "MISS")
	return nil
}

func writeJSON(w http.ResponseWriter, data []byte, cacheStatus string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Cache", cacheStatus)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *CampaignHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}
