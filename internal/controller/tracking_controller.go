// internal/controller/tracking_controller.go
package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// Tracker is implemented by service.TrackingService.
type Tracker interface {
	TrackClick(ctx context.Context, click model.ClickEvent) error
	TrackBatteryCheck(ctx context.Context, campaignID string, userID, lockID int64) (int, error)
}

type TrackingController struct {
	Tracker        Tracker
	DeepLinkScheme string
	Logger         *zap.Logger
}

type errorResponse struct {
	Error string `json:"error"`
}

// TrackClick records the click and sends the device on to the app's
// battery check screen.
func (c *TrackingController) TrackClick(w http.ResponseWriter, r *http.Request) {
	campaignID := chi.URLParam(r, "campaignId")
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if campaignID == "" || err != nil {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, errorResponse{Error: "Invalid click tracking link"})
		return
	}

	click := model.ClickEvent{
		CampaignID: campaignID,
		UserID:     userID,
		IPAddress:  clientIP(r),
		UserAgent:  r.UserAgent(),
	}
	if err := c.Tracker.TrackClick(r.Context(), click); err != nil {
		c.Logger.Error("failed to track click",
			zap.String("campaign_id", campaignID),
			zap.Int64("user_id", userID),
			zap.Error(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, errorResponse{Error: "Failed to track click"})
		return
	}

	http.Redirect(w, r, c.DeepLinkScheme+"battery-check", http.StatusFound)
}

type batteryCheckRequest struct {
	CampaignID string      `json:"campaignId"`
	UserID     json.Number `json:"userId"`
	LockID     json.Number `json:"lockId"`
}

type batteryCheckResponse struct {
	Success               bool   `json:"success"`
	Message               string `json:"message"`
	DaysAfterNotification int    `json:"daysAfterNotification"`
}

func (c *TrackingController) TrackBatteryCheck(w http.ResponseWriter, r *http.Request) {
	var body batteryCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		c.Logger.Debug("unreadable battery check body", zap.Error(err))
		body = batteryCheckRequest{}
	}
	userID, _ := body.UserID.Int64()
	lockID, _ := body.LockID.Int64()

	days, err := c.Tracker.TrackBatteryCheck(r.Context(), body.CampaignID, userID, lockID)
	if err != nil {
		var (
			validation *appErrors.ValidationError
			notFound   *appErrors.ErrDeliveryNotFound
		)
		switch {
		case errors.As(err, &validation):
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, errorResponse{Error: "Missing required parameters"})
		case errors.As(err, &notFound):
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, errorResponse{Error: "Notification not found"})
		default:
			c.Logger.Error("failed to track battery check", zap.Error(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, errorResponse{Error: "Failed to track battery check"})
		}
		return
	}

	render.JSON(w, r, batteryCheckResponse{
		Success:               true,
		Message:               "Battery check action recorded",
		DaysAfterNotification: days,
	})
}

// clientIP expects chi's RealIP middleware to have rewritten RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
