// internal/service/template_service.go
package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/unclebandit/battery-reminder/internal/model"
)

const (
	notificationTitle        = "Battery Check Reminder"
	notificationBodyTemplate = "Your lock hasn't been checked in {threshold_days} days. Please check your battery level."
)

func RenderTemplate(template string, data map[string]string) string {
	result := template
	for k, v := range data {
		result = strings.ReplaceAll(result, "{"+k+"}", v)
	}
	return result
}

// ClickTrackingURL builds the link that attributes a click to (campaign, user).
func ClickTrackingURL(baseURL, campaignID string, userID int64) string {
	return strings.TrimRight(baseURL, "/") + "/track-click/" + url.PathEscape(campaignID) + "/" + strconv.FormatInt(userID, 10)
}

type MessageBuilder struct {
	ClickTrackingBaseURL string
}

func (b MessageBuilder) Build(campaignID string, thresholdDays int, r model.Recipient) model.PushMessage {
	return model.PushMessage{
		Token: r.FCMToken,
		Title: notificationTitle,
		Body: RenderTemplate(notificationBodyTemplate, map[string]string{
			"threshold_days": strconv.Itoa(thresholdDays),
		}),
		Data: map[string]string{
			"type":               model.CampaignTypeBatteryReminder,
			"lock_id":            strconv.FormatInt(r.LockID, 10),
			"campaign_id":        campaignID,
			"click_tracking_url": ClickTrackingURL(b.ClickTrackingBaseURL, campaignID, r.UserID),
		},
		Android: model.AndroidHints{
			Priority: "high",
			Icon:     "battery_alert",
			Color:    "#FF6B35",
		},
		APNS: model.APNSHints{
			Badge: 1,
			Sound: "default",
		},
	}
}
