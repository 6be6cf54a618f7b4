// internal/model/delivery.go
package model

import "time"

const DeliveryStatusSent = "sent"

type DeliveryRecord struct {
	ID         int64     `db:"id" json:"id"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	LockID     int64     `db:"lock_id" json:"lock_id"`
	FCMToken   string    `db:"fcm_id" json:"fcm_id"`
	SentAt     time.Time `db:"sent_at" json:"sent_at"`
	Status     string    `db:"status" json:"status"`
}

type ClickEvent struct {
	ID         int64     `db:"id" json:"id"`
	CampaignID string    `db:"campaign_id" json:"campaign_id"`
	UserID     int64     `db:"user_id" json:"user_id"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	ClickedAt  time.Time `db:"clicked_at" json:"clicked_at"`
}

type ConversionAction struct {
	ID                    int64     `db:"id" json:"id"`
	CampaignID            string    `db:"campaign_id" json:"campaign_id"`
	UserID                int64     `db:"user_id" json:"user_id"`
	LockID                int64     `db:"lock_id" json:"lock_id"`
	DaysAfterNotification int       `db:"days_after_notification" json:"days_after_notification"`
	CheckedAt             time.Time `db:"checked_at" json:"checked_at"`
}
