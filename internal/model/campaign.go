// internal/model/campaign.go
package model

import (
	"errors"
	"time"
)

const CampaignTypeBatteryReminder = "battery_reminder"

type CampaignStatus string

const (
	CampaignStatusRunning   CampaignStatus = "running"
	CampaignStatusCompleted CampaignStatus = "completed"
)

// ErrInvalidTransition is returned when a campaign is moved out of a terminal status.
var ErrInvalidTransition = errors.New("invalid campaign status transition")

// CanTransitionTo reports whether next is a legal successor of s.
// The only legal transition is running -> completed.
func (s CampaignStatus) CanTransitionTo(next CampaignStatus) bool {
	return s == CampaignStatusRunning && next == CampaignStatusCompleted
}

func (s CampaignStatus) IsTerminal() bool {
	return s == CampaignStatusCompleted
}

type Campaign struct {
	ID            string         `db:"campaign_id" json:"campaign_id"`
	Type          string         `db:"campaign_type" json:"campaign_type"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	ThresholdDays int            `db:"threshold_days" json:"threshold_days"`
	Status        CampaignStatus `db:"status" json:"status"`
	TotalSent     int            `db:"total_sent" json:"total_sent"`
	TotalFailed   int            `db:"total_failed" json:"total_failed"`
	CompletedAt   *time.Time     `db:"completed_at" json:"completed_at,omitempty"`
}

// Complete moves a running campaign to completed with its final counts.
func (c *Campaign) Complete(totalSent, totalFailed int, at time.Time) error {
	if !c.Status.CanTransitionTo(CampaignStatusCompleted) {
		return ErrInvalidTransition
	}
	c.Status = CampaignStatusCompleted
	c.TotalSent = totalSent
	c.TotalFailed = totalFailed
	c.CompletedAt = &at
	return nil
}

// CampaignEvent is published once a campaign reaches a terminal status.
type CampaignEvent struct {
	Type        string    `json:"type"`
	CampaignID  string    `json:"campaign_id"`
	Status      string    `json:"status"`
	TotalSent   int       `json:"total_sent"`
	TotalFailed int       `json:"total_failed"`
	CompletedAt time.Time `json:"completed_at"`
}
