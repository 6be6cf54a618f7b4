package service

import (
	"context"
	"time"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// LockSource pages through the wide-column lock table.
type LockSource interface {
	ScanPage(ctx context.Context, req model.ScanRequest) (model.LockPage, error)
}

// RecipientSource resolves one bounded chunk of lock ids.
type RecipientSource interface {
	FindRecipients(ctx context.Context, lockIDs []int64) ([]model.Recipient, error)
}

// PushGateway sends one batch of messages in a single multicast call.
type PushGateway interface {
	SendMulticast(ctx context.Context, msgs []model.PushMessage) (*model.BatchResult, error)
}

type CampaignStore interface {
	Create(ctx context.Context, c *model.Campaign) error
	Finalize(ctx context.Context, c *model.Campaign) error
}

type DeliveryStore interface {
	Insert(ctx context.Context, rec model.DeliveryRecord) error
	Latest(ctx context.Context, campaignID string, userID, lockID int64) (*model.DeliveryRecord, error)
}

type EngagementStore interface {
	InsertClick(ctx context.Context, click model.ClickEvent) error
	InsertConversion(ctx context.Context, action model.ConversionAction) error
}

type AnalyticsStore interface {
	ListEffectiveness(ctx context.Context, campaignID string) ([]model.CampaignCounts, error)
	ListEffectivenessSince(ctx context.Context, since time.Time) ([]model.CampaignCounts, error)
	ListUserEngagement(ctx context.Context) ([]model.UserEngagement, error)
	ListResponseDays(ctx context.Context) ([]model.ResponseDays, error)
}

// EventPublisher is satisfied by the queue package.
type EventPublisher interface {
	Publish(topic string, payload any) error
}
