package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// EngagementRepository appends click and battery-check facts.
type EngagementRepository struct {
	DB *sqlx.DB
}

func (r *EngagementRepository) InsertClick(ctx context.Context, click model.ClickEvent) error {
	query := `
        INSERT INTO notification_clicks (campaign_id, user_id, ip_address, user_agent, clicked_at)
        VALUES (:campaign_id, :user_id, :ip_address, :user_agent, :clicked_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, click)
	return err
}

func (r *EngagementRepository) InsertConversion(ctx context.Context, action model.ConversionAction) error {
	query := `
        INSERT INTO battery_check_actions (campaign_id, user_id, lock_id, days_after_notification, checked_at)
        VALUES (:campaign_id, :user_id, :lock_id, :days_after_notification, :checked_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, action)
	return err
}
