package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// AnalyticsRepository reads the raw counts behind the effectiveness reports.
// Rates and population statistics are computed by the caller.
type AnalyticsRepository struct {
	DB *sqlx.DB
}

const effectivenessColumns = `
    campaign_id, campaign_type, created_at, threshold_days, status,
    total_sent, total_failed, total_clicks, unique_clickers,
    total_battery_checks, unique_battery_checkers
`

// ListEffectiveness returns view rows newest first, optionally for one campaign.
func (r *AnalyticsRepository) ListEffectiveness(ctx context.Context, campaignID string) ([]model.CampaignCounts, error) {
	query := `SELECT ` + effectivenessColumns + ` FROM campaign_effectiveness`
	args := []interface{}{}
	if campaignID != "" {
		query += ` WHERE campaign_id=$1`
		args = append(args, campaignID)
	}
	query += ` ORDER BY created_at DESC`

	rows := []model.CampaignCounts{}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepository) ListEffectivenessSince(ctx context.Context, since time.Time) ([]model.CampaignCounts, error) {
	query := `SELECT ` + effectivenessColumns + `
        FROM campaign_effectiveness
        WHERE created_at >= $1
        ORDER BY created_at DESC`

	rows := []model.CampaignCounts{}
	if err := r.DB.SelectContext(ctx, &rows, query, since); err != nil {
		return nil, err
	}
	return rows, nil
}

// ListUserEngagement returns one row per user who was ever notified.
func (r *AnalyticsRepository) ListUserEngagement(ctx context.Context) ([]model.UserEngagement, error) {
	query := `
        SELECT
            nl.user_id,
            COUNT(DISTINCT nl.campaign_id)  AS campaigns_received,
            COUNT(DISTINCT nc.campaign_id)  AS campaigns_clicked,
            COUNT(DISTINCT bca.campaign_id) AS campaigns_acted_upon
        FROM notification_logs nl
        LEFT JOIN notification_clicks nc ON nl.user_id = nc.user_id AND nl.campaign_id = nc.campaign_id
        LEFT JOIN battery_check_actions bca ON nl.user_id = bca.user_id AND nl.campaign_id = bca.campaign_id
        GROUP BY nl.user_id
    `
	rows := []model.UserEngagement{}
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AnalyticsRepository) ListResponseDays(ctx context.Context) ([]model.ResponseDays, error) {
	query := `SELECT campaign_id, days_after_notification FROM battery_check_actions`
	rows := []model.ResponseDays{}
	if err := r.DB.SelectContext(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}
