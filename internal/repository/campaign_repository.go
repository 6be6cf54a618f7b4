package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

type CampaignRepository struct {
	DB *sqlx.DB
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	query := `
        INSERT INTO notification_campaigns (campaign_id, campaign_type, created_at, threshold_days, status)
        VALUES (:campaign_id, :campaign_type, :created_at, :threshold_days, :status)
    `
	_, err := r.DB.NamedExecContext(ctx, query, c)
	return err
}

// Finalize writes the final counts. Only a running campaign can be finalized,
// so a second call for the same id affects no rows and fails.
func (r *CampaignRepository) Finalize(ctx context.Context, c *model.Campaign) error {
	query := `
        UPDATE notification_campaigns
        SET total_sent=$1, total_failed=$2, completed_at=$3, status=$4
        WHERE campaign_id=$5 AND status=$6
    `
	res, err := r.DB.ExecContext(ctx, query,
		c.TotalSent, c.TotalFailed, c.CompletedAt, c.Status, c.ID, model.CampaignStatusRunning)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("finalize campaign %s: %w", c.ID, model.ErrInvalidTransition)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	query := `
        SELECT campaign_id, campaign_type, created_at, threshold_days, status, total_sent, total_failed, completed_at
        FROM notification_campaigns WHERE campaign_id=$1
    `
	var c model.Campaign
	if err := r.DB.GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}
