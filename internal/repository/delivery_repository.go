package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// DeliveryRepository stores the append-only notification log.
type DeliveryRepository struct {
	DB *sqlx.DB
}

func (r *DeliveryRepository) Insert(ctx context.Context, rec model.DeliveryRecord) error {
	query := `
        INSERT INTO notification_logs (campaign_id, user_id, lock_id, fcm_id, sent_at, status)
        VALUES (:campaign_id, :user_id, :lock_id, :fcm_id, :sent_at, :status)
    `
	_, err := r.DB.NamedExecContext(ctx, query, rec)
	return err
}

// Latest returns the most recent delivery for the triple, or nil when there is none.
func (r *DeliveryRepository) Latest(ctx context.Context, campaignID string, userID, lockID int64) (*model.DeliveryRecord, error) {
	query := `
        SELECT id, campaign_id, user_id, lock_id, fcm_id, sent_at, status
        FROM notification_logs
        WHERE campaign_id=$1 AND user_id=$2 AND lock_id=$3
        ORDER BY sent_at DESC
        LIMIT 1
    `
	var rec model.DeliveryRecord
	if err := r.DB.GetContext(ctx, &rec, query, campaignID, userID, lockID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}
