package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// MappingRepository reads the lock -> user -> push token mapping.
type MappingRepository struct {
	DB *sqlx.DB
}

// FindRecipients returns every mapping row for the given locks that has a token.
// Callers keep len(lockIDs) under the driver's parameter limit.
func (r *MappingRepository) FindRecipients(ctx context.Context, lockIDs []int64) ([]model.Recipient, error) {
	if len(lockIDs) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(`
        SELECT lock_id, user_id, fcm_id
        FROM lock_user_mapping
        WHERE lock_id IN (?) AND fcm_id IS NOT NULL
    `, lockIDs)
	if err != nil {
		return nil, err
	}

	var recipients []model.Recipient
	if err := r.DB.SelectContext(ctx, &recipients, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	return recipients, nil
}
