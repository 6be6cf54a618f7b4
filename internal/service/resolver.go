package service

import (
	"context"

	"go.uber.org/zap"

	appErrors "github.com/unclebandit/battery-reminder/internal/errors"
	"github.com/unclebandit/battery-reminder/internal/model"
)

const DefaultChunkSize = 1000

// RecipientResolver maps lock ids to (lock, user, token) tuples, querying the
// relational store in bounded chunks.
type RecipientResolver struct {
	Source    RecipientSource
	ChunkSize int
	Logger    *zap.Logger
}

func (r *RecipientResolver) Resolve(ctx context.Context, lockIDs []int64) ([]model.Recipient, error) {
	size := r.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}

	var recipients []model.Recipient
	for i, ids := range chunk(lockIDs, size) {
		rows, err := r.Source.FindRecipients(ctx, ids)
		if err != nil {
			return nil, appErrors.NewBackend("resolve recipients", err)
		}
		for _, row := range rows {
			if row.FCMToken == "" {
				continue
			}
			recipients = append(recipients, row)
		}
		r.Logger.Debug("resolved chunk",
			zap.Int("chunk", i+1),
			zap.Int("lock_ids", len(ids)),
			zap.Int("total", len(recipients)))
	}

	r.Logger.Info("recipients resolved",
		zap.Int("lock_ids", len(lockIDs)),
		zap.Int("recipients", len(recipients)))
	return recipients, nil
}
