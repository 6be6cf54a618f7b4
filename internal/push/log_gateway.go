package push

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/model"
)

// LogGateway accepts every message without sending anything. It stands in
// for FCM when no Firebase credentials are configured.
type LogGateway struct {
	Logger *zap.Logger
}

func (g *LogGateway) SendMulticast(ctx context.Context, msgs []model.PushMessage) (*model.BatchResult, error) {
	result := &model.BatchResult{
		SuccessCount: len(msgs),
		Responses:    make([]model.SendOutcome, len(msgs)),
	}
	for i, m := range msgs {
		result.Responses[i] = model.SendOutcome{Success: true}
		g.Logger.Info("mock push",
			zap.String("lock_id", m.Data["lock_id"]),
			zap.String("click_tracking_url", m.Data["click_tracking_url"]),
		)
	}
	return result, nil
}
