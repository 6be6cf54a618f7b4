// Package push delivers notifications through Firebase Cloud Messaging.
package push

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// MessagingAPI is the part of messaging.Client the gateway needs.
type MessagingAPI interface {
	SendEach(ctx context.Context, messages []*messaging.Message) (*messaging.BatchResponse, error)
}

type FCMGateway struct {
	Client MessagingAPI
}

func NewFCMClient(ctx context.Context, conf config.FirebaseConfig) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: conf.ProjectID},
		option.WithCredentialsFile(conf.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return client, nil
}

// SendMulticast sends the whole batch in one call. An error means the batch
// as a whole was rejected and no per-message outcome is available.
func (g *FCMGateway) SendMulticast(ctx context.Context, msgs []model.PushMessage) (*model.BatchResult, error) {
	fcmMsgs := make([]*messaging.Message, 0, len(msgs))
	for _, m := range msgs {
		fcmMsgs = append(fcmMsgs, toFCMMessage(m))
	}

	resp, err := g.Client.SendEach(ctx, fcmMsgs)
	if err != nil {
		return nil, err
	}

	result := &model.BatchResult{
		SuccessCount: resp.SuccessCount,
		FailureCount: resp.FailureCount,
		Responses:    make([]model.SendOutcome, 0, len(resp.Responses)),
	}
	for _, r := range resp.Responses {
		result.Responses = append(result.Responses, model.SendOutcome{
			Success:   r.Success,
			MessageID: r.MessageID,
			Err:       r.Error,
		})
	}
	return result, nil
}

func toFCMMessage(m model.PushMessage) *messaging.Message {
	badge := m.APNS.Badge
	return &messaging.Message{
		Token: m.Token,
		Notification: &messaging.Notification{
			Title: m.Title,
			Body:  m.Body,
		},
		Data: m.Data,
		Android: &messaging.AndroidConfig{
			Priority: m.Android.Priority,
			Notification: &messaging.AndroidNotification{
				Icon:  m.Android.Icon,
				Color: m.Android.Color,
			},
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Badge: &badge,
					Sound: m.APNS.Sound,
				},
			},
		},
	}
}
