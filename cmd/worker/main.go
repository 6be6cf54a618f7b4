// cmd/worker/main.go runs one battery reminder campaign and exits.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/db"
	"github.com/unclebandit/battery-reminder/internal/dynamo"
	"github.com/unclebandit/battery-reminder/internal/metrics"
	"github.com/unclebandit/battery-reminder/internal/model"
	pushgw "github.com/unclebandit/battery-reminder/internal/push"
	"github.com/unclebandit/battery-reminder/internal/queue"
	"github.com/unclebandit/battery-reminder/internal/repository"
	"github.com/unclebandit/battery-reminder/internal/service"
)

const pushJobName = "battery_reminder_worker"

func main() {
	os.Exit(run())
}

func run() int {
	conf, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return 1
	}
	logger, err := config.NewLogger(conf.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	if !conf.EnvFileLoaded {
		logger.Info("no .env file found, relying on OS environment variables")
	}

	ctx := context.Background()

	sqlDB, err := db.Open(ctx, conf.Postgres, logger)
	if err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return 1
	}
	defer sqlDB.Close()

	dynamoClient, err := dynamo.NewClient(ctx, conf.DynamoDB)
	if err != nil {
		logger.Error("failed to create dynamodb client", zap.Error(err))
		return 1
	}

	gateway, err := newGateway(ctx, conf.Firebase, logger)
	if err != nil {
		logger.Error("failed to create push gateway", zap.Error(err))
		return 1
	}

	events, closeEvents := newPublisher(conf.AMQP, logger)
	defer closeEvents()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	svc := &service.CampaignService{
		Scanner: &service.StaleLockScanner{
			Source: &dynamo.LockScanner{
				Client:    dynamoClient,
				TableName: conf.DynamoDB.TableName,
				Logger:    logger,
			},
			Logger: logger,
		},
		Resolver: &service.RecipientResolver{
			Source:    &repository.MappingRepository{DB: sqlDB},
			ChunkSize: conf.Campaign.ChunkSize,
			Logger:    logger,
		},
		Dispatcher: &service.NotificationDispatcher{
			Gateway: gateway,
			Delivery: &service.DeliveryLogger{
				Store:   &repository.DeliveryRepository{DB: sqlDB},
				Metrics: m,
				Logger:  logger,
			},
			Messages:  service.MessageBuilder{ClickTrackingBaseURL: conf.Campaign.ClickTrackingBaseURL},
			BatchSize: conf.Campaign.BatchSize,
			Wait:      service.ConstantDelay{Delay: conf.Campaign.BatchDelay},
			Metrics:   m,
			Logger:    logger,
		},
		CampaignStore: &repository.CampaignRepository{DB: sqlDB},
		Events:        events,
		Metrics:       m,
		Logger:        logger,
		ThresholdDays: conf.Campaign.ThresholdDays,
	}

	code := runCampaign(ctx, svc, logger)
	pushMetrics(conf.Metrics, reg, logger)
	return code
}

type campaignRunner interface {
	Run(ctx context.Context) (*service.RunResult, error)
}

// runCampaign maps a run to a process exit code.
func runCampaign(ctx context.Context, runner campaignRunner, logger *zap.Logger) int {
	res, err := runner.Run(ctx)
	if err != nil {
		logger.Error("battery reminder job failed", zap.Error(err))
		return 1
	}
	logger.Info("battery reminder job finished",
		zap.String("campaign_id", res.CampaignID),
		zap.Int("total_sent", res.TotalSent),
		zap.Int("total_failed", res.TotalFailed))
	return 0
}

func newGateway(ctx context.Context, conf config.FirebaseConfig, logger *zap.Logger) (service.PushGateway, error) {
	if conf.CredentialsFile == "" {
		logger.Warn("FIREBASE_PRIVATE_KEY_PATH not set, notifications will only be logged")
		return &pushgw.LogGateway{Logger: logger}, nil
	}
	client, err := pushgw.NewFCMClient(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &pushgw.FCMGateway{Client: client}, nil
}

// newPublisher prefers RabbitMQ and falls back to an in-process queue whose
// only subscriber logs the event.
func newPublisher(conf config.AMQPConfig, logger *zap.Logger) (queue.Publisher, func()) {
	if conf.URL != "" {
		q, err := queue.DialAMQP(conf.URL, conf.Queue, logger)
		if err == nil {
			return q, func() { _ = q.Close() }
		}
		logger.Warn("rabbitmq unavailable, campaign events stay in process", zap.Error(err))
	}

	q := queue.NewInMemoryQueue(logger)
	_ = q.Subscribe(service.TopicCampaignCompleted, func(payload any) error {
		event, ok := payload.(model.CampaignEvent)
		if !ok {
			return nil
		}
		logger.Info("campaign event",
			zap.String("campaign_id", event.CampaignID),
			zap.String("status", event.Status),
			zap.Int("total_sent", event.TotalSent),
			zap.Int("total_failed", event.TotalFailed))
		return nil
	})
	return q, func() { _ = q.Close() }
}

func pushMetrics(conf config.MetricsConfig, reg *prometheus.Registry, logger *zap.Logger) {
	if conf.PushgatewayURL == "" {
		return
	}
	if err := push.New(conf.PushgatewayURL, pushJobName).Gatherer(reg).Push(); err != nil {
		logger.Warn("failed to push metrics", zap.Error(err))
	}
}
