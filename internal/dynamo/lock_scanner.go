// Package dynamo reads lock state from the DynamoDB lock table.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/unclebandit/battery-reminder/internal/config"
	"github.com/unclebandit/battery-reminder/internal/model"
)

// ThresholdLayout is the ISO-8601 form battery_check_timestamp is stored in.
const ThresholdLayout = "2006-01-02T15:04:05.000Z"

// ScanAPI is the subset of the DynamoDB client used here.
type ScanAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type LockScanner struct {
	Client    ScanAPI
	TableName string
	Logger    *zap.Logger
}

// NewClient builds a DynamoDB client from the default AWS credential chain.
func NewClient(ctx context.Context, conf config.DynamoDBConfig) (*dynamodb.Client, error) {
	awsConf, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(conf.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsConf, func(o *dynamodb.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
		}
	}), nil
}

// ScanPage issues one Scan call filtered on battery_check_timestamp < threshold.
func (s *LockScanner) ScanPage(ctx context.Context, req model.ScanRequest) (model.LockPage, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.TableName),
		FilterExpression: aws.String("battery_check_timestamp < :threshold"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":threshold": &types.AttributeValueMemberS{Value: req.Threshold.UTC().Format(ThresholdLayout)},
		},
	}
	if req.Cursor != nil {
		key, ok := req.Cursor.(map[string]types.AttributeValue)
		if !ok {
			return model.LockPage{}, fmt.Errorf("unexpected cursor type %T", req.Cursor)
		}
		input.ExclusiveStartKey = key
	}

	out, err := s.Client.Scan(ctx, input)
	if err != nil {
		return model.LockPage{}, fmt.Errorf("scan %s: %w", s.TableName, err)
	}

	var locks []model.Lock
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &locks); err != nil {
		return model.LockPage{}, fmt.Errorf("decode lock items: %w", err)
	}

	s.Logger.Debug("scanned lock page",
		zap.Int("items", len(locks)),
		zap.Int32("scanned", out.ScannedCount),
		zap.Bool("has_more", len(out.LastEvaluatedKey) > 0),
	)

	page := model.LockPage{Locks: locks}
	if len(out.LastEvaluatedKey) > 0 {
		page.Next = out.LastEvaluatedKey
	}
	return page, nil
}
