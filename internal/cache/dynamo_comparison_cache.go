package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/garesbzh/carte/backend-go/internal/config"
	"github.com/garesbzh/carte/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

const comparisonTableName = "route-comparisons-cache"

// DynamoDBClient is the subset of the DynamoDB API the caches use
type DynamoDBClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoComparisonCache stores computed route comparisons in DynamoDB
type DynamoComparisonCache struct {
	client  DynamoDBClient
	config  *config.CacheConfig
	clock   clock
	backoff func(retry int) time.Duration
}

func NewDynamoComparisonCache(client DynamoDBClient, cacheConfig *config.CacheConfig) *DynamoComparisonCache {
	if cacheConfig == nil {
		cacheConfig = config.GetCacheConfig()
	}
	return &DynamoComparisonCache{
		client: client,
		config: cacheConfig,
		clock:  systemClock{},
		backoff: func(retry int) time.Duration {
			return time.Duration(1<<retry) * 100 * time.Millisecond
		},
	}
}

// GetComparison returns the cached comparison, or nil when missing or expired
func (c *DynamoComparisonCache) GetComparison(ctx context.Context, region, route string) (*models.RouteComparison, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(comparisonTableName),
		Key: map[string]types.AttributeValue{
			"region": &types.AttributeValueMemberS{Value: region},
			"route":  &types.AttributeValueMemberS{Value: route},
		},
	}

	result, err := c.client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("getting comparison from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var record models.RouteComparison
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling comparison record: %w", err)
	}

	if c.clock.Now().Unix() >= record.TTL {
		log.Debug().
			Str("region", region).
			Str("route", route).
			Msg("Cache expired")
		return nil, nil
	}

	return &record, nil
}

// SaveComparison stores one comparison
func (c *DynamoComparisonCache) SaveComparison(ctx context.Context, record models.RouteComparison) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid comparison record: %w", err)
	}

	item, err := c.marshal(record)
	if err != nil {
		return err
	}

	if _, err := c.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(comparisonTableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting comparison in DynamoDB: %w", err)
	}

	log.Debug().
		Str("region", record.Region).
		Str("route", record.Route).
		Msg("Saved comparison to cache")
	return nil
}

// SaveComparisonsBatch stores many comparisons using batch writes
func (c *DynamoComparisonCache) SaveComparisonsBatch(ctx context.Context, records []models.RouteComparison) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("invalid comparison record: %w", err)
		}
	}

	batchSize := c.config.BatchSize
	if batchSize <= 0 {
		batchSize = 25
	}
	attempts := c.config.MaxBatchRetries
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}

		var writeRequests []types.WriteRequest
		for _, record := range records[i:end] {
			item, err := c.marshal(record)
			if err != nil {
				return err
			}
			writeRequests = append(writeRequests, types.WriteRequest{
				PutRequest: &types.PutRequest{Item: item},
			})
		}

		if err := c.writeBatch(ctx, writeRequests, attempts); err != nil {
			return err
		}
	}

	return nil
}

// writeBatch sends one batch, resending unprocessed items until none are
// left or the attempts run out
func (c *DynamoComparisonCache) writeBatch(ctx context.Context, pending []types.WriteRequest, attempts int) error {
	var lastErr error
	for retry := 0; retry < attempts; retry++ {
		if retry > 0 {
			if err := c.wait(ctx, retry-1); err != nil {
				return fmt.Errorf("batch writing comparisons: %w", err)
			}
		}

		out, err := c.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{
				comparisonTableName: pending,
			},
		})
		if err != nil {
			lastErr = err
			continue
		}

		var unprocessed []types.WriteRequest
		if out != nil {
			unprocessed = out.UnprocessedItems[comparisonTableName]
		}
		if len(unprocessed) == 0 {
			return nil
		}
		log.Debug().Int("unprocessed", len(unprocessed)).Msg("Retrying unprocessed comparison writes")
		pending = unprocessed
		lastErr = fmt.Errorf("%d items unprocessed", len(unprocessed))
	}
	return fmt.Errorf("batch writing comparisons after %d attempts: %w", attempts, lastErr)
}

func (c *DynamoComparisonCache) wait(ctx context.Context, retry int) error {
	d := c.backoff(retry)
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *DynamoComparisonCache) marshal(record models.RouteComparison) (map[string]types.AttributeValue, error) {
	now := c.clock.Now().Unix()
	record.LastUpdated = now
	record.TTL = now + int64(c.config.GetDynamoTTL().Seconds())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("marshaling comparison record: %w", err)
	}
	return item, nil
}
