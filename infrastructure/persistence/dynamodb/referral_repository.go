package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// ReferralRepository implements ports.ReferralRepository using DynamoDB.
// Referrals live under the event partition: PK EVENT#<id>,
// SK REFERRAL#<createdAt>#<referralID>, so a single query returns them
// in creation order.
type ReferralRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ReferralRepository {
	return &ReferralRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// referralItem represents the DynamoDB item structure for a referral
type referralItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	EntityType string `dynamodbav:"EntityType"`
	ReferralID string `dynamodbav:"ReferralID"`
	EventID    string `dynamodbav:"EventID"`
	ReferrerID string `dynamodbav:"ReferrerID"`
	ReferredID string `dynamodbav:"ReferredID"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
}

// GetByEvent retrieves referral edges for an event in creation order.
// Malformed records are skipped with a warning; the pool validator
// guards against anything that slips through.
func (r *ReferralRepository) GetByEvent(ctx context.Context, eventID valueobjects.EventID) ([]entities.ReferralEdge, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(eventPK(eventID))).
		And(expression.Key("SK").BeginsWith("REFERRAL#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build referral query: %w", err)
	}

	var items []referralItem
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query referrals: %w", err)
		}

		var page []referralItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal referrals: %w", err)
		}
		items = append(items, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].SK < items[j].SK
	})

	edges := make([]entities.ReferralEdge, 0, len(items))
	for _, item := range items {
		referrer, err := valueobjects.NewUserID(item.ReferrerID)
		if err != nil {
			r.logger.Warn("Skipping referral with bad referrer",
				zap.String("referral_id", item.ReferralID),
				zap.Error(err),
			)
			continue
		}
		referred, err := valueobjects.NewUserID(item.ReferredID)
		if err != nil {
			r.logger.Warn("Skipping referral with bad referred user",
				zap.String("referral_id", item.ReferralID),
				zap.Error(err),
			)
			continue
		}
		edge, err := entities.NewReferralEdge(referrer, referred)
		if err != nil {
			r.logger.Warn("Skipping malformed referral edge",
				zap.String("referral_id", item.ReferralID),
				zap.Error(err),
			)
			continue
		}
		edges = append(edges, edge)
	}

	r.logger.Debug("Loaded referral edges",
		zap.String("event_id", eventID.String()),
		zap.Int("count", len(edges)),
	)
	return edges, nil
}
