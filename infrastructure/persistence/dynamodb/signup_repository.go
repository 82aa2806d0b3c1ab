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

const (
	signupStatusPending  = "pending"
	signupStatusAssigned = "assigned"
)

// SignupRepository implements ports.SignupRepository using DynamoDB.
// Signups live under their own partition (PK SIGNUP#<id>, SK METADATA)
// with a GSI keyed by event for the pool query.
type SignupRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewSignupRepository creates a new SignupRepository
func NewSignupRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.SignupRepository {
	return &SignupRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// signupItem represents the DynamoDB item structure for a signup
type signupItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	GSI1PK      string `dynamodbav:"GSI1PK"`
	GSI1SK      string `dynamodbav:"GSI1SK"`
	EntityType  string `dynamodbav:"EntityType"`
	SignupID    string `dynamodbav:"SignupID"`
	EventID     string `dynamodbav:"EventID"`
	UserID      string `dynamodbav:"UserID"`
	DisplayName string `dynamodbav:"DisplayName"`
	Email       string `dynamodbav:"Email"`
	Status      string `dynamodbav:"Status"`
	SquadID     string `dynamodbav:"SquadID,omitempty"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
}

// GetPendingByEvent retrieves pending signups for an event, ordered by
// signup creation time. That order is what makes engine runs
// reproducible, so ties on CreatedAt fall back to SignupID.
func (r *SignupRepository) GetPendingByEvent(ctx context.Context, eventID valueobjects.EventID) ([]*entities.CandidateSignup, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(eventPK(eventID))).
		And(expression.Key("GSI1SK").BeginsWith("SIGNUP#"))
	filter := expression.Name("Status").Equal(expression.Value(signupStatusPending))

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build signup query: %w", err)
	}

	var items []signupItem
	var lastKey map[string]types.AttributeValue
	for {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         lastKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query pending signups: %w", err)
		}

		var page []signupItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal signups: %w", err)
		}
		items = append(items, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].CreatedAt != items[j].CreatedAt {
			return items[i].CreatedAt < items[j].CreatedAt
		}
		return items[i].SignupID < items[j].SignupID
	})

	pool := make([]*entities.CandidateSignup, 0, len(items))
	for _, item := range items {
		candidate, err := r.toCandidate(item)
		if err != nil {
			r.logger.Warn("Skipping malformed signup item",
				zap.String("signup_id", item.SignupID),
				zap.Error(err),
			)
			continue
		}
		pool = append(pool, candidate)
	}

	r.logger.Debug("Loaded pending signups",
		zap.String("event_id", eventID.String()),
		zap.Int("count", len(pool)),
	)
	return pool, nil
}

// MarkAssigned flips signups from pending to assigned and records the
// squad they joined. The condition keeps a signup from landing in two
// squads when confirmations race.
func (r *SignupRepository) MarkAssigned(ctx context.Context, signupIDs []valueobjects.SignupID, squadID valueobjects.SquadID) error {
	for _, signupID := range signupIDs {
		_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: signupPK(signupID)},
				"SK": &types.AttributeValueMemberS{Value: "METADATA"},
			},
			UpdateExpression: aws.String("SET #status = :assigned, SquadID = :squad"),
			ExpressionAttributeNames: map[string]string{
				"#status": "Status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":assigned": &types.AttributeValueMemberS{Value: signupStatusAssigned},
				":squad":    &types.AttributeValueMemberS{Value: squadID.String()},
				":pending":  &types.AttributeValueMemberS{Value: signupStatusPending},
			},
			ConditionExpression: aws.String("#status = :pending"),
		})
		if err != nil {
			return fmt.Errorf("failed to mark signup %s assigned: %w", signupID, err)
		}
	}
	return nil
}

func (r *SignupRepository) toCandidate(item signupItem) (*entities.CandidateSignup, error) {
	signupID, err := valueobjects.NewSignupID(item.SignupID)
	if err != nil {
		return nil, err
	}
	userID, err := valueobjects.NewUserID(item.UserID)
	if err != nil {
		return nil, err
	}
	// Profiles are loaded separately from the profile store; the
	// signup record only carries identity and display fields.
	return entities.NewCandidateSignup(signupID, userID, item.DisplayName, item.Email, nil)
}

func eventPK(eventID valueobjects.EventID) string {
	return "EVENT#" + eventID.String()
}

func signupPK(signupID valueobjects.SignupID) string {
	return "SIGNUP#" + signupID.String()
}

