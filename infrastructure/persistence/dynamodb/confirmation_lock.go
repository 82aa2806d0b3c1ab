package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	apperrors "github.com/OpenClique85/openclique-sub009/pkg/errors"
)

// ConfirmationLock serializes squad confirmations per event using a
// DynamoDB conditional write. Two organizers confirming overlapping
// proposals at the same time would otherwise race on the same pending
// signups; the loser of the transaction would see a partial failure
// instead of a clean conflict.
type ConfirmationLock struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConfirmationLock creates a new ConfirmationLock
func NewConfirmationLock(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ConfirmationLock {
	return &ConfirmationLock{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type lockItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	Owner      string `dynamodbav:"Owner"`
	AcquiredAt string `dynamodbav:"AcquiredAt"`
	ExpiresAt  string `dynamodbav:"ExpiresAt"`
	TTL        int64  `dynamodbav:"TTL"`
}

// Acquire takes the confirmation lock for an event. The write succeeds
// only when no lock item exists or the existing one has expired; the
// TTL attribute lets DynamoDB sweep locks from crashed confirmers.
func (l *ConfirmationLock) Acquire(ctx context.Context, eventID valueobjects.EventID, owner string, hold time.Duration) (ports.LockHandle, error) {
	now := time.Now()
	expiresAt := now.Add(hold)
	pk := lockPK(eventID)

	_, err := l.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.tableName),
		Item: map[string]types.AttributeValue{
			"PK":         &types.AttributeValueMemberS{Value: pk},
			"SK":         &types.AttributeValueMemberS{Value: "LOCK"},
			"Owner":      &types.AttributeValueMemberS{Value: owner},
			"AcquiredAt": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
			"ExpiresAt":  &types.AttributeValueMemberS{Value: expiresAt.Format(time.RFC3339)},
			"TTL":        &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expiresAt.Unix())},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR ExpiresAt < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			l.logger.Debug("Confirmation lock held by another owner",
				zap.String("event_id", eventID.String()),
				zap.String("owner", owner),
			)
			return nil, apperrors.ErrConfirmationInProgress.WithDetail("event_id", eventID.String())
		}
		return nil, fmt.Errorf("failed to acquire confirmation lock: %w", err)
	}

	l.logger.Debug("Confirmation lock acquired",
		zap.String("event_id", eventID.String()),
		zap.String("owner", owner),
		zap.Duration("hold", hold),
	)

	return &confirmationLockHandle{
		lock:    l,
		pk:      pk,
		owner:   owner,
		eventID: eventID,
	}, nil
}

type confirmationLockHandle struct {
	lock    *ConfirmationLock
	pk      string
	owner   string
	eventID valueobjects.EventID
}

// Release deletes the lock item. Releasing a lock that expired and was
// re-acquired by someone else is a no-op, not an error.
func (h *confirmationLockHandle) Release(ctx context.Context) error {
	_, err := h.lock.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(h.lock.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: h.pk},
			"SK": &types.AttributeValueMemberS{Value: "LOCK"},
		},
		ConditionExpression: aws.String("#owner = :owner"),
		ExpressionAttributeNames: map[string]string{
			"#owner": "Owner",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: h.owner},
		},
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			h.lock.logger.Warn("Confirmation lock already taken over",
				zap.String("event_id", h.eventID.String()),
				zap.String("owner", h.owner),
			)
			return nil
		}
		return fmt.Errorf("failed to release confirmation lock: %w", err)
	}
	return nil
}

func lockPK(eventID valueobjects.EventID) string {
	return "LOCK#" + eventPK(eventID)
}
