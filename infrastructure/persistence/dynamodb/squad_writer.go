package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	apperrors "github.com/OpenClique85/openclique-sub009/pkg/errors"
	"github.com/OpenClique85/openclique-sub009/pkg/utils"
)

// SquadWriter implements ports.SquadWriter using DynamoDB. A confirmed
// squad is written in one TransactWriteItems call: the squad record,
// one member item per user, and the pending-to-assigned transition on
// each signup. Either everything lands or nothing does.
type SquadWriter struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewSquadWriter creates a new SquadWriter
func NewSquadWriter(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.SquadWriter {
	return &SquadWriter{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// squadItem represents the DynamoDB item structure for a squad
type squadItem struct {
	PK                 string  `dynamodbav:"PK"`
	SK                 string  `dynamodbav:"SK"`
	GSI1PK             string  `dynamodbav:"GSI1PK"`
	GSI1SK             string  `dynamodbav:"GSI1SK"`
	EntityType         string  `dynamodbav:"EntityType"`
	SquadID            string  `dynamodbav:"SquadID"`
	EventID            string  `dynamodbav:"EventID"`
	Name               string  `dynamodbav:"Name"`
	MemberCount        int     `dynamodbav:"MemberCount"`
	CompatibilityScore float64 `dynamodbav:"CompatibilityScore"`
	ReferralBonds      int     `dynamodbav:"ReferralBonds"`
	CreatedAt          string  `dynamodbav:"CreatedAt"`
}

// squadMemberItem represents one member attachment
type squadMemberItem struct {
	PK                  string `dynamodbav:"PK"`
	SK                  string `dynamodbav:"SK"`
	EntityType          string `dynamodbav:"EntityType"`
	SquadID             string `dynamodbav:"SquadID"`
	UserID              string `dynamodbav:"UserID"`
	SignupID            string `dynamodbav:"SignupID"`
	DisplayName         string `dynamodbav:"DisplayName"`
	Email               string `dynamodbav:"Email"`
	Position            int    `dynamodbav:"Position"`
	FromReferralCluster bool   `dynamodbav:"FromReferralCluster"`
}

// SaveConfirmed writes the squad, its members, and the signup status
// transitions atomically.
func (w *SquadWriter) SaveConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error {
	createdAt := utils.NowRFC3339()

	squad := squadItem{
		PK:                 squadPK(proposal.ID),
		SK:                 "METADATA",
		GSI1PK:             eventPK(proposal.EventID),
		GSI1SK:             "SQUAD#" + createdAt + "#" + proposal.ID.String(),
		EntityType:         "SQUAD",
		SquadID:            proposal.ID.String(),
		EventID:            proposal.EventID.String(),
		Name:               proposal.SuggestedName,
		MemberCount:        proposal.Size(),
		CompatibilityScore: proposal.CompatibilityScore,
		ReferralBonds:      proposal.ReferralBonds,
		CreatedAt:          createdAt,
	}
	squadAV, err := attributevalue.MarshalMap(squad)
	if err != nil {
		return fmt.Errorf("failed to marshal squad: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName:           aws.String(w.tableName),
				Item:                squadAV,
				ConditionExpression: aws.String("attribute_not_exists(PK)"),
			},
		},
	}

	for i, member := range proposal.Members {
		memberAV, err := attributevalue.MarshalMap(squadMemberItem{
			PK:                  squadPK(proposal.ID),
			SK:                  fmt.Sprintf("MEMBER#%03d#%s", i, member.UserID.String()),
			EntityType:          "SQUAD_MEMBER",
			SquadID:             proposal.ID.String(),
			UserID:              member.UserID.String(),
			SignupID:            member.SignupID.String(),
			DisplayName:         member.DisplayName,
			Email:               member.Email,
			Position:            i,
			FromReferralCluster: member.FromReferralCluster,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal squad member: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(w.tableName),
				Item:      memberAV,
			},
		})

		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(w.tableName),
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: signupPK(member.SignupID)},
					"SK": &types.AttributeValueMemberS{Value: "METADATA"},
				},
				UpdateExpression: aws.String("SET #status = :assigned, SquadID = :squad"),
				ExpressionAttributeNames: map[string]string{
					"#status": "Status",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":assigned": &types.AttributeValueMemberS{Value: signupStatusAssigned},
					":squad":    &types.AttributeValueMemberS{Value: proposal.ID.String()},
					":pending":  &types.AttributeValueMemberS{Value: signupStatusPending},
				},
				ConditionExpression: aws.String("#status = :pending"),
			},
		})
	}

	if _, err := w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	}); err != nil {
		w.logger.Error("Squad confirmation transaction failed",
			zap.String("squad_id", proposal.ID.String()),
			zap.Error(err),
		)
		return apperrors.ErrTransactionFailed.WithCause(err)
	}

	w.logger.Info("Squad persisted",
		zap.String("squad_id", proposal.ID.String()),
		zap.String("event_id", proposal.EventID.String()),
		zap.Int("members", proposal.Size()),
	)
	return nil
}

// GetByID retrieves a confirmed squad with its members in position order
func (w *SquadWriter) GetByID(ctx context.Context, squadID valueobjects.SquadID) (*aggregates.SquadProposal, error) {
	out, err := w.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(w.tableName),
		KeyConditionExpression: aws.String("PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: squadPK(squadID)},
		},
		// MEMBER# items sort after METADATA, so one query returns the
		// squad record first and members in position order.
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query squad: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, apperrors.ErrSquadNotFound.WithDetail("squad_id", squadID.String())
	}

	var squad *aggregates.SquadProposal
	var members []aggregates.SquadMember

	for _, raw := range out.Items {
		var entityType struct {
			EntityType string `dynamodbav:"EntityType"`
		}
		if err := attributevalue.UnmarshalMap(raw, &entityType); err != nil {
			return nil, fmt.Errorf("failed to unmarshal squad item: %w", err)
		}

		switch entityType.EntityType {
		case "SQUAD":
			var item squadItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal squad record: %w", err)
			}
			eventID, err := valueobjects.NewEventID(item.EventID)
			if err != nil {
				return nil, err
			}
			id, err := valueobjects.NewSquadID(item.SquadID)
			if err != nil {
				return nil, err
			}
			squad = &aggregates.SquadProposal{
				ID:                 id,
				EventID:            eventID,
				SuggestedName:      item.Name,
				CompatibilityScore: item.CompatibilityScore,
				ReferralBonds:      item.ReferralBonds,
			}
		case "SQUAD_MEMBER":
			var item squadMemberItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal squad member: %w", err)
			}
			userID, err := valueobjects.NewUserID(item.UserID)
			if err != nil {
				return nil, err
			}
			signupID, err := valueobjects.NewSignupID(item.SignupID)
			if err != nil {
				return nil, err
			}
			members = append(members, aggregates.SquadMember{
				UserID:              userID,
				SignupID:            signupID,
				DisplayName:         item.DisplayName,
				Email:               item.Email,
				FromReferralCluster: item.FromReferralCluster,
			})
		}
	}

	if squad == nil {
		return nil, apperrors.ErrSquadNotFound.WithDetail("squad_id", squadID.String())
	}
	squad.Members = members
	return squad, nil
}

// ListByEvent retrieves the squad records confirmed for an event,
// ordered by confirmation time via the GSI1 sort key.
func (w *SquadWriter) ListByEvent(ctx context.Context, eventID valueobjects.EventID) ([]aggregates.SquadRecord, error) {
	keyCond := expression.Key("GSI1PK").Equal(expression.Value(eventPK(eventID))).
		And(expression.Key("GSI1SK").BeginsWith("SQUAD#"))

	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build squad list expression: %w", err)
	}

	var squads []aggregates.SquadRecord
	var startKey map[string]types.AttributeValue

	for {
		out, err := w.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(w.tableName),
			IndexName:                 aws.String(w.indexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query squads by event: %w", err)
		}

		for _, raw := range out.Items {
			var item squadItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				return nil, fmt.Errorf("failed to unmarshal squad record: %w", err)
			}
			id, err := valueobjects.NewSquadID(item.SquadID)
			if err != nil {
				return nil, err
			}
			squads = append(squads, aggregates.SquadRecord{
				ID:                 id,
				EventID:            eventID,
				Name:               item.Name,
				MemberCount:        item.MemberCount,
				CompatibilityScore: item.CompatibilityScore,
				ReferralBonds:      item.ReferralBonds,
				ConfirmedAt:        item.CreatedAt,
			})
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return squads, nil
}

func squadPK(squadID valueobjects.SquadID) string {
	return "SQUAD#" + squadID.String()
}
