package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/aggregates"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
)

// WebSocketDispatcher implements ports.NotificationDispatcher over the
// API Gateway Management API. Member connections are looked up in the
// connections table by user; members without an open connection are
// skipped. Push delivery is best effort, the squad record is already
// durable by the time this runs.
type WebSocketDispatcher struct {
	dynamoClient     *dynamodb.Client
	apiGwClient      *apigatewaymanagementapi.Client
	connectionsTable string
	userIndexName    string
	logger           *zap.Logger
}

// NewWebSocketDispatcher creates a dispatcher for the given endpoint
func NewWebSocketDispatcher(
	dynamoClient *dynamodb.Client,
	awsCfg aws.Config,
	endpoint string,
	connectionsTable string,
	userIndexName string,
	logger *zap.Logger,
) *WebSocketDispatcher {
	apiGwClient := apigatewaymanagementapi.NewFromConfig(awsCfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String("https://" + endpoint)
	})
	return &WebSocketDispatcher{
		dynamoClient:     dynamoClient,
		apiGwClient:      apiGwClient,
		connectionsTable: connectionsTable,
		userIndexName:    userIndexName,
		logger:           logger,
	}
}

// squadConfirmedPayload is the message pushed to each member
type squadConfirmedPayload struct {
	Type      string   `json:"type"`
	SquadID   string   `json:"squad_id"`
	EventID   string   `json:"event_id"`
	SquadName string   `json:"squad_name"`
	Members   []string `json:"members"`
	Timestamp int64    `json:"timestamp"`
}

// NotifySquadConfirmed pushes a confirmation to every member with an
// open WebSocket connection.
func (d *WebSocketDispatcher) NotifySquadConfirmed(ctx context.Context, proposal *aggregates.SquadProposal) error {
	memberNames := make([]string, len(proposal.Members))
	for i, m := range proposal.Members {
		memberNames[i] = m.DisplayName
	}

	payload, err := json.Marshal(squadConfirmedPayload{
		Type:      "squad.confirmed",
		SquadID:   proposal.ID.String(),
		EventID:   proposal.EventID.String(),
		SquadName: proposal.SuggestedName,
		Members:   memberNames,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	delivered := 0
	for _, member := range proposal.Members {
		connectionIDs, err := d.connectionsForUser(ctx, member.UserID)
		if err != nil {
			d.logger.Warn("Failed to look up connections",
				zap.String("user_id", member.UserID.String()),
				zap.Error(err),
			)
			continue
		}

		for _, connectionID := range connectionIDs {
			if err := d.post(ctx, connectionID, payload); err != nil {
				d.logger.Warn("Failed to push notification",
					zap.String("connection_id", connectionID),
					zap.Error(err),
				)
				continue
			}
			delivered++
		}
	}

	d.logger.Info("Squad confirmation pushed",
		zap.String("squad_id", proposal.ID.String()),
		zap.Int("deliveries", delivered),
		zap.Int("members", len(proposal.Members)),
	)
	return nil
}

// connectionsForUser queries the connections table user index
func (d *WebSocketDispatcher) connectionsForUser(ctx context.Context, userID valueobjects.UserID) ([]string, error) {
	out, err := d.dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(d.connectionsTable),
		IndexName:              aws.String(d.userIndexName),
		KeyConditionExpression: aws.String("GSI1PK = :userpk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userpk": &types.AttributeValueMemberS{Value: "USER#" + userID.String()},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query connections: %w", err)
	}

	var connectionIDs []string
	for _, item := range out.Items {
		if connID, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			connectionIDs = append(connectionIDs, connID.Value)
		}
	}
	return connectionIDs, nil
}

// post sends to one connection, pruning connections that are gone
func (d *WebSocketDispatcher) post(ctx context.Context, connectionID string, payload []byte) error {
	_, err := d.apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		var gone *apigwtypes.GoneException
		if errors.As(err, &gone) {
			d.removeStaleConnection(ctx, connectionID)
			return nil
		}
		return err
	}
	return nil
}

func (d *WebSocketDispatcher) removeStaleConnection(ctx context.Context, connectionID string) {
	_, err := d.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.connectionsTable),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "CONNECTION#" + connectionID},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		d.logger.Warn("Failed to remove stale connection",
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
	}
}

var _ ports.NotificationDispatcher = (*WebSocketDispatcher)(nil)
