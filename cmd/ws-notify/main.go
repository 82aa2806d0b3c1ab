// Package main implements the squad notification Lambda. It consumes
// squad.confirmed events from EventBridge and pushes a confirmation
// message to every member with an open WebSocket connection.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

var (
	dynamoClient     *dynamodb.Client
	apiGwClient      *apigatewaymanagementapi.Client
	logger           *zap.Logger
	connectionsTable string
	userIndexName    string
)

// squadConfirmedDetail mirrors the squad.confirmed event payload
// published by the confirmation flow.
type squadConfirmedDetail struct {
	SquadID   string   `json:"squad_id"`
	EventID   string   `json:"event_id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

// pushMessage is the message format delivered to clients
type pushMessage struct {
	Type      string `json:"type"`
	SquadID   string `json:"squad_id"`
	EventID   string `json:"event_id"`
	SquadName string `json:"squad_name"`
	Timestamp int64  `json:"timestamp"`
}

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	endpoint := os.Getenv("WEBSOCKET_ENDPOINT")
	if endpoint == "" {
		logger.Fatal("WEBSOCKET_ENDPOINT is required")
	}

	connectionsTable = os.Getenv("CONNECTIONS_TABLE_NAME")
	if connectionsTable == "" {
		connectionsTable = "openclique-connections"
	}
	userIndexName = os.Getenv("CONNECTIONS_USER_INDEX")
	if userIndexName == "" {
		userIndexName = "UserIndex"
	}

	dynamoClient = dynamodb.NewFromConfig(cfg)
	apiGwClient = apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String("https://" + endpoint)
	})
}

func handler(ctx context.Context, event events.CloudWatchEvent) error {
	if event.DetailType != "squad.confirmed" {
		logger.Debug("Ignoring event", zap.String("detail_type", event.DetailType))
		return nil
	}

	var detail squadConfirmedDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to unmarshal squad.confirmed detail: %w", err)
	}

	payload, err := json.Marshal(pushMessage{
		Type:      "squad.confirmed",
		SquadID:   detail.SquadID,
		EventID:   detail.EventID,
		SquadName: detail.Name,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	delivered := 0
	for _, userID := range detail.MemberIDs {
		connectionIDs, err := connectionsForUser(ctx, userID)
		if err != nil {
			logger.Warn("Failed to look up connections",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			continue
		}

		for _, connectionID := range connectionIDs {
			if err := post(ctx, connectionID, payload); err != nil {
				logger.Warn("Failed to push notification",
					zap.String("connection_id", connectionID),
					zap.Error(err),
				)
				continue
			}
			delivered++
		}
	}

	logger.Info("Squad confirmation fanned out",
		zap.String("squad_id", detail.SquadID),
		zap.Int("members", len(detail.MemberIDs)),
		zap.Int("deliveries", delivered),
	)
	return nil
}

func connectionsForUser(ctx context.Context, userID string) ([]string, error) {
	out, err := dynamoClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(connectionsTable),
		IndexName:              aws.String(userIndexName),
		KeyConditionExpression: aws.String("GSI1PK = :userpk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userpk": &types.AttributeValueMemberS{Value: "USER#" + userID},
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

func post(ctx context.Context, connectionID string, payload []byte) error {
	_, err := apiGwClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		// Stale connections are swept by the connect handler's TTL;
		// a failed post to one is not an error worth retrying.
		logger.Debug("Post to connection failed",
			zap.String("connection_id", connectionID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func main() {
	defer func() {
		_ = logger.Sync()
	}()
	lambda.Start(handler)
}
