package di

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/commands"
	"github.com/OpenClique85/openclique-sub009/application/commands/bus"
	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/application/queries"
	querybus "github.com/OpenClique85/openclique-sub009/application/queries/bus"
	queries_handlers "github.com/OpenClique85/openclique-sub009/application/queries/handlers"
	domainconfig "github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/infrastructure/config"
	"github.com/OpenClique85/openclique-sub009/infrastructure/messaging/eventbridge"
	"github.com/OpenClique85/openclique-sub009/infrastructure/notification"
	"github.com/OpenClique85/openclique-sub009/infrastructure/persistence/dynamodb"
	"github.com/OpenClique85/openclique-sub009/pkg/auth"
	"github.com/OpenClique85/openclique-sub009/pkg/observability"
)

// connectionsUserIndex is the GSI on the connections table keyed by user.
const connectionsUserIndex = "UserIndex"

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if cfg.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, err
	}

	return logger, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideDomainConfig loads the formation engine limits for the environment
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	domainCfg := domainconfig.LoadDomainConfig(cfg.Environment)
	domainCfg.DefaultSquadSize = cfg.DefaultSquadSize
	return domainCfg
}

// ProvideSignupRepository creates the signup repository
func ProvideSignupRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SignupRepository {
	return dynamodb.NewSignupRepository(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideProfileRepository creates the preference profile repository
func ProvideProfileRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ProfileRepository {
	return dynamodb.NewProfileRepository(
		client,
		cfg.DynamoDBTable,
		logger,
	)
}

// ProvideReferralRepository creates the referral repository
func ProvideReferralRepository(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ReferralRepository {
	return dynamodb.NewReferralRepository(
		client,
		cfg.DynamoDBTable,
		logger,
	)
}

// ProvideSquadWriter creates the squad writer
func ProvideSquadWriter(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.SquadWriter {
	return dynamodb.NewSquadWriter(
		client,
		cfg.DynamoDBTable,
		cfg.IndexName,
		logger,
	)
}

// ProvideConfirmationLock creates the per-event confirmation lock
func ProvideConfirmationLock(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.ConfirmationLock {
	return dynamodb.NewConfirmationLock(
		client,
		cfg.DynamoDBTable,
		logger,
	)
}

// ProvideEventBus creates an event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewEventBridgePublisher(
		client,
		cfg.EventBusName,
		logger,
	)
}

// ProvideNotificationDispatcher creates the WebSocket push dispatcher
func ProvideNotificationDispatcher(
	client *awsdynamodb.Client,
	awsCfg aws.Config,
	cfg *config.Config,
	logger *zap.Logger,
) ports.NotificationDispatcher {
	return notification.NewWebSocketDispatcher(
		client,
		awsCfg,
		cfg.WebSocketEndpoint,
		cfg.ConnectionsTable,
		connectionsUserIndex,
		logger,
	)
}

// ProvideMetrics creates metrics instance
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config, logger *zap.Logger) *observability.Metrics {
	namespace := fmt.Sprintf("OpenClique/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, logger)
}

// ProvideDistributedRateLimiter creates a distributed rate limiter
func ProvideDistributedRateLimiter(client *awsdynamodb.Client, cfg *config.Config) *auth.DistributedRateLimiter {
	return auth.NewDistributedRateLimiter(
		client,
		cfg.DynamoDBTable,
		100,
		1*time.Minute,
		"API",
	)
}

// CommandHandlerAdapter adapts specific command handlers to the generic interface
type CommandHandlerAdapter struct {
	handler func(context.Context, bus.Command) error
}

func (a *CommandHandlerAdapter) Handle(ctx context.Context, cmd bus.Command) error {
	return a.handler(ctx, cmd)
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	squadWriter ports.SquadWriter,
	confirmationLock ports.ConfirmationLock,
	eventBus ports.EventBus,
	dispatcher ports.NotificationDispatcher,
	logger *zap.Logger,
) *bus.CommandBus {
	commandBus := bus.NewCommandBus()

	confirmHandler := commands.NewConfirmSquadHandler(squadWriter, confirmationLock, eventBus, dispatcher, logger)
	commandBus.Register(commands.ConfirmSquadCommand{}, &CommandHandlerAdapter{
		handler: func(ctx context.Context, cmd bus.Command) error {
			confirmCmd, ok := cmd.(commands.ConfirmSquadCommand)
			if !ok {
				return fmt.Errorf("invalid command type")
			}
			_, err := confirmHandler.Handle(ctx, confirmCmd)
			return err
		},
	})

	return commandBus
}

// QueryHandlerAdapter adapts specific query handlers to the generic interface
type QueryHandlerAdapter struct {
	handler func(context.Context, querybus.Query) (interface{}, error)
}

func (a *QueryHandlerAdapter) Handle(ctx context.Context, query querybus.Query) (interface{}, error) {
	return a.handler(ctx, query)
}

// squadCacheTTL is how long a confirmed-squad read stays cached, in
// seconds. Confirmed squads are immutable, so staleness is not a concern.
const squadCacheTTL = 300

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(
	signupRepo ports.SignupRepository,
	profileRepo ports.ProfileRepository,
	referralRepo ports.ReferralRepository,
	squadWriter ports.SquadWriter,
	eventBus ports.EventBus,
	cache ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *querybus.QueryBus {
	queryBus := querybus.NewQueryBus()

	proposeHandler := queries_handlers.NewProposeSquadsHandler(
		signupRepo,
		profileRepo,
		referralRepo,
		eventBus,
		domainCfg,
		metrics,
		logger,
	)
	queryBus.Register(queries.ProposeSquadsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			proposeQuery, ok := query.(queries.ProposeSquadsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return proposeHandler.Handle(ctx, proposeQuery)
		},
	})

	getSquadHandler := queries_handlers.NewGetSquadHandler(squadWriter, logger)
	var getSquadQueryHandler querybus.QueryHandler = &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			getQuery, ok := query.(queries.GetSquadQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return getSquadHandler.Handle(ctx, getQuery)
		},
	}
	if cache != nil {
		getSquadQueryHandler = querybus.NewCachingMiddleware(cache, squadCacheTTL).Wrap(getSquadQueryHandler)
	}
	queryBus.Register(queries.GetSquadQuery{}, getSquadQueryHandler)

	listSquadsHandler := queries_handlers.NewListSquadsHandler(squadWriter, logger)
	queryBus.Register(queries.ListSquadsQuery{}, &QueryHandlerAdapter{
		handler: func(ctx context.Context, query querybus.Query) (interface{}, error) {
			listQuery, ok := query.(queries.ListSquadsQuery)
			if !ok {
				return nil, fmt.Errorf("invalid query type")
			}
			return listSquadsHandler.Handle(ctx, listQuery)
		},
	})

	return queryBus
}

// ProvideInMemoryCache creates a simple in-memory cache
// In production, this would be Redis or similar
func ProvideInMemoryCache() ports.Cache {
	return NewInMemoryCache()
}
