//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/commands/bus"
	"github.com/OpenClique85/openclique-sub009/application/ports"
	querybus "github.com/OpenClique85/openclique-sub009/application/queries/bus"
	domainconfig "github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/infrastructure/config"
	"github.com/OpenClique85/openclique-sub009/pkg/auth"
	"github.com/OpenClique85/openclique-sub009/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	DomainConfig *domainconfig.DomainConfig
	Logger       *zap.Logger
	SignupRepo   ports.SignupRepository
	ProfileRepo  ports.ProfileRepository
	ReferralRepo ports.ReferralRepository
	SquadWriter  ports.SquadWriter
	EventBus     ports.EventBus
	Dispatcher   ports.NotificationDispatcher
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
	Cache        ports.Cache
	Metrics      *observability.Metrics
	RateLimiter  *auth.DistributedRateLimiter
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideDomainConfig,
	ProvideSignupRepository,
	ProvideProfileRepository,
	ProvideReferralRepository,
	ProvideSquadWriter,
	ProvideConfirmationLock,
	ProvideEventBus,
	ProvideNotificationDispatcher,
	ProvideMetrics,
	ProvideDistributedRateLimiter,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideInMemoryCache,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
