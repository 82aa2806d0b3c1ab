package config

import "errors"

// ErrInvalidSquadSizing is returned when the configured squad size
// bounds are not ordered min <= default <= max.
var ErrInvalidSquadSizing = errors.New("squad size bounds are inconsistent")

// DomainConfig holds all configurable matching rules and constraints
type DomainConfig struct {
	// Squad sizing
	DefaultSquadSize int
	MinSquadSize     int
	MaxSquadSize     int

	// Pool limits
	MaxCandidatesPerEvent int
	MaxReferralEdges      int

	// Matching behavior
	PrioritizeReferralsByDefault bool

	// Feature flags
	EnableProposalEvents  bool
	EnableRunMetrics      bool
	EnableProposalCaching bool
}

// DefaultDomainConfig returns the default matching configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		DefaultSquadSize: 6,
		MinSquadSize:     2,
		MaxSquadSize:     12,

		MaxCandidatesPerEvent: 500,
		MaxReferralEdges:      2000,

		PrioritizeReferralsByDefault: true,

		EnableProposalEvents:  true,
		EnableRunMetrics:      true,
		EnableProposalCaching: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	// Real events top out in the low hundreds of signups
	config.MaxCandidatesPerEvent = 300
	config.MaxReferralEdges = 1000
	config.EnableProposalCaching = true

	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()

	config.MaxCandidatesPerEvent = 5000
	config.MaxReferralEdges = 20000
	config.EnableRunMetrics = false

	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.MinSquadSize < 1 || c.DefaultSquadSize < c.MinSquadSize || c.MaxSquadSize < c.DefaultSquadSize {
		return ErrInvalidSquadSizing
	}
	return nil
}
