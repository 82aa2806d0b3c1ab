package validators

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenClique85/openclique-sub009/domain/config"
	"github.com/OpenClique85/openclique-sub009/domain/core/entities"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	apperrors "github.com/OpenClique85/openclique-sub009/pkg/errors"
)

func testValidator() *PoolValidator {
	cfg := config.DefaultDomainConfig()
	cfg.MaxCandidatesPerEvent = 10
	cfg.MaxReferralEdges = 5
	return NewPoolValidator(cfg)
}

func candidate(t *testing.T, user string) *entities.CandidateSignup {
	t.Helper()
	userID, err := valueobjects.NewUserID(user)
	require.NoError(t, err)
	signupID, err := valueobjects.NewSignupID("signup-" + user)
	require.NoError(t, err)
	c, err := entities.NewCandidateSignup(signupID, userID, "User "+user, user+"@example.com", nil)
	require.NoError(t, err)
	return c
}

func TestValidatePool_OK(t *testing.T) {
	v := testValidator()
	pool := []*entities.CandidateSignup{candidate(t, "u1"), candidate(t, "u2")}
	assert.NoError(t, v.ValidatePool(pool))
}

func TestValidatePool_TooLarge(t *testing.T) {
	v := testValidator()
	pool := make([]*entities.CandidateSignup, 11)
	for i := range pool {
		pool[i] = candidate(t, fmt.Sprintf("u%d", i))
	}

	err := v.ValidatePool(pool)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPoolTooLarge)
}

func TestValidatePool_DuplicateUser(t *testing.T) {
	v := testValidator()
	pool := []*entities.CandidateSignup{candidate(t, "u1"), candidate(t, "u1")}

	err := v.ValidatePool(pool)
	require.Error(t, err)

	var validationErrs *apperrors.ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	assert.True(t, validationErrs.HasErrors())
}

func TestValidatePool_BadProfile(t *testing.T) {
	v := testValidator()
	c := candidate(t, "u1")
	vibe := 150
	c.Profile = &valueobjects.PreferenceProfile{VibePreference: &vibe}

	err := v.ValidatePool([]*entities.CandidateSignup{c})
	assert.Error(t, err)
}

func TestValidateEdges(t *testing.T) {
	v := testValidator()

	a, _ := valueobjects.NewUserID("u1")
	b, _ := valueobjects.NewUserID("u2")
	good, err := entities.NewReferralEdge(a, b)
	require.NoError(t, err)
	assert.NoError(t, v.ValidateEdges([]entities.ReferralEdge{good}))

	// A self-loop can only appear through a hand-built edge; the
	// validator still rejects it.
	selfLoop := entities.ReferralEdge{UserA: a, UserB: a}
	err = v.ValidateEdges([]entities.ReferralEdge{selfLoop})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMalformedReferralEdge)

	missing := entities.ReferralEdge{UserA: a}
	assert.Error(t, v.ValidateEdges([]entities.ReferralEdge{missing}))
}

func TestValidateEdges_TooMany(t *testing.T) {
	v := testValidator()

	edges := make([]entities.ReferralEdge, 6)
	for i := range edges {
		a, _ := valueobjects.NewUserID(fmt.Sprintf("a%d", i))
		b, _ := valueobjects.NewUserID(fmt.Sprintf("b%d", i))
		edges[i], _ = entities.NewReferralEdge(a, b)
	}

	assert.Error(t, v.ValidateEdges(edges))
}

func TestValidateSquadSize(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	v := NewPoolValidator(cfg)

	assert.NoError(t, v.ValidateSquadSize(6, cfg))
	assert.NoError(t, v.ValidateSquadSize(cfg.MinSquadSize, cfg))
	assert.NoError(t, v.ValidateSquadSize(cfg.MaxSquadSize, cfg))

	err := v.ValidateSquadSize(1, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidSquadSize)

	assert.Error(t, v.ValidateSquadSize(13, cfg))
}
