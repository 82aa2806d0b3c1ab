package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAgeRange(t *testing.T) {
	r, err := NewAgeRange("25-34")
	require.NoError(t, err)
	assert.Equal(t, AgeRange25To34, r)

	_, err = NewAgeRange("20-30")
	assert.Error(t, err)
}

func TestAgeRangeOrdinal(t *testing.T) {
	pos, ok := AgeRange18To24.Ordinal()
	assert.True(t, ok)
	assert.Equal(t, 0, pos)

	pos, ok = AgeRange55Plus.Ordinal()
	assert.True(t, ok)
	assert.Equal(t, MaxAgeRangeOrdinal, pos)

	_, ok = AgeRange("bogus").Ordinal()
	assert.False(t, ok)
}

func TestNewArea(t *testing.T) {
	a, err := NewArea("downtown")
	require.NoError(t, err)
	assert.Equal(t, AreaDowntown, a)

	_, err = NewArea("atlantis")
	assert.Error(t, err)
}

func TestAreaIsNearbyDirectional(t *testing.T) {
	assert.True(t, AreaDowntown.IsNearby(AreaMidtown))
	assert.True(t, AreaMidtown.IsNearby(AreaDowntown))

	// Suburbs reach into the core; the core does not reach back.
	assert.True(t, AreaSuburbsNorth.IsNearby(AreaDowntown))
	assert.False(t, AreaDowntown.IsNearby(AreaSuburbsNorth))

	assert.False(t, AreaEastside.IsNearby(AreaWestside))
}

func TestPreferenceProfileValidate(t *testing.T) {
	vibe := 50
	age := AgeRange25To34
	area := AreaMidtown
	p := &PreferenceProfile{
		VibePreference: &vibe,
		AgeRange:       &age,
		Area:           &area,
	}
	assert.NoError(t, p.Validate())

	low := -1
	assert.Error(t, (&PreferenceProfile{VibePreference: &low}).Validate())

	high := 101
	assert.Error(t, (&PreferenceProfile{VibePreference: &high}).Validate())

	badAge := AgeRange("0-200")
	assert.Error(t, (&PreferenceProfile{AgeRange: &badAge}).Validate())

	var nilProfile *PreferenceProfile
	assert.NoError(t, nilProfile.Validate())
}

func TestPreferenceProfileIsEmpty(t *testing.T) {
	assert.True(t, (&PreferenceProfile{}).IsEmpty())

	vibe := 10
	assert.False(t, (&PreferenceProfile{VibePreference: &vibe}).IsEmpty())
	assert.False(t, (&PreferenceProfile{ContextTags: []string{"x"}}).IsEmpty())
}

func TestUserID(t *testing.T) {
	id, err := NewUserID("u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id.String())
	assert.False(t, id.IsZero())

	_, err = NewUserID("")
	assert.Error(t, err)

	other, _ := NewUserID("u1")
	assert.True(t, id.Equals(other))
}

func TestUserIDJSONRoundTrip(t *testing.T) {
	id, _ := NewUserID("u1")
	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"u1"`, string(data))

	var decoded UserID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestSquadID(t *testing.T) {
	generated := GenerateSquadID()
	assert.False(t, generated.IsZero())

	parsed, err := NewSquadID(generated.String())
	require.NoError(t, err)
	assert.True(t, generated.Equals(parsed))

	_, err = NewSquadID("not-a-uuid")
	assert.Error(t, err)

	_, err = NewSquadID("")
	assert.Error(t, err)
}
