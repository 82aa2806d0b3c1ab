package valueobjects

import "fmt"

// PreferenceProfile holds a user's self-reported matching preferences.
// Every field is optional: users fill in as much or as little as they
// like, and the scorer skips factors that are missing on either side.
type PreferenceProfile struct {
	// VibePreference is a 0-100 slider from chill to high-energy.
	VibePreference *int `json:"vibe_preference,omitempty"`

	// AgeRange is the user's self-selected age bucket.
	AgeRange *AgeRange `json:"age_range,omitempty"`

	// Area is the zone the user prefers to meet in.
	Area *Area `json:"area,omitempty"`

	// QuestTypeInterests are activity category tags ("food", "outdoors").
	QuestTypeInterests []string `json:"quest_type_interests,omitempty"`

	// ContextTags are free-form situational tags ("new to the city").
	ContextTags []string `json:"context_tags,omitempty"`
}

// Validate checks that whatever fields are present hold legal values
func (p *PreferenceProfile) Validate() error {
	if p == nil {
		return nil
	}
	if p.VibePreference != nil && (*p.VibePreference < 0 || *p.VibePreference > 100) {
		return fmt.Errorf("vibe preference must be between 0 and 100, got %d", *p.VibePreference)
	}
	if p.AgeRange != nil && !p.AgeRange.IsValid() {
		return fmt.Errorf("invalid age range %q", *p.AgeRange)
	}
	if p.Area != nil && !p.Area.IsValid() {
		return fmt.Errorf("invalid area %q", *p.Area)
	}
	return nil
}

// IsEmpty reports whether no preference field is set at all
func (p *PreferenceProfile) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.VibePreference == nil &&
		p.AgeRange == nil &&
		p.Area == nil &&
		len(p.QuestTypeInterests) == 0 &&
		len(p.ContextTags) == 0
}
