package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/OpenClique85/openclique-sub009/application/ports"
	"github.com/OpenClique85/openclique-sub009/domain/core/valueobjects"
	"github.com/OpenClique85/openclique-sub009/pkg/utils"
)

// dynamoBatchGetLimit is the BatchGetItem hard cap per request.
const dynamoBatchGetLimit = 100

// ProfileRepository implements ports.ProfileRepository using DynamoDB.
// Profiles live at PK USER#<id>, SK PROFILE.
type ProfileRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ProfileRepository {
	return &ProfileRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// profileItem represents the DynamoDB item structure for a profile
type profileItem struct {
	PK                 string   `dynamodbav:"PK"`
	SK                 string   `dynamodbav:"SK"`
	EntityType         string   `dynamodbav:"EntityType"`
	UserID             string   `dynamodbav:"UserID"`
	VibePreference     *int     `dynamodbav:"VibePreference,omitempty"`
	AgeRange           string   `dynamodbav:"AgeRange,omitempty"`
	Area               string   `dynamodbav:"Area,omitempty"`
	QuestTypeInterests []string `dynamodbav:"QuestTypeInterests,omitempty"`
	ContextTags        []string `dynamodbav:"ContextTags,omitempty"`
	UpdatedAt          string   `dynamodbav:"UpdatedAt"`
}

// GetByUserIDs retrieves stored profiles for the given users. Users
// without a profile are absent from the result, not an error.
func (r *ProfileRepository) GetByUserIDs(ctx context.Context, userIDs []valueobjects.UserID) (map[valueobjects.UserID]*valueobjects.PreferenceProfile, error) {
	profiles := make(map[valueobjects.UserID]*valueobjects.PreferenceProfile, len(userIDs))

	for start := 0; start < len(userIDs); start += dynamoBatchGetLimit {
		end := start + dynamoBatchGetLimit
		if end > len(userIDs) {
			end = len(userIDs)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, userID := range userIDs[start:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: "USER#" + userID.String()},
				"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
			})
		}

		requested := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}

		// BatchGetItem can return unprocessed keys under load; retry
		// until the batch drains.
		for len(requested[r.tableName].Keys) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: requested,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get profiles: %w", err)
			}

			var items []profileItem
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal profiles: %w", err)
			}

			for _, item := range items {
				userID, err := valueobjects.NewUserID(item.UserID)
				if err != nil {
					r.logger.Warn("Skipping profile with bad user ID", zap.Error(err))
					continue
				}
				profiles[userID] = r.toProfile(item)
			}

			if pending, ok := out.UnprocessedKeys[r.tableName]; ok && len(pending.Keys) > 0 {
				requested = out.UnprocessedKeys
				continue
			}
			break
		}
	}

	r.logger.Debug("Loaded preference profiles",
		zap.Int("requested", len(userIDs)),
		zap.Int("found", len(profiles)),
	)
	return profiles, nil
}

// SaveProfile writes a user's preference profile
func (r *ProfileRepository) SaveProfile(ctx context.Context, userID valueobjects.UserID, profile *valueobjects.PreferenceProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	item := profileItem{
		PK:                 "USER#" + userID.String(),
		SK:                 "PROFILE",
		EntityType:         "PROFILE",
		UserID:             userID.String(),
		VibePreference:     profile.VibePreference,
		QuestTypeInterests: profile.QuestTypeInterests,
		ContextTags:        profile.ContextTags,
		UpdatedAt:          utils.NowRFC3339(),
	}
	if profile.AgeRange != nil {
		item.AgeRange = profile.AgeRange.String()
	}
	if profile.Area != nil {
		item.Area = profile.Area.String()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (r *ProfileRepository) toProfile(item profileItem) *valueobjects.PreferenceProfile {
	profile := &valueobjects.PreferenceProfile{
		VibePreference:     item.VibePreference,
		QuestTypeInterests: item.QuestTypeInterests,
		ContextTags:        item.ContextTags,
	}
	if item.AgeRange != "" {
		if ar, err := valueobjects.NewAgeRange(item.AgeRange); err == nil {
			profile.AgeRange = &ar
		}
	}
	if item.Area != "" {
		if area, err := valueobjects.NewArea(item.Area); err == nil {
			profile.Area = &area
		}
	}
	return profile
}
