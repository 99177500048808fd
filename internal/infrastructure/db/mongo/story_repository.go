package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/zentale/story-system/internal/core/domain"
)

const collectionStories = "stories"

type StoryRepository struct {
	col *mongo.Collection
}

func NewStoryRepository(db *mongo.Database) *StoryRepository {
	return &StoryRepository{col: db.Collection(collectionStories)}
}

// Save upserts the story artifact under its ID. Audio generation rewrites the
// same document, so replace rather than insert.
func (r *StoryRepository) Save(ctx context.Context, story *domain.Story) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.ReplaceOne(ctx,
		bson.M{"_id": story.ID},
		story,
		options.Replace().SetUpsert(true),
	)
	return err
}

// GetByID retrieves a story artifact.
func (r *StoryRepository) GetByID(ctx context.Context, storyID string) (*domain.Story, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var s domain.Story
	err := r.col.FindOne(ctx, bson.M{"_id": storyID}).Decode(&s)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, err
	}
	return &s, nil
}

// EnsureIndexes creates necessary indexes on the stories collection.
func (r *StoryRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
