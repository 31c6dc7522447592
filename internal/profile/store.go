// Package profile is the MongoDB-backed user profile store.
package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/actuallystonmai/course-recommender/internal/domain"
	"github.com/actuallystonmai/course-recommender/internal/logging"
)

const collectionName = "users"

type Store struct {
	coll    *mongo.Collection
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker[*domain.UserProfile]
}

// Connect dials MongoDB and pings the primary.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func NewStore(db *mongo.Database, timeout time.Duration) *Store {
	log := logging.Component("profile")
	return &Store{
		coll:    db.Collection(collectionName),
		timeout: timeout,
		breaker: gobreaker.NewCircuitBreaker[*domain.UserProfile](gobreaker.Settings{
			Name:    "profile",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, domain.ErrUserNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).
					Msg("profile breaker state changed")
			},
		}),
	}
}

// EnsureIndexes creates the unique email index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}
	return nil
}

func (s *Store) FindProfile(ctx context.Context, email string) (*domain.UserProfile, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) FindProfileByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	return s.findOne(ctx, bson.D{{Key: "user_id", Value: userID}})
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (*domain.UserProfile, error) {
	p, err := s.breaker.Execute(func() (*domain.UserProfile, error) {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		var p domain.UserProfile
		if err := s.coll.FindOne(ctx, filter).Decode(&p); err != nil {
			return nil, mapError("find profile", err)
		}
		return &p, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: profile store: %v", domain.ErrDataUnavailable, err)
	}
	return p, err
}

// UpdateProfile applies the non-nil fields of upd and returns the stored
// profile after the update.
func (s *Store) UpdateProfile(ctx context.Context, email string, upd domain.ProfileUpdate) (*domain.UserProfile, error) {
	set := updateDocument(upd)
	if len(set) == 0 {
		return s.FindProfile(ctx, email)
	}
	return s.findOneAndUpdate(ctx, email, bson.D{{Key: "$set", Value: set}})
}

// SetFavorite adds or removes a course from the user's favorites.
func (s *Store) SetFavorite(ctx context.Context, email, courseID string, favorite bool) (*domain.UserProfile, error) {
	op := "$pull"
	if favorite {
		op = "$addToSet"
	}
	return s.findOneAndUpdate(ctx, email, bson.D{{Key: op, Value: bson.D{{Key: "favorites", Value: courseID}}}})
}

func (s *Store) findOneAndUpdate(ctx context.Context, email string, update bson.D) (*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p domain.UserProfile
	err := s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "email", Value: email}}, update, opts).Decode(&p)
	if err != nil {
		return nil, mapError("update profile", err)
	}
	return &p, nil
}

func updateDocument(upd domain.ProfileUpdate) bson.D {
	var set bson.D
	if upd.PreferredTopics != nil {
		set = append(set, bson.E{Key: "preferred_topics", Value: upd.PreferredTopics})
	}
	if upd.SkillLevel != nil {
		set = append(set, bson.E{Key: "skill_level", Value: *upd.SkillLevel})
	}
	if upd.CourseType != nil {
		set = append(set, bson.E{Key: "course_type", Value: *upd.CourseType})
	}
	if upd.PreferredDuration != nil {
		set = append(set, bson.E{Key: "preferred_duration", Value: *upd.PreferredDuration})
	}
	if upd.PopularityImportance != nil {
		set = append(set, bson.E{Key: "popularity_importance", Value: *upd.PopularityImportance})
	}
	if upd.Favorites != nil {
		set = append(set, bson.E{Key: "favorites", Value: upd.Favorites})
	}
	return set
}

// mapError turns a missing document into domain.ErrUserNotFound and every
// other failure, including timeouts, into domain.ErrDataUnavailable.
func mapError(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrDataUnavailable, op, err)
}
