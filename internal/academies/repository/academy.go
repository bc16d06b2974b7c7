package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	academyerrors "courtside/internal/academies/errors"
	"courtside/pkg/config"
	"courtside/pkg/model"
)

const (
	CollectionName = "Academies"
)

type AcademyRepository interface {
	Create(ctx context.Context, academy *model.Academy) error
	FindByID(ctx context.Context, id string) (*model.Academy, error)
	FindByEmail(ctx context.Context, email string) (*model.Academy, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Academy, error)
	Count(ctx context.Context) (int64, error)
	ReplaceSports(ctx context.Context, id string, sports []model.Sport) error
	Search(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, error)
	CountBySearch(ctx context.Context, city, sport string) (int64, error)
}

type mongoAcademyRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

func NewMongoAcademyRepository(cfg *config.Config) AcademyRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAcademyRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoAcademyRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAcademyRepository) Create(ctx context.Context, academy *model.Academy) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	academy.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, academy)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return academyerrors.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create academy: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		academy.ID = oid.Hex()
	}
	return nil
}

func (r *mongoAcademyRepository) FindByID(ctx context.Context, id string) (*model.Academy, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", academyerrors.ErrInvalidID, id)
	}
	filter := bson.M{"_id": objectID}

	var academy model.Academy
	err = r.collection.FindOne(ctx, filter).Decode(&academy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, academyerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find academy: %w", err)
	}
	return &academy, nil
}

func (r *mongoAcademyRepository) FindByEmail(ctx context.Context, email string) (*model.Academy, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var academy model.Academy
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&academy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, academyerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find academy by email: %w", err)
	}
	return &academy, nil
}

func (r *mongoAcademyRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Academy, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find academies: %w", err)
	}
	defer cursor.Close(ctx)

	var academies []*model.Academy
	if err = cursor.All(ctx, &academies); err != nil {
		return nil, fmt.Errorf("failed to decode academies: %w", err)
	}

	return academies, nil
}

func (r *mongoAcademyRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count academies: %w", err)
	}

	return count, nil
}

// ReplaceSports swaps the academy's whole sports array in one update, so a
// configure call is a full replacement rather than a merge.
func (r *mongoAcademyRepository) ReplaceSports(ctx context.Context, id string, sports []model.Sport) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", academyerrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{"$set": bson.M{"sports": sports}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to replace sports: %w", err)
	}

	if result.MatchedCount == 0 {
		return academyerrors.ErrNotFound
	}

	return nil
}

func (r *mongoAcademyRepository) Search(ctx context.Context, city, sport string, limit int, offset int64) ([]*model.Academy, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := buildSearchFilter(city, sport)

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search academies: %w", err)
	}
	defer cursor.Close(ctx)

	var academies []*model.Academy
	if err = cursor.All(ctx, &academies); err != nil {
		return nil, fmt.Errorf("failed to decode academies: %w", err)
	}

	return academies, nil
}

func (r *mongoAcademyRepository) CountBySearch(ctx context.Context, city, sport string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, buildSearchFilter(city, sport))
	if err != nil {
		return 0, fmt.Errorf("failed to count academies by search: %w", err)
	}
	return count, nil
}

func buildSearchFilter(city, sport string) bson.M {
	filter := bson.M{}
	if city != "" {
		filter["city"] = city
	}
	if sport != "" {
		filter["sports.sport_name"] = sport
	}
	return filter
}
