package repository

import (
	"context"
	"errors"
	"fmt"
	serieserrors "reservo/internal/series/errors"
	"reservo/pkg/config"
	mongotx "reservo/pkg/db/mongo"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const SeriesCollectionName = "Recurring_series"

type SeriesRepository interface {
	Create(ctx context.Context, series *model.RecurringSeries) error
	FindByID(ctx context.Context, id string) (*model.RecurringSeries, error)
	FindByCode(ctx context.Context, code string) (*model.RecurringSeries, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.RecurringSeries, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, series *model.RecurringSeries) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	UpdateBookkeeping(ctx context.Context, id string, planned, created, skipped int, skippedDates []string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoSeriesRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoSeriesRepository(cfg *config.Config) SeriesRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSeriesRepository{
		cfg:        cfg,
		collection: db.Collection(SeriesCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout skips the deadline inside a transaction so the session
// context keeps driving the commit.
func (r *mongoSeriesRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSeriesRepository) Create(ctx context.Context, series *model.RecurringSeries) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	series.CreatedAt = now
	series.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, series)
	if err != nil {
		return fmt.Errorf("failed to create series: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		series.ID = oid.Hex()
	}
	return nil
}

func (r *mongoSeriesRepository) FindByID(ctx context.Context, id string) (*model.RecurringSeries, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serieserrors.ErrInvalidID, id)
	}
	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoSeriesRepository) FindByCode(ctx context.Context, code string) (*model.RecurringSeries, error) {
	return r.findOne(ctx, bson.M{"reservation_code": code})
}

func (r *mongoSeriesRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := r.FindByCode(ctx, code)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, serieserrors.ErrNotFound) {
		return false, nil
	}
	return false, err
}

func (r *mongoSeriesRepository) findOne(ctx context.Context, filter bson.M) (*model.RecurringSeries, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var series model.RecurringSeries
	err := r.collection.FindOne(ctx, filter).Decode(&series)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, serieserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find series: %w", err)
	}
	return &series, nil
}

func (r *mongoSeriesRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.RecurringSeries, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_date", Value: 1}}).
		SetSkip(offset)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	defer cursor.Close(ctx)

	var series []*model.RecurringSeries
	if err := cursor.All(ctx, &series); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}
	return series, nil
}

func (r *mongoSeriesRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count series: %w", err)
	}
	return count, nil
}

func (r *mongoSeriesRepository) Update(ctx context.Context, id string, series *model.RecurringSeries) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", serieserrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{
		"pattern":           series.Pattern,
		"weekdays":          series.Weekdays,
		"days_of_month":     series.DaysOfMonth,
		"start_date":        series.StartDate,
		"end_date":          series.EndDate,
		"start_time_of_day": series.StartTimeOfDay,
		"end_time_of_day":   series.EndTimeOfDay,
		"requester_name":    series.RequesterName,
		"requester_contact": series.RequesterContact,
		"purpose":           series.Purpose,
		"planned_count":     series.PlannedCount,
		"created_count":     series.CreatedCount,
		"skipped_count":     series.SkippedCount,
		"skipped_dates":     series.SkippedDates,
		"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update series: %w", err)
	}
	if result.MatchedCount == 0 {
		return nil, serieserrors.ErrNotFound
	}
	return result, nil
}

func (r *mongoSeriesRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return fmt.Errorf("failed to update series status: %w", err)
	}
	if result.MatchedCount == 0 {
		return serieserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSeriesRepository) UpdateBookkeeping(ctx context.Context, id string, planned, created, skipped int, skippedDates []string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", serieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M{
		"planned_count": planned,
		"created_count": created,
		"skipped_count": skipped,
		"skipped_dates": skippedDates,
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}})
	if err != nil {
		return fmt.Errorf("failed to update series bookkeeping: %w", err)
	}
	if result.MatchedCount == 0 {
		return serieserrors.ErrNotFound
	}
	return nil
}

func (r *mongoSeriesRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
