package repository

import (
	"context"
	"errors"
	"fmt"
	reservationserrors "reservo/internal/reservations/errors"
	"reservo/pkg/config"
	mongotx "reservo/pkg/db/mongo"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Reservations"
)

type mongoReservationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	FindByID(ctx context.Context, id string) (*model.Reservation, error)
	FindByNumber(ctx context.Context, number string) (*model.Reservation, error)
	FindByCode(ctx context.Context, code string) (*model.Reservation, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error)
	FindBySeries(ctx context.Context, seriesID string, limit int, offset int64) ([]*model.Reservation, error)
	FindFutureBySeries(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error)
	FindActiveOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error)
	Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, error)
	CountSearch(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountBySeries(ctx context.Context, seriesID string) (int64, error)
	Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	UpdateStatus(ctx context.Context, id string, status string, markException bool) error
	MarkInUse(ctx context.Context, now time.Time) (int64, error)
	MarkExpired(ctx context.Context, now time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoReservationRepository(cfg *config.Config) ReservationRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoReservationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoReservationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	reservation.CreatedAt = now
	reservation.UpdatedAt = now
	result, err := r.collection.InsertOne(ctx, reservation)
	if err != nil {
		return fmt.Errorf("failed to create reservation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		reservation.ID = oid.Hex()
	}
	return nil
}

func (r *mongoReservationRepository) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	return r.findOne(ctx, bson.M{"_id": objectID})
}

func (r *mongoReservationRepository) FindByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"reservation_number": number})
}

func (r *mongoReservationRepository) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	return r.findOne(ctx, bson.M{"reservation_code": code})
}

func (r *mongoReservationRepository) findOne(ctx context.Context, filter bson.M) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.collection.FindOne(ctx, filter).Decode(&reservation)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find reservation: %w", err)
	}

	return &reservation, nil
}

func (r *mongoReservationRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	return r.findMany(ctx, bson.M{}, opts)
}

func (r *mongoReservationRepository) FindBySeries(ctx context.Context, seriesID string, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	return r.findMany(ctx, bson.M{"series_id": seriesID}, opts)
}

// FindFutureBySeries returns series children starting after the given
// instant. Used inside series update transactions, so no pagination.
func (r *mongoReservationRepository) FindFutureBySeries(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"series_id":  seriesID,
		"start_time": bson.M{"$gt": after},
	}
	if len(statuses) > 0 {
		filter["status"] = bson.M{"$in": statuses}
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.findMany(ctx, filter, opts)
}

// FindActiveOverlapping returns non-cancelled reservations whose interval
// overlaps [startTime, endTime). Touching boundaries do not overlap.
func (r *mongoReservationRepository) FindActiveOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"equipment_id": equipmentID,
		"status":       bson.M{"$ne": model.StatusCancelled},
		"start_time":   bson.M{"$lt": endTime},
		"end_time":     bson.M{"$gt": startTime},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	return r.findMany(ctx, filter, opts)
}

func (r *mongoReservationRepository) Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(equipmentID, status, startTime, endTime)

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "start_time", Value: 1}})

	return r.findMany(ctx, filter, opts)
}

func (r *mongoReservationRepository) CountSearch(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := r.buildSearchFilter(equipmentID, status, startTime, endTime)

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations by search: %w", err)
	}
	return count, nil
}

func (r *mongoReservationRepository) buildSearchFilter(equipmentID string, status string, startTime, endTime *time.Time) bson.M {
	filter := bson.M{
		"equipment_id": equipmentID,
	}

	if status != "" {
		filter["status"] = status
	}

	if startTime != nil || endTime != nil {
		timeFilters := bson.M{}
		if startTime != nil && endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
				"end_time":   bson.M{"$gt": *startTime},
			}
		} else if startTime != nil {
			timeFilters = bson.M{
				"end_time": bson.M{"$gt": *startTime},
			}
		} else if endTime != nil {
			timeFilters = bson.M{
				"start_time": bson.M{"$lt": *endTime},
			}
		}

		filter["$and"] = []bson.M{timeFilters}
	}

	return filter
}

func (r *mongoReservationRepository) findMany(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Reservation, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find reservations: %w", err)
	}
	defer cursor.Close(ctx)

	var reservations []*model.Reservation
	if err = cursor.All(ctx, &reservations); err != nil {
		return nil, fmt.Errorf("failed to decode reservations: %w", err)
	}

	return reservations, nil
}

func (r *mongoReservationRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) CountBySeries(ctx context.Context, seriesID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"series_id": seriesID})
	if err != nil {
		return 0, fmt.Errorf("failed to count series reservations: %w", err)
	}

	return count, nil
}

func (r *mongoReservationRepository) Update(ctx context.Context, id string, reservation *model.Reservation) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{"_id": objectID}
	update := bson.M{
		"$set": bson.M{
			"start_time":        reservation.StartTime,
			"end_time":          reservation.EndTime,
			"time_slot_id":      reservation.TimeSlotID,
			"status":            reservation.Status,
			"requester_name":    reservation.RequesterName,
			"requester_contact": reservation.RequesterContact,
			"purpose":           reservation.Purpose,
			"is_exception":      reservation.IsException,
			"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, reservationserrors.ErrNotFound
	}

	return result, nil
}

// Delete physically removes a reservation. Only series re-expansion
// uses this; single reservations are cancelled, never deleted.
func (r *mongoReservationRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete reservation: %w", err)
	}
	if result.DeletedCount == 0 {
		return reservationserrors.ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepository) UpdateStatus(ctx context.Context, id string, status string, markException bool) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if markException {
		set["is_exception"] = true
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservationserrors.ErrNotFound
	}

	return nil
}

// MarkInUse flips confirmed reservations whose window contains the given
// instant. The status condition makes repeated sweeps idempotent.
func (r *mongoReservationRepository) MarkInUse(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":     model.StatusConfirmed,
		"start_time": bson.M{"$lte": now},
		"end_time":   bson.M{"$gt": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     model.StatusInUse,
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark reservations in use: %w", err)
	}

	return result.ModifiedCount, nil
}

// MarkExpired flips confirmed and in-use reservations whose window has
// passed. Cancelled reservations are never touched.
func (r *mongoReservationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"status":   bson.M{"$in": []string{model.StatusConfirmed, model.StatusInUse}},
		"end_time": bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":     model.StatusExpired,
		"updated_at": now,
	}}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark reservations expired: %w", err)
	}

	return result.ModifiedCount, nil
}

func (r *mongoReservationRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
