package repository

import (
	"context"
	"errors"
	"fmt"
	reservationserrors "reservo/internal/reservations/errors"
	"reservo/pkg/config"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	TimeSlotCollectionName = "Time_slots"
)

// TimeSlotRepository manages the occupancy ledger for shared equipment.
// Slots exist only while at least one reservation occupies them.
type TimeSlotRepository interface {
	Create(ctx context.Context, slot *model.TimeSlot) error
	FindByID(ctx context.Context, id string) (*model.TimeSlot, error)
	FindContaining(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error)
	FindOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.TimeSlot, error)
	FindByEquipment(ctx context.Context, equipmentID string, limit int, offset int64) ([]*model.TimeSlot, error)
	IncrementCount(ctx context.Context, id string) error
	DecrementCount(ctx context.Context, id string) error
}

type mongoTimeSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTimeSlotRepository(cfg *config.Config) TimeSlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTimeSlotRepository{
		cfg:        cfg,
		collection: db.Collection(TimeSlotCollectionName),
	}
}

func (r *mongoTimeSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTimeSlotRepository) Create(ctx context.Context, slot *model.TimeSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	slot.CreatedAt = now
	slot.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to create time slot: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		slot.ID = oid.Hex()
	}
	return nil
}

func (r *mongoTimeSlotRepository) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var slot model.TimeSlot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find time slot: %w", err)
	}

	return &slot, nil
}

// FindContaining returns the slot whose interval fully contains the
// requested one, or ErrSlotNotFound.
func (r *mongoTimeSlotRepository) FindContaining(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"equipment_id": equipmentID,
		"start_time":   bson.M{"$lte": startTime},
		"end_time":     bson.M{"$gte": endTime},
	}

	var slot model.TimeSlot
	err := r.collection.FindOne(ctx, filter).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find containing time slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoTimeSlotRepository) FindOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"equipment_id": equipmentID,
		"start_time":   bson.M{"$lt": endTime},
		"end_time":     bson.M{"$gt": startTime},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}

	return slots, nil
}

func (r *mongoTimeSlotRepository) FindByEquipment(ctx context.Context, equipmentID string, limit int, offset int64) ([]*model.TimeSlot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{"equipment_id": equipmentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find time slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.TimeSlot
	if err = cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode time slots: %w", err)
	}

	return slots, nil
}

// IncrementCount bumps the occupancy by one. The filter requires
// current_count < max_simultaneous, so a full slot returns ErrSlotFull
// even if capacity changed between the check and the write. A slot that
// no longer exists returns ErrSlotNotFound.
func (r *mongoTimeSlotRepository) IncrementCount(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":   objectID,
		"$expr": bson.M{"$lt": bson.A{"$current_count", "$max_simultaneous"}},
	}
	update := bson.M{
		"$inc": bson.M{"current_count": 1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment time slot count: %w", err)
	}

	if result.MatchedCount == 0 {
		err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Err()
		if errors.Is(err, mongo.ErrNoDocuments) {
			return reservationserrors.ErrSlotNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to probe time slot: %w", err)
		}
		return reservationserrors.ErrSlotFull
	}

	return nil
}

// DecrementCount lowers the occupancy by one and deletes the slot when
// the count reaches zero, keeping the 0 < count invariant for stored slots.
func (r *mongoTimeSlotRepository) DecrementCount(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":           objectID,
		"current_count": bson.M{"$gt": 0},
	}
	update := bson.M{
		"$inc": bson.M{"current_count": -1},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement time slot count: %w", err)
	}

	if result.MatchedCount == 0 {
		return reservationserrors.ErrSlotNotFound
	}

	_, err = r.collection.DeleteOne(ctx, bson.M{
		"_id":           objectID,
		"current_count": bson.M{"$lte": 0},
	})
	if err != nil {
		return fmt.Errorf("failed to clean up empty time slot: %w", err)
	}

	return nil
}
