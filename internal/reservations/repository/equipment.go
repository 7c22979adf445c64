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
	EquipmentCollectionName = "Equipment"
)

// EquipmentRepository reads the equipment registry. The scheduling
// engine never mutates registry rows; Create exists for seeding.
type EquipmentRepository interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	FindByID(ctx context.Context, id string) (*model.Equipment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, error)
	Count(ctx context.Context) (int64, error)
}

type mongoEquipmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoEquipmentRepository(cfg *config.Config) EquipmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentRepository{
		cfg:        cfg,
		collection: db.Collection(EquipmentCollectionName),
	}
}

func (r *mongoEquipmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoEquipmentRepository) Create(ctx context.Context, equipment *model.Equipment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	equipment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, equipment)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		equipment.ID = oid.Hex()
	}
	return nil
}

func (r *mongoEquipmentRepository) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reservationserrors.ErrInvalidID, id)
	}

	var equipment model.Equipment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&equipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, reservationserrors.ErrEquipmentNotFound
		}
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}

	return &equipment, nil
}

func (r *mongoEquipmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find equipment: %w", err)
	}
	defer cursor.Close(ctx)

	var equipment []*model.Equipment
	if err = cursor.All(ctx, &equipment); err != nil {
		return nil, fmt.Errorf("failed to decode equipment: %w", err)
	}

	return equipment, nil
}

func (r *mongoEquipmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count equipment: %w", err)
	}

	return count, nil
}
