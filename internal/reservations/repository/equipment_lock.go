package repository

import (
	"context"
	"reservo/pkg/config"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EquipmentLockCollectionName = "Equipment_locks"
)

// EquipmentLockRepository provides operations for advisory locks
type EquipmentLockRepository interface {
	Create(ctx context.Context, lock *model.EquipmentLock) (*model.EquipmentLock, error)
	Delete(ctx context.Context, lockID string) error
	DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error)
}

type mongoEquipmentLockRepository struct {
	collection *mongo.Collection
}

func NewEquipmentLockRepository(cfg *config.Config) EquipmentLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoEquipmentLockRepository{
		collection: db.Collection(EquipmentLockCollectionName),
	}
}

// Returns duplicate key error if lock already exists
func (r *mongoEquipmentLockRepository) Create(ctx context.Context, lock *model.EquipmentLock) (*model.EquipmentLock, error) {
	lock.CreatedAt = time.Now()

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		return nil, err
	}

	return lock, nil
}

// Delete removes an advisory lock
func (r *mongoEquipmentLockRepository) Delete(ctx context.Context, lockID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	return err
}

// DeleteExpired removes the lock only if its expiry has passed, so a
// crashed holder cannot block the equipment forever. Reports whether a
// stale lock was actually removed.
func (r *mongoEquipmentLockRepository) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":        lockID,
		"expires_at": bson.M{"$lt": now},
	})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}
