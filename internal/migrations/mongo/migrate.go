package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"reservo/internal/migrations/mongo/validators"
)

var (
	ReservationsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reservation_number", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "reservation_code", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(bson.M{"series_id": bson.M{"$exists": false}}),
		},
		{Keys: bson.D{
			{Key: "equipment_id", Value: 1},
			{Key: "status", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
		{Keys: bson.D{{Key: "series_id", Value: 1}, {Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "end_time", Value: 1}}},
	}

	TimeSlotsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "equipment_id", Value: 1},
			{Key: "start_time", Value: 1},
			{Key: "end_time", Value: 1},
		}},
	}

	RecurringSeriesIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "reservation_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "equipment_id", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "start_date", Value: 1}}},
	}

	EquipmentIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "active", Value: 1}}},
	}

	// Stale locks are reaped by TTL as a backstop; holders normally
	// delete them explicitly.
	EquipmentLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}

	ReservationHistoryIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "reservation_id", Value: 1}, {Key: "changed_at", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("🚀 Running Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Reservations": {
			Indexes:   ReservationsIndexes,
			Validator: validators.ReservationValidator,
		},
		"Time_slots": {
			Indexes:   TimeSlotsIndexes,
			Validator: validators.TimeSlotValidator,
		},
		"Recurring_series": {
			Indexes:   RecurringSeriesIndexes,
			Validator: validators.RecurringSeriesValidator,
		},
		"Equipment": {
			Indexes:   EquipmentIndexes,
			Validator: validators.EquipmentValidator,
		},
		"Equipment_locks": {
			Indexes:   EquipmentLocksIndexes,
			Validator: validators.EquipmentLockValidator,
		},
		"Reservation_history": {
			Indexes:   ReservationHistoryIndexes,
			Validator: validators.ReservationHistoryValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("✅ All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("🆕 Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("ℹ️ Collection %s already exists — updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("⚠️ Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("📚 Ensured indexes for %s\n", name)
	return nil
}
