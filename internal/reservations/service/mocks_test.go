package service

import (
	"context"
	reservationserrors "reservo/internal/reservations/errors"
	mongotx "reservo/pkg/db/mongo"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockReservationRepo struct {
	createFunc                func(ctx context.Context, r *model.Reservation) error
	findByIDFunc              func(ctx context.Context, id string) (*model.Reservation, error)
	findByNumberFunc          func(ctx context.Context, number string) (*model.Reservation, error)
	findByCodeFunc            func(ctx context.Context, code string) (*model.Reservation, error)
	findActiveOverlappingFunc func(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error)
	findFutureBySeriesFunc    func(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error)
	updateFunc                func(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error)
	updateStatusFunc          func(ctx context.Context, id string, status string, markException bool) error
	markInUseFunc             func(ctx context.Context, now time.Time) (int64, error)
	markExpiredFunc           func(ctx context.Context, now time.Time) (int64, error)

	createdReservations []*model.Reservation
	deletedIDs          []string
}

func (m *mockReservationRepo) Create(ctx context.Context, r *model.Reservation) error {
	m.createdReservations = append(m.createdReservations, r)
	if m.createFunc != nil {
		return m.createFunc(ctx, r)
	}
	r.ID = "65f000000000000000000001"
	return nil
}

func (m *mockReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *mockReservationRepo) FindByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	if m.findByNumberFunc != nil {
		return m.findByNumberFunc(ctx, number)
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *mockReservationRepo) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(ctx, code)
	}
	return nil, reservationserrors.ErrNotFound
}

func (m *mockReservationRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepo) FindBySeries(ctx context.Context, seriesID string, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepo) FindFutureBySeries(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error) {
	if m.findFutureBySeriesFunc != nil {
		return m.findFutureBySeriesFunc(ctx, seriesID, after, statuses)
	}
	return nil, nil
}

func (m *mockReservationRepo) FindActiveOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error) {
	if m.findActiveOverlappingFunc != nil {
		return m.findActiveOverlappingFunc(ctx, equipmentID, startTime, endTime)
	}
	return nil, nil
}

func (m *mockReservationRepo) Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockReservationRepo) CountSearch(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepo) CountBySeries(ctx context.Context, seriesID string) (int64, error) {
	return 0, nil
}

func (m *mockReservationRepo) Update(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, r)
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockReservationRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockReservationRepo) UpdateStatus(ctx context.Context, id string, status string, markException bool) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, markException)
	}
	return nil
}

func (m *mockReservationRepo) MarkInUse(ctx context.Context, now time.Time) (int64, error) {
	if m.markInUseFunc != nil {
		return m.markInUseFunc(ctx, now)
	}
	return 0, nil
}

func (m *mockReservationRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.markExpiredFunc != nil {
		return m.markExpiredFunc(ctx, now)
	}
	return 0, nil
}

func (m *mockReservationRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockTimeSlotRepo struct {
	findContainingFunc  func(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error)
	findOverlappingFunc func(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.TimeSlot, error)
	incrementCountFunc  func(ctx context.Context, id string) error

	createdSlots   []*model.TimeSlot
	incrementedIDs []string
	decrementedIDs []string
}

func (m *mockTimeSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	slot.ID = "65f000000000000000000abc"
	m.createdSlots = append(m.createdSlots, slot)
	return nil
}

func (m *mockTimeSlotRepo) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	return nil, reservationserrors.ErrSlotNotFound
}

func (m *mockTimeSlotRepo) FindContaining(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error) {
	if m.findContainingFunc != nil {
		return m.findContainingFunc(ctx, equipmentID, startTime, endTime)
	}
	return nil, reservationserrors.ErrSlotNotFound
}

func (m *mockTimeSlotRepo) FindOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.TimeSlot, error) {
	if m.findOverlappingFunc != nil {
		return m.findOverlappingFunc(ctx, equipmentID, startTime, endTime)
	}
	return nil, nil
}

func (m *mockTimeSlotRepo) FindByEquipment(ctx context.Context, equipmentID string, limit int, offset int64) ([]*model.TimeSlot, error) {
	return nil, nil
}

func (m *mockTimeSlotRepo) IncrementCount(ctx context.Context, id string) error {
	m.incrementedIDs = append(m.incrementedIDs, id)
	if m.incrementCountFunc != nil {
		return m.incrementCountFunc(ctx, id)
	}
	return nil
}

func (m *mockTimeSlotRepo) DecrementCount(ctx context.Context, id string) error {
	m.decrementedIDs = append(m.decrementedIDs, id)
	return nil
}

type mockEquipmentRepo struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Equipment, error)
}

func (m *mockEquipmentRepo) Create(ctx context.Context, equipment *model.Equipment) error {
	return nil
}

func (m *mockEquipmentRepo) FindByID(ctx context.Context, id string) (*model.Equipment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, reservationserrors.ErrEquipmentNotFound
}

func (m *mockEquipmentRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, error) {
	return nil, nil
}

func (m *mockEquipmentRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockLockRepo struct {
	createFunc        func(ctx context.Context, lock *model.EquipmentLock) (*model.EquipmentLock, error)
	deleteExpiredFunc func(ctx context.Context, lockID string, now time.Time) (bool, error)

	deletedIDs []string
}

func (m *mockLockRepo) Create(ctx context.Context, lock *model.EquipmentLock) (*model.EquipmentLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepo) Delete(ctx context.Context, lockID string) error {
	m.deletedIDs = append(m.deletedIDs, lockID)
	return nil
}

func (m *mockLockRepo) DeleteExpired(ctx context.Context, lockID string, now time.Time) (bool, error) {
	if m.deleteExpiredFunc != nil {
		return m.deleteExpiredFunc(ctx, lockID, now)
	}
	return false, nil
}

type mockAuditRepo struct {
	entries []*model.AuditEntry
}

func (m *mockAuditRepo) CreateMany(ctx context.Context, entries []*model.AuditEntry) error {
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockAuditRepo) FindByReservation(ctx context.Context, reservationID string) ([]*model.AuditEntry, error) {
	return m.entries, nil
}

type mockSeriesLookup struct {
	codeExistsFunc func(ctx context.Context, code string) (bool, error)
}

func (m *mockSeriesLookup) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.codeExistsFunc != nil {
		return m.codeExistsFunc(ctx, code)
	}
	return false, nil
}
