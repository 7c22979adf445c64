package service

import (
	"context"
	reservationserrors "reservo/internal/reservations/errors"
	resservice "reservo/internal/reservations/service"
	serieserrors "reservo/internal/series/errors"
	mongotx "reservo/pkg/db/mongo"
	"reservo/pkg/model"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockSeriesRepo struct {
	findByIDFunc   func(ctx context.Context, id string) (*model.RecurringSeries, error)
	findByCodeFunc func(ctx context.Context, code string) (*model.RecurringSeries, error)
	codeExistsFunc func(ctx context.Context, code string) (bool, error)

	createdSeries []*model.RecurringSeries
	updatedSeries []*model.RecurringSeries
	statusUpdates map[string]string
	bookkeeping   *model.ExpansionResult
}

func (m *mockSeriesRepo) Create(ctx context.Context, series *model.RecurringSeries) error {
	series.ID = "65f100000000000000000001"
	m.createdSeries = append(m.createdSeries, series)
	return nil
}

func (m *mockSeriesRepo) FindByID(ctx context.Context, id string) (*model.RecurringSeries, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, serieserrors.ErrNotFound
}

func (m *mockSeriesRepo) FindByCode(ctx context.Context, code string) (*model.RecurringSeries, error) {
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(ctx, code)
	}
	return nil, serieserrors.ErrNotFound
}

func (m *mockSeriesRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.codeExistsFunc != nil {
		return m.codeExistsFunc(ctx, code)
	}
	return false, nil
}

func (m *mockSeriesRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.RecurringSeries, error) {
	return nil, nil
}

func (m *mockSeriesRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockSeriesRepo) Update(ctx context.Context, id string, series *model.RecurringSeries) (*mongo.UpdateResult, error) {
	m.updatedSeries = append(m.updatedSeries, series)
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockSeriesRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	if m.statusUpdates == nil {
		m.statusUpdates = map[string]string{}
	}
	m.statusUpdates[id] = status
	return nil
}

func (m *mockSeriesRepo) UpdateBookkeeping(ctx context.Context, id string, planned, created, skipped int, skippedDates []string) error {
	m.bookkeeping = &model.ExpansionResult{
		Planned:      planned,
		Created:      created,
		Skipped:      skipped,
		SkippedDates: skippedDates,
	}
	return nil
}

func (m *mockSeriesRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockChildRepo struct {
	createFunc             func(ctx context.Context, r *model.Reservation) error
	findFutureBySeriesFunc func(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error)
	countBySeriesFunc      func(ctx context.Context, seriesID string) (int64, error)
	findBySeriesFunc       func(ctx context.Context, seriesID string, limit int, offset int64) ([]*model.Reservation, error)

	createdChildren []*model.Reservation
	deletedIDs      []string
	cancelledIDs    []string
}

func (m *mockChildRepo) Create(ctx context.Context, r *model.Reservation) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, r); err != nil {
			return err
		}
	}
	r.ID = "65f200000000000000000001"
	m.createdChildren = append(m.createdChildren, r)
	return nil
}

func (m *mockChildRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, reservationserrors.ErrNotFound
}

func (m *mockChildRepo) FindByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	return nil, reservationserrors.ErrNotFound
}

func (m *mockChildRepo) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	return nil, reservationserrors.ErrNotFound
}

func (m *mockChildRepo) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockChildRepo) FindBySeries(ctx context.Context, seriesID string, limit int, offset int64) ([]*model.Reservation, error) {
	if m.findBySeriesFunc != nil {
		return m.findBySeriesFunc(ctx, seriesID, limit, offset)
	}
	return nil, nil
}

func (m *mockChildRepo) FindFutureBySeries(ctx context.Context, seriesID string, after time.Time, statuses []string) ([]*model.Reservation, error) {
	if m.findFutureBySeriesFunc != nil {
		return m.findFutureBySeriesFunc(ctx, seriesID, after, statuses)
	}
	return nil, nil
}

func (m *mockChildRepo) FindActiveOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockChildRepo) Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, error) {
	return nil, nil
}

func (m *mockChildRepo) CountSearch(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time) (int64, error) {
	return 0, nil
}

func (m *mockChildRepo) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockChildRepo) CountBySeries(ctx context.Context, seriesID string) (int64, error) {
	if m.countBySeriesFunc != nil {
		return m.countBySeriesFunc(ctx, seriesID)
	}
	return int64(len(m.createdChildren)), nil
}

func (m *mockChildRepo) Update(ctx context.Context, id string, r *model.Reservation) (*mongo.UpdateResult, error) {
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (m *mockChildRepo) Delete(ctx context.Context, id string) error {
	m.deletedIDs = append(m.deletedIDs, id)
	return nil
}

func (m *mockChildRepo) UpdateStatus(ctx context.Context, id string, status string, markException bool) error {
	if status == model.StatusCancelled {
		m.cancelledIDs = append(m.cancelledIDs, id)
	}
	return nil
}

func (m *mockChildRepo) MarkInUse(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockChildRepo) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func (m *mockChildRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockSlotRepo struct {
	findContainingFunc func(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error)

	createdSlots   []*model.TimeSlot
	incrementedIDs []string
	decrementedIDs []string
}

func (m *mockSlotRepo) Create(ctx context.Context, slot *model.TimeSlot) error {
	slot.ID = "65f300000000000000000001"
	m.createdSlots = append(m.createdSlots, slot)
	return nil
}

func (m *mockSlotRepo) FindByID(ctx context.Context, id string) (*model.TimeSlot, error) {
	return nil, reservationserrors.ErrSlotNotFound
}

func (m *mockSlotRepo) FindContaining(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*model.TimeSlot, error) {
	if m.findContainingFunc != nil {
		return m.findContainingFunc(ctx, equipmentID, startTime, endTime)
	}
	return nil, reservationserrors.ErrSlotNotFound
}

func (m *mockSlotRepo) FindOverlapping(ctx context.Context, equipmentID string, startTime, endTime time.Time) ([]*model.TimeSlot, error) {
	return nil, nil
}

func (m *mockSlotRepo) FindByEquipment(ctx context.Context, equipmentID string, limit int, offset int64) ([]*model.TimeSlot, error) {
	return nil, nil
}

func (m *mockSlotRepo) IncrementCount(ctx context.Context, id string) error {
	m.incrementedIDs = append(m.incrementedIDs, id)
	return nil
}

func (m *mockSlotRepo) DecrementCount(ctx context.Context, id string) error {
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
	createFunc func(ctx context.Context, lock *model.EquipmentLock) (*model.EquipmentLock, error)

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
	return false, nil
}

// mockAvailability stands in for the reservation service; only
// CheckAvailability carries behavior here.
type mockAvailability struct {
	checkFunc func(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*resservice.Availability, error)

	checkedIntervals [][2]time.Time
}

func (m *mockAvailability) CheckAvailability(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*resservice.Availability, error) {
	m.checkedIntervals = append(m.checkedIntervals, [2]time.Time{startTime, endTime})
	if m.checkFunc != nil {
		return m.checkFunc(ctx, equipmentID, startTime, endTime)
	}
	return &resservice.Availability{Available: true, MaxSimultaneous: 1}, nil
}

func (m *mockAvailability) Create(ctx context.Context, reservation *model.Reservation) error {
	return nil
}

func (m *mockAvailability) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockAvailability) Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	return nil, 0, nil
}

func (m *mockAvailability) Update(ctx context.Context, id string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) UpdateByNumber(ctx context.Context, number string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) Cancel(ctx context.Context, id string, actor string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) CancelByNumber(ctx context.Context, number string, actor string) (*model.Reservation, error) {
	return nil, nil
}

func (m *mockAvailability) GetHistory(ctx context.Context, reservationID string) ([]*model.AuditEntry, error) {
	return nil, nil
}
