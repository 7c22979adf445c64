package service

import (
	"context"
	"errors"
	"fmt"
	"reservo/internal/notifier"
	reservationserrors "reservo/internal/reservations/errors"
	"reservo/internal/reservations/repository"
	"reservo/internal/reservations/validator"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type ReservationService interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	GetByNumber(ctx context.Context, number string) (*model.Reservation, error)
	GetByCode(ctx context.Context, code string) (*model.Reservation, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error)
	Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error)
	UpdateByNumber(ctx context.Context, number string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error)
	Cancel(ctx context.Context, id string, actor string) (*model.Reservation, error)
	CancelByNumber(ctx context.Context, number string, actor string) (*model.Reservation, error)
	CheckAvailability(ctx context.Context, equipmentID string, startTime, endTime time.Time) (*Availability, error)
	GetHistory(ctx context.Context, reservationID string) ([]*model.AuditEntry, error)
}

type reservationService struct {
	repo          repository.ReservationRepository
	slotRepo      repository.TimeSlotRepository
	equipmentRepo repository.EquipmentRepository
	lockRepo      repository.EquipmentLockRepository
	auditRepo     repository.AuditRepository
	validator     *validator.ReservationValidator
	ids           *IdentifierGenerator
	seriesLookup  SeriesCodeLookup
	events        notifier.Notifier
	cfg           *config.Config
	clock         clock.Clock
}

func NewReservationService(
	repo repository.ReservationRepository,
	slotRepo repository.TimeSlotRepository,
	equipmentRepo repository.EquipmentRepository,
	lockRepo repository.EquipmentLockRepository,
	auditRepo repository.AuditRepository,
	resValidator *validator.ReservationValidator,
	ids *IdentifierGenerator,
	seriesLookup SeriesCodeLookup,
	events notifier.Notifier,
	cfg *config.Config,
	clk clock.Clock,
) ReservationService {
	return &reservationService{
		repo:          repo,
		slotRepo:      slotRepo,
		equipmentRepo: equipmentRepo,
		lockRepo:      lockRepo,
		auditRepo:     auditRepo,
		validator:     resValidator,
		ids:           ids,
		seriesLookup:  seriesLookup,
		events:        events,
		cfg:           cfg,
		clock:         clk,
	}
}

func (s *reservationService) Create(ctx context.Context, reservation *model.Reservation) error {
	s.sanitize(reservation)
	if err := s.validate(reservation); err != nil {
		return err
	}

	equipment, err := s.getEquipment(ctx, reservation.EquipmentID)
	if err != nil {
		return err
	}
	if !equipment.Active {
		return apperrors.InvalidInput(fmt.Sprintf("Equipment %q is not active", equipment.Name))
	}

	number, err := s.ids.NextReservationNumber(ctx, reservation.StartTime)
	if err != nil {
		return err
	}
	code, err := s.ids.NextReservationCode(ctx)
	if err != nil {
		return err
	}
	reservation.ReservationNumber = number
	reservation.ReservationCode = code
	reservation.Status = StatusForInterval(s.clock.Now(), reservation.StartTime, reservation.EndTime)

	// The equipment lock serializes check-then-book per equipment; the
	// transaction keeps slot counts and the reservation row consistent.
	lockID, err := s.acquireEquipmentLock(ctx, reservation.EquipmentID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseEquipmentLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release equipment lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		decision, err := s.checkAvailability(sessCtx, equipment, reservation.StartTime, reservation.EndTime, "", "")
		if err != nil {
			return err
		}
		if !decision.Available {
			return conflictFromDecision(decision)
		}

		if equipment.AllowSimultaneous {
			slotID, err := s.occupySlot(sessCtx, equipment, decision, reservation.StartTime, reservation.EndTime)
			if err != nil {
				return err
			}
			reservation.TimeSlotID = slotID
		}

		if err := s.repo.Create(sessCtx, reservation); err != nil {
			return apperrors.Internal("Failed to create reservation", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create reservation",
			"equipment_id", reservation.EquipmentID,
			"start_time", reservation.StartTime,
			"error", err,
		)
		return err
	}

	s.cfg.Log.Info("Reservation created successfully",
		"id", reservation.ID,
		"reservation_number", reservation.ReservationNumber,
		"equipment_id", reservation.EquipmentID,
		"status", reservation.Status,
	)
	s.events.ReservationCreated(ctx, reservation)
	return nil
}

func (s *reservationService) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Reservation", id)
	}
	return reservation, nil
}

func (s *reservationService) GetByNumber(ctx context.Context, number string) (*model.Reservation, error) {
	if number == "" {
		return nil, apperrors.InvalidInput("Reservation number cannot be empty")
	}

	reservation, err := s.repo.FindByNumber(ctx, number)
	if err != nil {
		return nil, translateLookupError(err, "Reservation", number)
	}
	return reservation, nil
}

// GetByCode resolves a share code. Codes live in one namespace with
// recurring series, so a code that belongs to a series gets an
// explicit redirect error rather than a bare 404.
func (s *reservationService) GetByCode(ctx context.Context, code string) (*model.Reservation, error) {
	if code == "" {
		return nil, apperrors.InvalidInput("Reservation code cannot be empty")
	}

	reservation, err := s.repo.FindByCode(ctx, code)
	if err == nil {
		return reservation, nil
	}
	if !errors.Is(err, reservationserrors.ErrNotFound) {
		return nil, apperrors.Internal("Failed to retrieve reservation", err)
	}

	if s.seriesLookup != nil {
		exists, lookupErr := s.seriesLookup.CodeExists(ctx, code)
		if lookupErr != nil {
			return nil, apperrors.Internal("Failed to check series codes", lookupErr)
		}
		if exists {
			return nil, apperrors.InvalidInput(
				fmt.Sprintf("Code %s belongs to a recurring series, use the series endpoint", code),
			)
		}
	}

	return nil, apperrors.NotFoundWithID("Reservation", code)
}

func (s *reservationService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Reservation, int64, error) {

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count reservations", "error", errCount)
			errCount = apperrors.Internal("Failed to count reservations", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		reservations, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list reservations", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve reservations", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Search(ctx context.Context, equipmentID string, status string, startTime, endTime *time.Time, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if status != "" {
		switch status {
		case model.StatusConfirmed, model.StatusInUse, model.StatusExpired, model.StatusCancelled:
		default:
			return nil, 0, apperrors.InvalidInput(fmt.Sprintf("Unknown status %q", status))
		}
	}

	var count int64
	var reservations []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountSearch(ctx, equipmentID, status, startTime, endTime)
		if err != nil {
			s.cfg.Log.Error("Failed to count reservation search",
				"equipment_id", equipmentID,
				"status", status,
				"error", err,
			)
			errCount = apperrors.Internal("Failed to count reservations", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		reservations, err = s.repo.Search(ctx, equipmentID, status, startTime, endTime, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to search reservations",
				"equipment_id", equipmentID,
				"status", status,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to search reservations", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return reservations, count, nil
}

func (s *reservationService) Update(ctx context.Context, id string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Reservation", id)
	}
	if existing.IsTerminal() {
		return nil, apperrors.Conflict("Cannot modify a cancelled reservation")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Reservation update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeReservationUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}

	entries := diffReservations(existing, merged, actor)
	if len(entries) == 0 {
		return existing, nil
	}

	timesChanged := !merged.StartTime.Equal(existing.StartTime) || !merged.EndTime.Equal(existing.EndTime)

	if timesChanged {
		err = s.updateWithRebooking(ctx, id, existing, merged, entries)
	} else {
		err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
			if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
				return apperrors.Internal("Failed to update reservation", err)
			}
			if err := s.auditRepo.CreateMany(sessCtx, entries); err != nil {
				return apperrors.Internal("Failed to record reservation history", err)
			}
			return nil
		})
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update reservation", "id", id, "error", err)
		return nil, err
	}

	changedFields := make([]string, 0, len(entries))
	for _, e := range entries {
		changedFields = append(changedFields, e.Field)
	}
	s.cfg.Log.Info("Reservation updated successfully", "id", id, "changed_fields", changedFields)
	s.events.ReservationUpdated(ctx, merged, changedFields)
	return merged, nil
}

// updateWithRebooking moves the reservation to a new interval: the
// conflict check runs again excluding the reservation itself, and for
// shared equipment the occupancy moves from the old slot to the new
// one inside the same transaction.
func (s *reservationService) updateWithRebooking(ctx context.Context, id string, existing, merged *model.Reservation, entries []*model.AuditEntry) error {
	equipment, err := s.getEquipment(ctx, merged.EquipmentID)
	if err != nil {
		return err
	}

	lockID, err := s.acquireEquipmentLock(ctx, merged.EquipmentID)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := s.releaseEquipmentLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release equipment lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	return s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		decision, err := s.checkAvailability(sessCtx, equipment, merged.StartTime, merged.EndTime, id, existing.TimeSlotID)
		if err != nil {
			return err
		}
		if !decision.Available {
			return conflictFromDecision(decision)
		}

		if equipment.AllowSimultaneous {
			sameSlot := decision.Slot != nil && decision.Slot.ID == existing.TimeSlotID
			if !sameSlot {
				if existing.TimeSlotID != "" {
					if err := s.slotRepo.DecrementCount(sessCtx, existing.TimeSlotID); err != nil && !errors.Is(err, reservationserrors.ErrSlotNotFound) {
						return apperrors.Internal("Failed to release old time slot", err)
					}
				}
				slotID, err := s.occupySlot(sessCtx, equipment, decision, merged.StartTime, merged.EndTime)
				if err != nil {
					return err
				}
				merged.TimeSlotID = slotID
			}
		}

		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update reservation", err)
		}
		if err := s.auditRepo.CreateMany(sessCtx, entries); err != nil {
			return apperrors.Internal("Failed to record reservation history", err)
		}
		return nil
	})
}

func (s *reservationService) UpdateByNumber(ctx context.Context, number string, updates *model.ReservationUpdate, actor string) (*model.Reservation, error) {
	existing, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.Update(ctx, existing.ID, updates, actor)
}

func (s *reservationService) CancelByNumber(ctx context.Context, number string, actor string) (*model.Reservation, error) {
	existing, err := s.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	return s.Cancel(ctx, existing.ID, actor)
}

func (s *reservationService) Cancel(ctx context.Context, id string, actor string) (*model.Reservation, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateLookupError(err, "Reservation", id)
	}
	if existing.Status == model.StatusCancelled {
		return nil, apperrors.AlreadyCancelled("Reservation")
	}

	// A cancelled series child stays cancelled even if the series is
	// later rescheduled, so the child is flagged as an exception.
	markException := existing.SeriesID != ""

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.UpdateStatus(sessCtx, id, model.StatusCancelled, markException); err != nil {
			return apperrors.Internal("Failed to cancel reservation", err)
		}
		if existing.TimeSlotID != "" {
			if err := s.slotRepo.DecrementCount(sessCtx, existing.TimeSlotID); err != nil && !errors.Is(err, reservationserrors.ErrSlotNotFound) {
				return apperrors.Internal("Failed to release time slot", err)
			}
		}
		entry := &model.AuditEntry{
			ReservationID: id,
			Field:         "status",
			OldValue:      existing.Status,
			NewValue:      model.StatusCancelled,
			Actor:         actor,
		}
		if err := s.auditRepo.CreateMany(sessCtx, []*model.AuditEntry{entry}); err != nil {
			return apperrors.Internal("Failed to record cancellation history", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel reservation", "id", id, "error", err)
		return nil, err
	}

	existing.Status = model.StatusCancelled
	if markException {
		existing.IsException = true
	}

	s.cfg.Log.Info("Reservation cancelled successfully",
		"id", id,
		"reservation_number", existing.ReservationNumber,
	)
	s.events.ReservationCancelled(ctx, existing)
	return existing, nil
}

func (s *reservationService) GetHistory(ctx context.Context, reservationID string) ([]*model.AuditEntry, error) {
	if reservationID == "" {
		return nil, apperrors.InvalidInput("Reservation ID cannot be empty")
	}

	if _, err := s.repo.FindByID(ctx, reservationID); err != nil {
		return nil, translateLookupError(err, "Reservation", reservationID)
	}

	entries, err := s.auditRepo.FindByReservation(ctx, reservationID)
	if err != nil {
		return nil, apperrors.Internal("Failed to retrieve reservation history", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *reservationService) sanitize(r *model.Reservation) {
	r.RequesterName = sanitizer.NormalizeName(r.RequesterName)
	r.RequesterContact = sanitizer.SanitizeContact(r.RequesterContact)
	r.Purpose = sanitizer.NormalizePurpose(r.Purpose)
}

func (s *reservationService) validate(reservation *model.Reservation) error {
	if err := s.validator.Validate(reservation); err != nil {
		s.cfg.Log.Warn("Reservation validation failed", "error", err)
		return apperrors.Validation("Reservation validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *reservationService) getEquipment(ctx context.Context, equipmentID string) (*model.Equipment, error) {
	return FetchEquipment(ctx, s.equipmentRepo, equipmentID)
}

func FetchEquipment(ctx context.Context, repo repository.EquipmentRepository, equipmentID string) (*model.Equipment, error) {
	equipment, err := repo.FindByID(ctx, equipmentID)
	if err != nil {
		if errors.Is(err, reservationserrors.ErrEquipmentNotFound) {
			return nil, apperrors.NotFoundWithID("Equipment", equipmentID)
		}
		if errors.Is(err, reservationserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid equipment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve equipment", err)
	}
	return equipment, nil
}

func (s *reservationService) mergeReservationUpdates(existing *model.Reservation, updates *model.ReservationUpdate) *model.Reservation {
	merged := *existing

	if updates.StartTime != nil {
		merged.StartTime = *updates.StartTime
	}
	if updates.EndTime != nil {
		merged.EndTime = *updates.EndTime
	}
	if updates.RequesterName != "" {
		merged.RequesterName = updates.RequesterName
	}
	if updates.RequesterContact != "" {
		merged.RequesterContact = updates.RequesterContact
	}
	if updates.Purpose != "" {
		merged.Purpose = updates.Purpose
	}

	return &merged
}

func (s *reservationService) occupySlot(ctx context.Context, equipment *model.Equipment, decision *Availability, startTime, endTime time.Time) (string, error) {
	return OccupySlot(ctx, s.slotRepo, equipment, decision, startTime, endTime)
}

// OccupySlot joins the containing slot from the availability decision,
// or lazily opens a new slot spanning exactly the requested interval.
// Must run inside the transaction that writes the reservation.
func OccupySlot(ctx context.Context, slotRepo repository.TimeSlotRepository, equipment *model.Equipment, decision *Availability, startTime, endTime time.Time) (string, error) {
	if decision.Slot != nil {
		if err := slotRepo.IncrementCount(ctx, decision.Slot.ID); err != nil {
			if errors.Is(err, reservationserrors.ErrSlotFull) {
				return "", apperrors.ConflictWithOccupancy(
					"Time slot filled up while booking",
					decision.Slot.MaxSimultaneous,
					decision.Slot.MaxSimultaneous,
				)
			}
			return "", apperrors.Internal("Failed to join time slot", err)
		}
		return decision.Slot.ID, nil
	}

	slot := &model.TimeSlot{
		EquipmentID:     equipment.ID,
		StartTime:       startTime,
		EndTime:         endTime,
		CurrentCount:    1,
		MaxSimultaneous: equipment.Capacity(),
	}
	if err := slotRepo.Create(ctx, slot); err != nil {
		return "", apperrors.Internal("Failed to create time slot", err)
	}
	return slot.ID, nil
}

func (s *reservationService) acquireEquipmentLock(ctx context.Context, equipmentID string) (string, error) {
	return AcquireEquipmentLock(ctx, s.lockRepo, s.cfg, equipmentID)
}

// AcquireEquipmentLock takes the per-equipment advisory lock, retrying
// until the configured acquire timeout. A lock left behind by a dead
// holder is reaped once its TTL passes.
func AcquireEquipmentLock(ctx context.Context, lockRepo repository.EquipmentLockRepository, cfg *config.Config, equipmentID string) (string, error) {
	lockID := fmt.Sprintf("equipment_lock_%s", equipmentID)
	deadline := time.Now().Add(cfg.LockAcquireTimeout)

	for {
		lock := &model.EquipmentLock{
			ID:        lockID,
			ExpiresAt: time.Now().Add(cfg.LockTTL),
		}

		_, err := lockRepo.Create(ctx, lock)
		if err == nil {
			return lockID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Internal("Failed to acquire equipment lock", err)
		}

		stale, reapErr := lockRepo.DeleteExpired(ctx, lockID, time.Now())
		if reapErr != nil {
			return "", apperrors.Internal("Failed to reap stale equipment lock", reapErr)
		}
		if stale {
			cfg.Log.Warn("Reaped stale equipment lock", "lock_id", lockID)
			continue
		}

		if time.Now().After(deadline) {
			return "", apperrors.Unavailable("Equipment is busy with another booking request, try again shortly")
		}

		select {
		case <-ctx.Done():
			return "", apperrors.Timeout("Request cancelled while waiting for equipment lock")
		case <-time.After(cfg.LockRetryInterval):
		}
	}
}

func (s *reservationService) releaseEquipmentLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}

func conflictFromDecision(decision *Availability) error {
	if decision.CurrentCount > 0 && decision.MaxSimultaneous > 1 {
		return apperrors.ConflictWithOccupancy(decision.Reason, decision.CurrentCount, decision.MaxSimultaneous)
	}
	return apperrors.Conflict(decision.Reason)
}

// StatusForInterval derives the initial status from the clock.
// Backfilling a fully past interval is allowed and lands as expired.
func StatusForInterval(now, start, end time.Time) string {
	switch {
	case now.Before(start):
		return model.StatusConfirmed
	case now.Before(end):
		return model.StatusInUse
	default:
		return model.StatusExpired
	}
}

func diffReservations(oldRes, newRes *model.Reservation, actor string) []*model.AuditEntry {
	var entries []*model.AuditEntry

	add := func(field, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		entries = append(entries, &model.AuditEntry{
			ReservationID: oldRes.ID,
			Field:         field,
			OldValue:      oldValue,
			NewValue:      newValue,
			Actor:         actor,
		})
	}

	add("start_time", oldRes.StartTime.Format(time.RFC3339), newRes.StartTime.Format(time.RFC3339))
	add("end_time", oldRes.EndTime.Format(time.RFC3339), newRes.EndTime.Format(time.RFC3339))
	add("requester_name", oldRes.RequesterName, newRes.RequesterName)
	add("requester_contact", oldRes.RequesterContact, newRes.RequesterContact)
	add("purpose", oldRes.Purpose, newRes.Purpose)

	return entries
}

func translateLookupError(err error, resource, id string) error {
	if errors.Is(err, reservationserrors.ErrNotFound) {
		return apperrors.NotFoundWithID(resource, id)
	}
	if errors.Is(err, reservationserrors.ErrInvalidID) {
		return apperrors.InvalidInput(fmt.Sprintf("Invalid %s ID format", resource))
	}
	return apperrors.Internal(fmt.Sprintf("Failed to retrieve %s", resource), err)
}
