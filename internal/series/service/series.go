package service

import (
	"context"
	"errors"
	"fmt"
	"reservo/internal/notifier"
	reservationrepo "reservo/internal/reservations/repository"
	resservice "reservo/internal/reservations/service"
	serieserrors "reservo/internal/series/errors"
	"reservo/internal/series/repository"
	"reservo/internal/series/validator"
	"reservo/pkg/clock"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type SeriesService interface {
	Create(ctx context.Context, series *model.RecurringSeries) (*model.ExpansionResult, error)
	GetByID(ctx context.Context, id string) (*model.RecurringSeries, error)
	GetByCode(ctx context.Context, code string) (*model.RecurringSeries, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.RecurringSeries, int64, error)
	GetChildren(ctx context.Context, id string, limit int, offset int64) ([]*model.Reservation, int64, error)
	Update(ctx context.Context, id string, updates *model.RecurringSeriesUpdate) (*model.ExpansionResult, error)
	Cancel(ctx context.Context, id string) (*model.RecurringSeries, int64, error)
}

type seriesService struct {
	repo          repository.SeriesRepository
	resRepo       reservationrepo.ReservationRepository
	slotRepo      reservationrepo.TimeSlotRepository
	equipmentRepo reservationrepo.EquipmentRepository
	lockRepo      reservationrepo.EquipmentLockRepository
	resService    resservice.ReservationService
	validator     *validator.SeriesValidator
	ids           *resservice.IdentifierGenerator
	events        notifier.Notifier
	cfg           *config.Config
	clock         clock.Clock
}

func NewSeriesService(
	repo repository.SeriesRepository,
	resRepo reservationrepo.ReservationRepository,
	slotRepo reservationrepo.TimeSlotRepository,
	equipmentRepo reservationrepo.EquipmentRepository,
	lockRepo reservationrepo.EquipmentLockRepository,
	resService resservice.ReservationService,
	seriesValidator *validator.SeriesValidator,
	ids *resservice.IdentifierGenerator,
	events notifier.Notifier,
	cfg *config.Config,
	clk clock.Clock,
) SeriesService {
	return &seriesService{
		repo:          repo,
		resRepo:       resRepo,
		slotRepo:      slotRepo,
		equipmentRepo: equipmentRepo,
		lockRepo:      lockRepo,
		resService:    resService,
		validator:     seriesValidator,
		ids:           ids,
		events:        events,
		cfg:           cfg,
		clock:         clk,
	}
}

// Create expands the series into child reservations. A date that
// conflicts is skipped and recorded; the series itself never fails
// because one occurrence clashed.
func (s *seriesService) Create(ctx context.Context, series *model.RecurringSeries) (*model.ExpansionResult, error) {
	s.sanitize(series)
	if series.Status == "" {
		series.Status = model.SeriesStatusActive
	}
	if err := s.validate(series); err != nil {
		return nil, err
	}
	if err := s.checkSpan(series.StartDate, series.EndDate); err != nil {
		return nil, err
	}

	equipment, err := resservice.FetchEquipment(ctx, s.equipmentRepo, series.EquipmentID)
	if err != nil {
		return nil, err
	}
	if !equipment.Active {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Equipment %q is not active", equipment.Name))
	}

	code, err := s.ids.NextReservationCode(ctx)
	if err != nil {
		return nil, err
	}
	series.ReservationCode = code

	lockID, err := resservice.AcquireEquipmentLock(ctx, s.lockRepo, s.cfg, series.EquipmentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release equipment lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var result *model.ExpansionResult
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Create(sessCtx, series); err != nil {
			return apperrors.Internal("Failed to create series", err)
		}

		expansion, err := s.expand(sessCtx, series, equipment)
		if err != nil {
			return err
		}
		result = expansion

		series.PlannedCount = expansion.Planned
		series.CreatedCount = expansion.Created
		series.SkippedCount = expansion.Skipped
		series.SkippedDates = expansion.SkippedDates
		if err := s.repo.UpdateBookkeeping(sessCtx, series.ID, expansion.Planned, expansion.Created, expansion.Skipped, expansion.SkippedDates); err != nil {
			return apperrors.Internal("Failed to persist series bookkeeping", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create series",
			"equipment_id", series.EquipmentID,
			"pattern", series.Pattern,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Series created successfully",
		"id", series.ID,
		"reservation_code", series.ReservationCode,
		"planned", result.Planned,
		"created", result.Created,
		"skipped", result.Skipped,
	)
	s.events.SeriesCreated(ctx, series, result)
	return result, nil
}

// expand walks the date range, booking every matching occurrence that
// passes the conflict check. Caller holds the equipment lock and the
// enclosing transaction.
func (s *seriesService) expand(ctx context.Context, series *model.RecurringSeries, equipment *model.Equipment) (*model.ExpansionResult, error) {
	startHour, startMin, err := parseTimeOfDay(series.StartTimeOfDay)
	if err != nil {
		return nil, apperrors.InvalidInterval(err.Error())
	}
	endHour, endMin, err := parseTimeOfDay(series.EndTimeOfDay)
	if err != nil {
		return nil, apperrors.InvalidInterval(err.Error())
	}

	base := s.ids.NewSeriesBase()
	result := &model.ExpansionResult{}
	now := s.clock.Now()

	for index, date := range matchingDates(series) {
		result.Planned++

		start := time.Date(date.Year(), date.Month(), date.Day(), startHour, startMin, 0, 0, time.UTC)
		end := time.Date(date.Year(), date.Month(), date.Day(), endHour, endMin, 0, 0, time.UTC)

		decision, err := s.resService.CheckAvailability(ctx, series.EquipmentID, start, end)
		if err != nil {
			return nil, err
		}
		if !decision.Available {
			result.Skipped++
			result.SkippedDates = append(result.SkippedDates, date.Format("2006-01-02"))
			continue
		}

		number, err := s.ids.NextChildNumber(ctx, date, base, index+1)
		if err != nil {
			return nil, err
		}

		child := &model.Reservation{
			ReservationNumber: number,
			ReservationCode:   series.ReservationCode,
			EquipmentID:       series.EquipmentID,
			SeriesID:          series.ID,
			StartTime:         start,
			EndTime:           end,
			Status:            resservice.StatusForInterval(now, start, end),
			RequesterName:     series.RequesterName,
			RequesterContact:  series.RequesterContact,
			Purpose:           series.Purpose,
		}

		if equipment.AllowSimultaneous {
			slotID, err := resservice.OccupySlot(ctx, s.slotRepo, equipment, decision, start, end)
			if err != nil {
				return nil, err
			}
			child.TimeSlotID = slotID
		}

		if err := s.resRepo.Create(ctx, child); err != nil {
			return nil, apperrors.Internal("Failed to create series child", err)
		}
		result.Created++
	}

	return result, nil
}

func (s *seriesService) GetByID(ctx context.Context, id string) (*model.RecurringSeries, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Series ID cannot be empty")
	}

	series, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateSeriesError(err, id)
	}
	return series, nil
}

func (s *seriesService) GetByCode(ctx context.Context, code string) (*model.RecurringSeries, error) {
	if code == "" {
		return nil, apperrors.InvalidInput("Series code cannot be empty")
	}

	series, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, translateSeriesError(err, code)
	}
	return series, nil
}

func (s *seriesService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.RecurringSeries, int64, error) {

	var count int64
	var series []*model.RecurringSeries
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count series", "error", errCount)
			errCount = apperrors.Internal("Failed to count series", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		series, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list series", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve series", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return series, count, nil
}

func (s *seriesService) GetChildren(ctx context.Context, id string, limit int, offset int64) ([]*model.Reservation, int64, error) {
	if id == "" {
		return nil, 0, apperrors.InvalidInput("Series ID cannot be empty")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, 0, translateSeriesError(err, id)
	}

	var count int64
	var children []*model.Reservation
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.resRepo.CountBySeries(ctx, id)
		if err != nil {
			s.cfg.Log.Error("Failed to count series children", "series_id", id, "error", err)
			errCount = apperrors.Internal("Failed to count series children", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		children, err = s.resRepo.FindBySeries(ctx, id, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list series children", "series_id", id, "error", err)
			errFind = apperrors.Internal("Failed to retrieve series children", err)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return children, count, nil
}

// Update reshapes the series going forward: confirmed children dated
// today or later are deleted (their slots released), then the new
// parameters are expanded over the new range. Past children are left
// exactly as they ran.
func (s *seriesService) Update(ctx context.Context, id string, updates *model.RecurringSeriesUpdate) (*model.ExpansionResult, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Series ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateSeriesError(err, id)
	}
	if existing.Status == model.SeriesStatusCancelled {
		return nil, apperrors.Conflict("Cannot modify a cancelled series")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Series update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	merged := s.mergeSeriesUpdates(existing, updates)
	s.sanitize(merged)
	if err := s.validate(merged); err != nil {
		return nil, err
	}
	if err := s.checkSpan(merged.StartDate, merged.EndDate); err != nil {
		return nil, err
	}

	equipment, err := resservice.FetchEquipment(ctx, s.equipmentRepo, merged.EquipmentID)
	if err != nil {
		return nil, err
	}

	lockID, err := resservice.AcquireEquipmentLock(ctx, s.lockRepo, s.cfg, merged.EquipmentID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.lockRepo.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release equipment lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	var result *model.ExpansionResult
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.removeFutureChildren(sessCtx, id); err != nil {
			return err
		}

		// Future of the merged range only: dates already past keep
		// their original children.
		expandFrom := *merged
		today := startOfDay(s.clock.Now())
		if expandFrom.StartDate.Before(today) {
			expandFrom.StartDate = today
		}

		expansion, err := s.expand(sessCtx, &expandFrom, equipment)
		if err != nil {
			return err
		}
		result = expansion

		merged.PlannedCount = expansion.Planned
		merged.CreatedCount = expansion.Created
		merged.SkippedCount = expansion.Skipped
		merged.SkippedDates = expansion.SkippedDates
		if _, err := s.repo.Update(sessCtx, id, merged); err != nil {
			return apperrors.Internal("Failed to update series", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to update series", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Series updated successfully",
		"id", id,
		"planned", result.Planned,
		"created", result.Created,
		"skipped", result.Skipped,
	)
	s.events.SeriesUpdated(ctx, merged)
	return result, nil
}

func (s *seriesService) removeFutureChildren(ctx context.Context, seriesID string) error {
	today := startOfDay(s.clock.Now())
	children, err := s.resRepo.FindFutureBySeries(ctx, seriesID, today, []string{model.StatusConfirmed})
	if err != nil {
		return apperrors.Internal("Failed to find future series children", err)
	}

	for _, child := range children {
		if child.TimeSlotID != "" {
			if err := s.slotRepo.DecrementCount(ctx, child.TimeSlotID); err != nil {
				return apperrors.Internal("Failed to release child time slot", err)
			}
		}
		if err := s.resRepo.Delete(ctx, child.ID); err != nil {
			return apperrors.Internal("Failed to delete series child", err)
		}
	}
	return nil
}

// Cancel marks the series cancelled and batch-cancels every child
// still confirmed. Children already cancelled or expired are left
// alone.
func (s *seriesService) Cancel(ctx context.Context, id string) (*model.RecurringSeries, int64, error) {
	if id == "" {
		return nil, 0, apperrors.InvalidInput("Series ID cannot be empty")
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, 0, translateSeriesError(err, id)
	}
	if existing.Status == model.SeriesStatusCancelled {
		return nil, 0, apperrors.AlreadyCancelled("Series")
	}

	var cancelled int64
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		children, err := s.resRepo.FindFutureBySeries(sessCtx, id, time.Time{}, []string{model.StatusConfirmed})
		if err != nil {
			return apperrors.Internal("Failed to find series children", err)
		}

		for _, child := range children {
			if err := s.resRepo.UpdateStatus(sessCtx, child.ID, model.StatusCancelled, false); err != nil {
				return apperrors.Internal("Failed to cancel series child", err)
			}
			if child.TimeSlotID != "" {
				if err := s.slotRepo.DecrementCount(sessCtx, child.TimeSlotID); err != nil {
					return apperrors.Internal("Failed to release child time slot", err)
				}
			}
			cancelled++
		}

		if err := s.repo.UpdateStatus(sessCtx, id, model.SeriesStatusCancelled); err != nil {
			return apperrors.Internal("Failed to cancel series", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel series", "id", id, "error", err)
		return nil, 0, err
	}

	existing.Status = model.SeriesStatusCancelled
	s.cfg.Log.Info("Series cancelled successfully",
		"id", id,
		"cancelled_children", cancelled,
	)
	s.events.SeriesCancelled(ctx, existing, cancelled)
	return existing, cancelled, nil
}

// --- Helpers ---

func (s *seriesService) sanitize(series *model.RecurringSeries) {
	series.RequesterName = sanitizer.NormalizeName(series.RequesterName)
	series.RequesterContact = sanitizer.SanitizeContact(series.RequesterContact)
	series.Purpose = sanitizer.NormalizePurpose(series.Purpose)
	series.Weekdays = sanitizer.NormalizeIntSlice(series.Weekdays)
	series.DaysOfMonth = sanitizer.NormalizeIntSlice(series.DaysOfMonth)
}

func (s *seriesService) validate(series *model.RecurringSeries) error {
	if err := s.validator.Validate(series); err != nil {
		s.cfg.Log.Warn("Series validation failed", "error", err)
		return apperrors.Validation("Series validation failed", map[string]any{"error": err.Error()})
	}
	return nil
}

func (s *seriesService) checkSpan(startDate, endDate time.Time) error {
	spanDays := int(endDate.Sub(startDate).Hours()/24) + 1
	if spanDays > s.cfg.MaxSeriesSpanDays {
		return apperrors.InvalidInterval(fmt.Sprintf(
			"Series spans %d days, maximum is %d", spanDays, s.cfg.MaxSeriesSpanDays,
		))
	}
	return nil
}

func (s *seriesService) mergeSeriesUpdates(existing *model.RecurringSeries, updates *model.RecurringSeriesUpdate) *model.RecurringSeries {
	merged := *existing

	if updates.Pattern != "" {
		merged.Pattern = updates.Pattern
	}
	if updates.Weekdays != nil {
		merged.Weekdays = *updates.Weekdays
	}
	if updates.DaysOfMonth != nil {
		merged.DaysOfMonth = *updates.DaysOfMonth
	}
	if updates.StartDate != nil {
		merged.StartDate = *updates.StartDate
	}
	if updates.EndDate != nil {
		merged.EndDate = *updates.EndDate
	}
	if updates.StartTimeOfDay != "" {
		merged.StartTimeOfDay = updates.StartTimeOfDay
	}
	if updates.EndTimeOfDay != "" {
		merged.EndTimeOfDay = updates.EndTimeOfDay
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

// matchingDates lists every date in [StartDate, EndDate] the pattern
// selects. Dates the pattern skips are not occurrences and are never
// counted as planned.
func matchingDates(series *model.RecurringSeries) []time.Time {
	weekdaySet := map[int]bool{}
	for _, d := range series.Weekdays {
		weekdaySet[d] = true
	}
	daySet := map[int]bool{}
	for _, d := range series.DaysOfMonth {
		daySet[d] = true
	}

	var dates []time.Time
	start := startOfDay(series.StartDate)
	end := startOfDay(series.EndDate)

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		switch series.Pattern {
		case model.PatternDaily:
			dates = append(dates, date)
		case model.PatternWeekly:
			if weekdaySet[int(date.Weekday())] {
				dates = append(dates, date)
			}
		case model.PatternMonthly:
			if daySet[date.Day()] {
				dates = append(dates, date)
			}
		}
	}
	return dates
}

func parseTimeOfDay(value string) (hour, minute int, err error) {
	if _, parseErr := fmt.Sscanf(value, "%d:%d", &hour, &minute); parseErr != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", value)
	}
	return hour, minute, nil
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func translateSeriesError(err error, id string) error {
	if errors.Is(err, serieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Series", id)
	}
	if errors.Is(err, serieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid series ID format")
	}
	return apperrors.Internal("Failed to retrieve series", err)
}
