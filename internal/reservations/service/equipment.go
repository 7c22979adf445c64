package service

import (
	"context"
	"reservo/internal/reservations/repository"
	"reservo/pkg/config"
	apperrors "reservo/pkg/errors"
	"reservo/pkg/model"
	"reservo/pkg/sanitizer"
	"sync"
)

// EquipmentService manages the reservable-unit registry. It is
// deliberately small: equipment is seeded and listed, reservations do
// the interesting work.
type EquipmentService interface {
	Create(ctx context.Context, equipment *model.Equipment) error
	GetByID(ctx context.Context, id string) (*model.Equipment, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, int64, error)
}

type equipmentService struct {
	repo repository.EquipmentRepository
	cfg  *config.Config
}

func NewEquipmentService(repo repository.EquipmentRepository, cfg *config.Config) EquipmentService {
	return &equipmentService{repo: repo, cfg: cfg}
}

func (s *equipmentService) Create(ctx context.Context, equipment *model.Equipment) error {
	equipment.Name = sanitizer.TrimAndNormalize(equipment.Name)
	equipment.Category = sanitizer.SanitizeCategory(equipment.Category)
	equipment.Location = sanitizer.TrimAndNormalize(equipment.Location)

	if equipment.Name == "" {
		return apperrors.InvalidInput("Equipment name cannot be empty")
	}
	if equipment.AllowSimultaneous {
		equipment.MaxSimultaneous = sanitizer.NormalizeCapacity(equipment.MaxSimultaneous)
	} else {
		equipment.MaxSimultaneous = 1
	}

	if err := s.repo.Create(ctx, equipment); err != nil {
		return apperrors.Internal("Failed to create equipment", err)
	}

	s.cfg.Log.Info("Equipment created successfully",
		"id", equipment.ID,
		"name", equipment.Name,
		"allow_simultaneous", equipment.AllowSimultaneous,
		"max_simultaneous", equipment.MaxSimultaneous,
	)
	return nil
}

func (s *equipmentService) GetByID(ctx context.Context, id string) (*model.Equipment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Equipment ID cannot be empty")
	}

	equipment, err := FetchEquipment(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	return equipment, nil
}

func (s *equipmentService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Equipment, int64, error) {

	var count int64
	var equipment []*model.Equipment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count equipment", "error", errCount)
			errCount = apperrors.Internal("Failed to count equipment", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		equipment, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list equipment", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve equipment", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return equipment, count, nil
}
