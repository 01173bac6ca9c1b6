package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/storage"
)

type RoutineService interface {
	List(ctx context.Context) ([]*models.Routine, error)
	Get(ctx context.Context, id int64) (*models.Routine, error)
	Create(ctx context.Context, rt *models.Routine) (*models.Routine, error)
	Update(ctx context.Context, rt *models.Routine) (*models.Routine, error)
	Delete(ctx context.Context, id int64) error
}

type routineService struct {
	log         *slog.Logger
	routineRepo storage.RoutineStorage
}

func NewRoutineService(log *slog.Logger, routineRepo storage.RoutineStorage) RoutineService {
	return &routineService{log: log, routineRepo: routineRepo}
}

func (s *routineService) List(ctx context.Context) ([]*models.Routine, error) {
	const op = "service.RoutineService.List"

	routines, err := s.routineRepo.ListRoutines(ctx)
	if err != nil {
		s.log.Error("failed to list routines", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return routines, nil
}

func (s *routineService) Get(ctx context.Context, id int64) (*models.Routine, error) {
	const op = "service.RoutineService.Get"

	routine, err := s.routineRepo.GetRoutineByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return routine, nil
}

func (s *routineService) Create(ctx context.Context, rt *models.Routine) (*models.Routine, error) {
	const op = "service.RoutineService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("muscle", rt.Muscle))
	logger.Info("creating routine")

	created, err := s.routineRepo.CreateRoutine(ctx, rt)
	if err != nil {
		logger.Error("failed to create routine", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("routine created", slog.Int64("routineID", created.ID))
	return created, nil
}

func (s *routineService) Update(ctx context.Context, rt *models.Routine) (*models.Routine, error) {
	const op = "service.RoutineService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("routineID", rt.ID))
	logger.Info("updating routine")

	if err := s.routineRepo.UpdateRoutine(ctx, rt); err != nil {
		logger.Error("failed to update routine", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rt, nil
}

func (s *routineService) Delete(ctx context.Context, id int64) error {
	const op = "service.RoutineService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("routineID", id))
	logger.Info("deleting routine")

	if err := s.routineRepo.DeleteRoutine(ctx, id); err != nil {
		logger.Error("failed to delete routine", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
