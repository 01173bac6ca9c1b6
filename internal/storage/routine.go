package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitwell/fitwell-api/internal/domain/models"
)

var ErrRoutineNotFound = errors.New("routine not found")

type RoutineStorage interface {
	ListRoutines(ctx context.Context) ([]*models.Routine, error)
	GetRoutineByID(ctx context.Context, id int64) (*models.Routine, error)
	CreateRoutine(ctx context.Context, rt *models.Routine) (*models.Routine, error)
	UpdateRoutine(ctx context.Context, rt *models.Routine) error
	DeleteRoutine(ctx context.Context, id int64) error
}

type routineRepository struct {
	db *sql.DB
}

func NewRoutineRepository(db *sql.DB) RoutineStorage {
	return &routineRepository{db: db}
}

func (r *routineRepository) ListRoutines(ctx context.Context) ([]*models.Routine, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, muscle, description, video_url FROM rutinas ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query routines: %w", err)
	}
	defer rows.Close()

	var routines []*models.Routine
	for rows.Next() {
		rt := &models.Routine{}
		if err := rows.Scan(&rt.ID, &rt.Muscle, &rt.Description, &rt.VideoURL); err != nil {
			return nil, fmt.Errorf("failed to scan routine: %w", err)
		}
		routines = append(routines, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return routines, nil
}

func (r *routineRepository) GetRoutineByID(ctx context.Context, id int64) (*models.Routine, error) {
	rt := &models.Routine{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, muscle, description, video_url FROM rutinas WHERE id = $1", id)
	if err := row.Scan(&rt.ID, &rt.Muscle, &rt.Description, &rt.VideoURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRoutineNotFound
		}
		return nil, err
	}
	return rt, nil
}

func (r *routineRepository) CreateRoutine(ctx context.Context, rt *models.Routine) (*models.Routine, error) {
	err := r.db.QueryRowContext(ctx,
		"INSERT INTO rutinas (muscle, description, video_url) VALUES ($1, $2, $3) RETURNING id",
		rt.Muscle, rt.Description, rt.VideoURL,
	).Scan(&rt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create routine: %w", err)
	}
	return rt, nil
}

func (r *routineRepository) UpdateRoutine(ctx context.Context, rt *models.Routine) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE rutinas SET muscle = $1, description = $2, video_url = $3 WHERE id = $4",
		rt.Muscle, rt.Description, rt.VideoURL, rt.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoutineNotFound
	}
	return nil
}

func (r *routineRepository) DeleteRoutine(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM rutinas WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrRoutineNotFound
	}
	return nil
}
