package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fitwell/fitwell-api/internal/domain/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserStorage interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// UpsertGoogleUser inserts a user keyed by email or refreshes
	// nombre/picture on the existing row. Used by federated sign-in.
	UpsertGoogleUser(ctx context.Context, name, email string, picture *string) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

const userColumns = "id, nombre, email, password, direccion, telefono, rol, picture, created_at"

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	if err := row.Scan(&user.ID, &user.Name, &user.Email, &user.PassHash,
		&user.Address, &user.Phone, &user.Role, &user.Picture, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE email = $1", email)
	return scanUser(row)
}

func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM usuarios WHERE id = $1", id)
	return scanUser(row)
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var id int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO usuarios (nombre, email, password, direccion, telefono, rol)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		user.Name, user.Email, user.PassHash, user.Address, user.Phone, user.Role,
	).Scan(&id)
	if err != nil {
		return nil, err
	}
	user.ID = id
	return user, nil
}

func (r *userRepository) UpsertGoogleUser(ctx context.Context, name, email string, picture *string) (*models.User, error) {
	// COALESCE keeps an already stored picture when Google sends none.
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO usuarios (nombre, email, rol, picture)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE
		 SET nombre = EXCLUDED.nombre,
		     picture = COALESCE(EXCLUDED.picture, usuarios.picture)
		 RETURNING `+userColumns,
		name, email, models.RoleClient, picture)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert google user: %w", err)
	}
	return user, nil
}
