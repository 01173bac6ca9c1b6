package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/storage"
)

const userCols = "id, nombre, email, password, direccion, telefono, rol, picture, created_at"

func userRow(id int64, email string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nombre", "email", "password", "direccion", "telefono", "rol", "picture", "created_at"}).
		AddRow(id, "Ana", email, []byte("hashed"), nil, nil, "cliente", nil, time.Now())
}

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()
	email := "ana@example.com"

	query := regexp.QuoteMeta("SELECT " + userCols + " FROM usuarios WHERE email = $1")
	mock.ExpectQuery(query).WithArgs(email).WillReturnRows(userRow(1, email))

	user, err := repo.GetUserByEmail(ctx, email)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, email, user.Email)
	assert.Equal(t, "cliente", user.Role)
	assert.Nil(t, user.Address)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	query := regexp.QuoteMeta("SELECT " + userCols + " FROM usuarios WHERE email = $1")
	mock.ExpectQuery(query).WithArgs("nadie@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "email", "password", "direccion", "telefono", "rol", "picture", "created_at"}))

	user, err := repo.GetUserByEmail(context.Background(), "nadie@example.com")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	user := &models.User{
		Name:     "Ana",
		Email:    "ana@example.com",
		PassHash: []byte("hashed"),
		Role:     models.RoleClient,
	}

	query := regexp.QuoteMeta(`INSERT INTO usuarios (nombre, email, password, direccion, telefono, rol)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`)
	mock.ExpectQuery(query).
		WithArgs(user.Name, user.Email, user.PassHash, nil, nil, user.Role).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	created, err := repo.CreateUser(context.Background(), user)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("UPDATE productos SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(2, int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.DecrementStockTx(ctx, tx, 1, 2)
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementStockTx_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	// Requested quantity above current stock touches no row.
	query := regexp.QuoteMeta("UPDATE productos SET stock = stock - $1 WHERE id = $2 AND stock >= $1")
	mock.ExpectExec(query).WithArgs(10, int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.DecrementStockTx(ctx, tx, 1, 10)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrInsufficientStock))

	mock.ExpectRollback()
	assert.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("INSERT INTO pedidos (usuario_id, total) VALUES ($1, $2) RETURNING id, estado, fecha")
	mock.ExpectQuery(query).WithArgs(int64(3), 39.98).
		WillReturnRows(sqlmock.NewRows([]string{"id", "estado", "fecha"}).AddRow(11, "pendiente", now))

	order, err := repo.CreateOrderTx(ctx, tx, 3, 39.98)
	assert.NoError(t, err)
	assert.Equal(t, int64(11), order.ID)
	assert.Equal(t, int64(3), order.UserID)
	assert.Equal(t, 39.98, order.Total)
	assert.Equal(t, models.OrderPending, order.Status)
	assert.Equal(t, now, order.Date)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddOrderItemTx_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)

	mock.ExpectBegin()
	tx, err := db.Begin()
	assert.NoError(t, err)

	query := regexp.QuoteMeta("INSERT INTO pedido_items (pedido_id, producto_id, cantidad) VALUES ($1, $2, $3)")
	mock.ExpectExec(query).WithArgs(int64(11), int64(1), 2).WillReturnResult(sqlmock.NewResult(1, 1))

	err = repo.AddOrderItemTx(context.Background(), tx, 11, models.OrderItem{ProductID: 1, Quantity: 2})
	assert.NoError(t, err)

	mock.ExpectCommit()
	assert.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	now := time.Now()

	query := regexp.QuoteMeta("SELECT id, usuario_id, total, estado, fecha FROM pedidos WHERE usuario_id = $1 ORDER BY fecha DESC")
	rows := sqlmock.NewRows([]string{"id", "usuario_id", "total", "estado", "fecha"}).
		AddRow(11, 3, 39.98, "pendiente", now).
		AddRow(9, 3, 12.50, "completado", now.Add(-time.Hour))
	mock.ExpectQuery(query).WithArgs(int64(3)).WillReturnRows(rows)

	orders, err := repo.GetOrdersByUserID(context.Background(), 3)
	assert.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, int64(11), orders[0].ID)
	assert.Equal(t, 39.98, orders[0].Total)
	assert.Equal(t, "completado", orders[1].Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	query := regexp.QuoteMeta("SELECT id, usuario_id, total, estado, fecha FROM pedidos WHERE usuario_id = $1 ORDER BY fecha DESC")
	mock.ExpectQuery(query).WithArgs(int64(3)).WillReturnError(errors.New("db error"))

	orders, err := repo.GetOrdersByUserID(context.Background(), 3)
	assert.Error(t, err)
	assert.Nil(t, orders)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	rows := sqlmock.NewRows([]string{"id", "nombre", "descripcion", "precio", "stock", "categoria_id", "nombre", "imagen", "destacado", "created_at"}).
		AddRow(1, "Mancuernas 5kg", "Par de mancuernas", 19.99, 5, 1, "Equipamiento", "abc.png", true, time.Now())
	mock.ExpectQuery("SELECT p\\.id, p\\.nombre, .+ FROM productos p").
		WithArgs(int64(1)).WillReturnRows(rows)

	p, err := repo.GetProductByID(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, "Mancuernas 5kg", p.Name)
	assert.Equal(t, 19.99, p.Price)
	assert.Equal(t, 5, p.Stock)
	assert.Equal(t, "Equipamiento", p.CategoryName)
	assert.True(t, p.Featured)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	mock.ExpectQuery("SELECT p\\.id, p\\.nombre, .+ FROM productos p").
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "nombre", "descripcion", "precio", "stock", "categoria_id", "nombre", "imagen", "destacado", "created_at"}))

	p, err := repo.GetProductByID(context.Background(), 99)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))
	assert.Nil(t, p)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateProduct_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	p := &models.Product{ID: 99, Name: "X", Price: 1, Stock: 1, CategoryID: 1}

	mock.ExpectExec("UPDATE productos").WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateProduct(context.Background(), p)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrProductNotFound))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProduct_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM productos WHERE id = $1")).
		WithArgs(int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.DeleteProduct(context.Background(), 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRoutineByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRoutineRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, muscle, description, video_url FROM rutinas WHERE id = $1")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "muscle", "description", "video_url"}))

	rt, err := repo.GetRoutineByID(context.Background(), 42)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrRoutineNotFound))
	assert.Nil(t, rt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRoutine_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewRoutineRepository(db)
	rt := &models.Routine{
		Muscle:      "Pecho",
		Description: "Press de banca y aperturas",
		VideoURL:    "https://res.cloudinary.com/fitwell/video/pecho.mp4",
	}

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO rutinas (muscle, description, video_url) VALUES ($1, $2, $3) RETURNING id")).
		WithArgs(rt.Muscle, rt.Description, rt.VideoURL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	created, err := repo.CreateRoutine(context.Background(), rt)
	assert.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
