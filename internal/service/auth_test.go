package service_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

type fakeUserRepo struct {
	users map[string]*models.User // key: email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

func (f *fakeUserRepo) UpsertGoogleUser(ctx context.Context, name, email string, picture *string) (*models.User, error) {
	if user, ok := f.users[email]; ok {
		user.Name = name
		if picture != nil {
			user.Picture = picture
		}
		return user, nil
	}
	user := &models.User{
		ID:      int64(len(f.users) + 1),
		Name:    name,
		Email:   email,
		Role:    models.RoleClient,
		Picture: picture,
	}
	f.users[email] = user
	return user, nil
}

type fakeGoogleVerifier struct {
	claims *service.GoogleClaims
	err    error
}

func (f *fakeGoogleVerifier) Verify(ctx context.Context, rawToken string) (*service.GoogleClaims, error) {
	return f.claims, f.err
}

func TestRegister_NewUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	repo := newFakeUserRepo()
	authSvc := service.NewAuthService(testLogger(), repo, &fakeGoogleVerifier{}, 60*time.Minute)
	ctx := context.Background()

	token, user, err := authSvc.Register(ctx, "Ana", "ana@example.com", "password123", nil, nil)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, models.RoleClient, user.Role)

	stored, err := repo.GetUserByEmail(ctx, "ana@example.com")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", string(stored.PassHash), "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword(stored.PassHash, []byte("password123")))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	repo := newFakeUserRepo()
	repo.users["ana@example.com"] = &models.User{ID: 1, Email: "ana@example.com"}
	authSvc := service.NewAuthService(testLogger(), repo, &fakeGoogleVerifier{}, 60*time.Minute)

	token, user, err := authSvc.Register(context.Background(), "Ana", "ana@example.com", "password123", nil, nil)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrEmailTaken))
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestLogin_CorrectPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	repo := newFakeUserRepo()
	repo.users["ana@example.com"] = &models.User{
		ID:       1,
		Email:    "ana@example.com",
		PassHash: hashed,
		Role:     models.RoleClient,
	}
	authSvc := service.NewAuthService(testLogger(), repo, &fakeGoogleVerifier{}, 60*time.Minute)

	token, user, err := authSvc.Login(context.Background(), "ana@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(1), user.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	assert.NoError(t, err)

	repo := newFakeUserRepo()
	repo.users["ana@example.com"] = &models.User{ID: 1, Email: "ana@example.com", PassHash: hashed}
	authSvc := service.NewAuthService(testLogger(), repo, &fakeGoogleVerifier{}, 60*time.Minute)

	token, user, err := authSvc.Login(context.Background(), "ana@example.com", "wrongpassword")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestLogin_PasswordlessAccount(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	// created through Google sign-in, no password hash stored
	repo := newFakeUserRepo()
	repo.users["ana@example.com"] = &models.User{ID: 1, Email: "ana@example.com"}
	authSvc := service.NewAuthService(testLogger(), repo, &fakeGoogleVerifier{}, 60*time.Minute)

	_, _, err := authSvc.Login(context.Background(), "ana@example.com", "anything")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
}

func TestGoogleSignIn_NewUser(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	repo := newFakeUserRepo()
	verifier := &fakeGoogleVerifier{claims: &service.GoogleClaims{
		Email:   "ana@example.com",
		Name:    "Ana",
		Picture: "https://example.com/ana.png",
	}}
	authSvc := service.NewAuthService(testLogger(), repo, verifier, 60*time.Minute)

	token, user, err := authSvc.GoogleSignIn(context.Background(), "raw-google-token")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "Ana", user.Name)
	assert.Equal(t, models.RoleClient, user.Role)
	assert.NotNil(t, user.Picture)
	assert.Nil(t, user.PassHash)
}

func TestGoogleSignIn_InvalidToken(t *testing.T) {
	os.Setenv("JWT_SECRET", "testsecret")
	defer os.Unsetenv("JWT_SECRET")

	verifier := &fakeGoogleVerifier{err: errors.New("bad token")}
	authSvc := service.NewAuthService(testLogger(), newFakeUserRepo(), verifier, 60*time.Minute)

	token, user, err := authSvc.GoogleSignIn(context.Background(), "garbage")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidCredentials))
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestGetProfile_NotFound(t *testing.T) {
	authSvc := service.NewAuthService(testLogger(), newFakeUserRepo(), &fakeGoogleVerifier{}, 60*time.Minute)

	_, err := authSvc.GetProfile(context.Background(), 999)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrUserNotFound))
}
