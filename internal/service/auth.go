package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/security"
	"github.com/fitwell/fitwell-api/internal/storage"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// GoogleClaims is the subset of a verified Google ID token the service
// needs for the upsert.
type GoogleClaims struct {
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates a Google ID token. Declared as an interface
// so tests can avoid the network round trip.
type GoogleVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleClaims, error)
}

type googleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &googleVerifier{clientID: clientID}
}

func (g *googleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, g.clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to validate google id token: %w", err)
	}
	claims := &GoogleClaims{}
	if email, ok := payload.Claims["email"].(string); ok {
		claims.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		claims.Name = name
	}
	if picture, ok := payload.Claims["picture"].(string); ok {
		claims.Picture = picture
	}
	if claims.Email == "" {
		return nil, errors.New("google id token has no email claim")
	}
	return claims, nil
}

type AuthService struct {
	log      *slog.Logger
	userRepo storage.UserStorage
	verifier GoogleVerifier
	tokenTTL time.Duration
}

func NewAuthService(log *slog.Logger, userRepo storage.UserStorage, verifier GoogleVerifier, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		log:      log,
		userRepo: userRepo,
		verifier: verifier,
		tokenTTL: tokenTTL,
	}
}

type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, password string, address, phone *string) (string, *models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GoogleSignIn(ctx context.Context, rawToken string) (string, *models.User, error)
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
}

// Register creates a client account with a bcrypt-hashed password and
// returns a signed token along with the stored user.
func (a *AuthService) Register(ctx context.Context, name, email, password string, address, phone *string) (string, *models.User, error) {
	const op = "auth.Register"
	logger := a.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("registering user")

	if _, err := a.userRepo.GetUserByEmail(ctx, email); err == nil {
		logger.Warn("email already registered")
		return "", nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("failed to check email", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to check email: %w", op, err)
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("failed to hash password", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to hash password: %w", op, err)
	}

	user, err := a.userRepo.CreateUser(ctx, &models.User{
		Name:     name,
		Email:    email,
		PassHash: passHash,
		Address:  address,
		Phone:    phone,
		Role:     models.RoleClient,
	})
	if err != nil {
		logger.Error("failed to create user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to create user: %w", op, err)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user registered", slog.Int64("userID", user.ID))
	return token, user, nil
}

// Login checks the password against the stored hash. Accounts created
// through Google sign-in have no hash and fail closed.
func (a *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	const op = "auth.Login"
	logger := a.log.With(slog.String("op", op), slog.String("email", email))
	logger.Info("checking user")

	user, err := a.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			logger.Warn("user not found")
			return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		logger.Error("failed to get user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}

	if len(user.PassHash) == 0 {
		logger.Warn("account has no password")
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		logger.Warn("invalid password")
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in successfully", slog.Int64("userID", user.ID))
	return token, user, nil
}

// GoogleSignIn verifies the Google ID token and upserts the account
// keyed by email, then issues the same JWT password login issues.
func (a *AuthService) GoogleSignIn(ctx context.Context, rawToken string) (string, *models.User, error) {
	const op = "auth.GoogleSignIn"
	logger := a.log.With(slog.String("op", op))
	logger.Info("verifying google id token")

	claims, err := a.verifier.Verify(ctx, rawToken)
	if err != nil {
		logger.Warn("google token verification failed", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	var picture *string
	if claims.Picture != "" {
		picture = &claims.Picture
	}
	user, err := a.userRepo.UpsertGoogleUser(ctx, claims.Name, claims.Email, picture)
	if err != nil {
		logger.Error("failed to upsert user", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to upsert user: %w", op, err)
	}

	token, err := security.NewToken(ctx, user, a.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return "", nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("google sign-in completed", slog.Int64("userID", user.ID))
	return token, user, nil
}

func (a *AuthService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	const op = "auth.GetProfile"

	user, err := a.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		a.log.Error("failed to get user", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to get user: %w", op, err)
	}
	return user, nil
}
