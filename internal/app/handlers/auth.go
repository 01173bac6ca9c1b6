package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/fitwell/fitwell-api/internal/security/jwtmiddleware"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

var validate = validator.New()

// RegisterRequest holds the registration payload with validation tags.
type RegisterRequest struct {
	Name     string  `json:"nombre" validate:"required"`
	Email    string  `json:"email" validate:"required,email"`
	Password string  `json:"password" validate:"required,min=8"`
	Address  *string `json:"direccion"`
	Phone    *string `json:"telefono"`
}

// registerErrorMessage maps a validation failure to the message the
// storefront displays for that field.
func registerErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch {
		case fe.Field() == "Password" && fe.Tag() == "min":
			return "La contraseña debe tener al menos 8 caracteres"
		case fe.Field() == "Email" && fe.Tag() == "email":
			return "El formato del email no es válido"
		}
	}
	return "Nombre, email y contraseña son obligatorios"
}

type authResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token"`
	User    any    `json:"usuario"`
}

// RegisterHandler handles POST /api/auth/registro.
func RegisterHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.RegisterHandler"
		logger := log.With(slog.String("op", op))

		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Nombre, email y contraseña son obligatorios")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, registerErrorMessage(err))
			return
		}

		token, user, err := authService.Register(r.Context(), req.Name, req.Email, req.Password, req.Address, req.Phone)
		if err != nil {
			if errors.Is(err, service.ErrEmailTaken) {
				writeError(w, http.StatusBadRequest, "El email ya está registrado")
				return
			}
			logger.Error("registration failed", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			Success: true,
			Message: "¡Registro exitoso! Redirigiendo al login...",
			Token:   token,
			User:    user,
		})
	}
}

// LoginRequest holds the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginHandler handles POST /api/auth/login.
func LoginHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.LoginHandler"
		logger := log.With(slog.String("op", op))

		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Email y contraseña son obligatorios")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Email y contraseña son obligatorios")
			return
		}

		token, user, err := authService.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
				return
			}
			logger.Error("login failed", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Token:   token,
			User:    user,
		})
	}
}

// GoogleRequest carries the raw Google ID token from the sign-in button.
type GoogleRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// GoogleAuthHandler handles POST /api/auth/google. The verified token is
// exchanged for the same JWT a password login issues.
func GoogleAuthHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GoogleAuthHandler"
		logger := log.With(slog.String("op", op))

		var req GoogleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Falta el idToken")
			return
		}

		if err := validate.Struct(req); err != nil {
			logger.Warn("invalid request: validation error", slog.Any("error", err))
			writeError(w, http.StatusBadRequest, "Falta el idToken")
			return
		}

		token, user, err := authService.GoogleSignIn(r.Context(), req.IDToken)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
				return
			}
			logger.Error("google sign-in failed", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Success: true,
			Token:   token,
			User:    user,
		})
	}
}

// profileResponse is the checkout profile: the fields the storefront
// needs to prefill the shipping form.
type profileResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"nombre"`
	Email   string  `json:"email"`
	Address *string `json:"direccion"`
	Phone   *string `json:"telefono"`
}

// ProfileHandler handles GET /api/auth/usuario for the bearer of the
// token. Must run behind the JWT middleware.
func ProfileHandler(log *slog.Logger, authService service.AuthServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ProfileHandler"
		logger := log.With(slog.String("op", op))

		userID, ok := jwtmiddleware.FromContext(r.Context())
		if !ok {
			logger.Error("userID not found in context")
			writeError(w, http.StatusUnauthorized, "Token no proporcionado.")
			return
		}

		user, err := authService.GetProfile(r.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrUserNotFound) {
				writeError(w, http.StatusNotFound, "Usuario no encontrado.")
				return
			}
			logger.Error("failed to get profile", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, profileResponse{
			ID:      user.ID,
			Name:    user.Name,
			Email:   user.Email,
			Address: user.Address,
			Phone:   user.Phone,
		})
	}
}
