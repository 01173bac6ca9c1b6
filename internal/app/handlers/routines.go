package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

// RoutineRequest is the create/update payload for workout routines.
// Videos must be hosted on Cloudinary, where the storefront uploads them.
type RoutineRequest struct {
	Muscle      string `json:"muscle" validate:"required,max=50"`
	Description string `json:"description" validate:"required"`
	VideoURL    string `json:"video_url" validate:"required"`
}

func routineErrorMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if verrs[0].Field() == "Muscle" && verrs[0].Tag() == "max" {
			return "El campo muscle no puede exceder los 50 caracteres"
		}
	}
	return "Faltan campos obligatorios: muscle, description, video_url"
}

// decodeRoutine parses and validates the payload; a non-empty message
// means the request was rejected.
func decodeRoutine(r *http.Request) (*models.Routine, string) {
	var req RoutineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, "Faltan campos obligatorios: muscle, description, video_url"
	}
	if err := validate.Struct(req); err != nil {
		return nil, routineErrorMessage(err)
	}
	if !strings.HasPrefix(req.VideoURL, "https://res.cloudinary.com") {
		return nil, "La URL del video debe ser de Cloudinary"
	}
	return &models.Routine{
		Muscle:      req.Muscle,
		Description: req.Description,
		VideoURL:    req.VideoURL,
	}, ""
}

type routineResponse struct {
	Message string          `json:"message"`
	Routine *models.Routine `json:"rutina"`
}

// ListRoutinesHandler handles GET /api/rutinas.
func ListRoutinesHandler(log *slog.Logger, routineService service.RoutineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListRoutinesHandler"
		logger := log.With(slog.String("op", op))

		routines, err := routineService.List(r.Context())
		if err != nil {
			logger.Error("failed to list routines", slog.Any("error", err))
			writeServerError(w, err)
			return
		}
		if routines == nil {
			routines = []*models.Routine{}
		}
		writeJSON(w, http.StatusOK, routines)
	}
}

// GetRoutineHandler handles GET /api/rutinas/{id}.
func GetRoutineHandler(log *slog.Logger, routineService service.RoutineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetRoutineHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		routine, err := routineService.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrRoutineNotFound) {
				writeError(w, http.StatusNotFound, "Rutina no encontrada")
				return
			}
			logger.Error("failed to get routine", slog.Any("error", err))
			writeServerError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, routine)
	}
}

// CreateRoutineHandler handles POST /api/rutinas (admin).
func CreateRoutineHandler(log *slog.Logger, routineService service.RoutineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateRoutineHandler"
		logger := log.With(slog.String("op", op))

		routine, msg := decodeRoutine(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		created, err := routineService.Create(r.Context(), routine)
		if err != nil {
			logger.Error("failed to create routine", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, routineResponse{
			Message: "Rutina creada exitosamente",
			Routine: created,
		})
	}
}

// UpdateRoutineHandler handles PUT /api/rutinas/{id} (admin).
func UpdateRoutineHandler(log *slog.Logger, routineService service.RoutineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateRoutineHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		routine, msg := decodeRoutine(r)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		routine.ID = id

		updated, err := routineService.Update(r.Context(), routine)
		if err != nil {
			if errors.Is(err, storage.ErrRoutineNotFound) {
				writeError(w, http.StatusNotFound, "Rutina no encontrada")
				return
			}
			logger.Error("failed to update routine", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, routineResponse{
			Message: "Rutina actualizada exitosamente",
			Routine: updated,
		})
	}
}

// DeleteRoutineHandler handles DELETE /api/rutinas/{id} (admin).
func DeleteRoutineHandler(log *slog.Logger, routineService service.RoutineService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteRoutineHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		if err := routineService.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrRoutineNotFound) {
				writeError(w, http.StatusNotFound, "Rutina no encontrada")
				return
			}
			logger.Error("failed to delete routine", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Rutina eliminada exitosamente",
		})
	}
}
