package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/lib/imagestore"
	"github.com/fitwell/fitwell-api/internal/service"
	"github.com/fitwell/fitwell-api/internal/storage"
)

const missingProductFields = "Faltan campos obligatorios: nombre, precio, stock, categoria_id"

// withImageURL returns a copy whose imagen field is the absolute URL the
// storefront renders. Rows keep only the stored file name.
func withImageURL(p *models.Product, imageBaseURL string) *models.Product {
	if p.Image == nil {
		return p
	}
	cp := *p
	u := imageBaseURL + "/" + *p.Image
	cp.Image = &u
	return &cp
}

// parseProductForm reads the multipart fields shared by create and
// update. A missing or malformed required field yields ok == false.
func parseProductForm(r *http.Request) (*models.Product, *service.ImageUpload, bool) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		return nil, nil, false
	}

	name := r.FormValue("nombre")
	price, priceErr := strconv.ParseFloat(r.FormValue("precio"), 64)
	stock, stockErr := strconv.Atoi(r.FormValue("stock"))
	categoryID, catErr := strconv.ParseInt(r.FormValue("categoria_id"), 10, 64)
	if name == "" || priceErr != nil || stockErr != nil || catErr != nil {
		return nil, nil, false
	}

	p := &models.Product{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	}
	if desc := r.FormValue("descripcion"); desc != "" {
		p.Description = &desc
	}
	if featured, err := strconv.ParseBool(r.FormValue("destacado")); err == nil {
		p.Featured = featured
	}

	var upload *service.ImageUpload
	file, header, err := r.FormFile("imagen")
	if err == nil {
		upload = &service.ImageUpload{
			Reader:      file,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		}
	}
	return p, upload, true
}

func writeImageError(w http.ResponseWriter, err error) bool {
	switch {
	case errors.Is(err, imagestore.ErrUnsupportedType):
		writeError(w, http.StatusBadRequest, "Solo se permiten imágenes (JPEG, PNG, GIF, WEBP)")
		return true
	case errors.Is(err, imagestore.ErrTooLarge):
		writeError(w, http.StatusBadRequest, "La imagen no puede superar los 5 MB")
		return true
	}
	return false
}

// ListProductsHandler handles GET /api/productos with an optional
// ?categoria= filter.
func ListProductsHandler(log *slog.Logger, productService service.ProductService, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		var categoryID *int64
		if raw := r.URL.Query().Get("categoria"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "categoria inválida")
				return
			}
			categoryID = &id
		}

		products, err := productService.List(r.Context(), categoryID)
		if err != nil {
			logger.Error("failed to list products", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		out := make([]*models.Product, 0, len(products))
		for _, p := range products {
			out = append(out, withImageURL(p, imageBaseURL))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// GetProductHandler handles GET /api/productos/{id}.
func GetProductHandler(log *slog.Logger, productService service.ProductService, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		product, err := productService.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "Producto no encontrado")
				return
			}
			logger.Error("failed to get product", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, withImageURL(product, imageBaseURL))
	}
}

type productResponse struct {
	Message string          `json:"message"`
	Product *models.Product `json:"producto"`
}

// CreateProductHandler handles POST /api/productos (admin, multipart).
func CreateProductHandler(log *slog.Logger, productService service.ProductService, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		product, upload, ok := parseProductForm(r)
		if !ok {
			writeError(w, http.StatusBadRequest, missingProductFields)
			return
		}

		created, err := productService.Create(r.Context(), product, upload)
		if err != nil {
			if writeImageError(w, err) {
				return
			}
			logger.Error("failed to create product", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, productResponse{
			Message: "Producto creado exitosamente",
			Product: withImageURL(created, imageBaseURL),
		})
	}
}

// UpdateProductHandler handles PUT /api/productos/{id} (admin,
// multipart). Uploading a new image replaces the stored file.
func UpdateProductHandler(log *slog.Logger, productService service.ProductService, imageBaseURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		product, upload, ok := parseProductForm(r)
		if !ok {
			writeError(w, http.StatusBadRequest, missingProductFields)
			return
		}
		product.ID = id

		updated, err := productService.Update(r.Context(), product, upload)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "Producto no encontrado")
				return
			}
			if writeImageError(w, err) {
				return
			}
			logger.Error("failed to update product", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, productResponse{
			Message: "Producto actualizado exitosamente",
			Product: withImageURL(updated, imageBaseURL),
		})
	}
}

// DeleteProductHandler handles DELETE /api/productos/{id} (admin).
func DeleteProductHandler(log *slog.Logger, productService service.ProductService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "id inválido")
			return
		}

		if err := productService.Delete(r.Context(), id); err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				writeError(w, http.StatusNotFound, "Producto no encontrado")
				return
			}
			logger.Error("failed to delete product", slog.Any("error", err))
			writeServerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{
			"message": "Producto eliminado exitosamente",
		})
	}
}
