package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/fitwell/fitwell-api/internal/domain/models"
	"github.com/fitwell/fitwell-api/internal/lib/imagestore"
	"github.com/fitwell/fitwell-api/internal/storage"
)

// ImageUpload is an incoming image file from a multipart request.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// ProductService is the admin CRUD plus catalog reads. It owns the
// image file lifecycle: a product row and its file are created and
// removed together (file removal is best effort).
type ProductService interface {
	List(ctx context.Context, categoryID *int64) ([]*models.Product, error)
	Get(ctx context.Context, id int64) (*models.Product, error)
	Create(ctx context.Context, p *models.Product, image *ImageUpload) (*models.Product, error)
	Update(ctx context.Context, p *models.Product, image *ImageUpload) (*models.Product, error)
	Delete(ctx context.Context, id int64) error
}

type productService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
	images      *imagestore.Store
}

func NewProductService(log *slog.Logger, productRepo storage.ProductStorage, images *imagestore.Store) ProductService {
	return &productService{
		log:         log,
		productRepo: productRepo,
		images:      images,
	}
}

func (s *productService) List(ctx context.Context, categoryID *int64) ([]*models.Product, error) {
	const op = "service.ProductService.List"

	products, err := s.productRepo.ListProducts(ctx, categoryID)
	if err != nil {
		s.log.Error("failed to list products", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return products, nil
}

func (s *productService) Get(ctx context.Context, id int64) (*models.Product, error) {
	const op = "service.ProductService.Get"

	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, p *models.Product, image *ImageUpload) (*models.Product, error) {
	const op = "service.ProductService.Create"
	logger := s.log.With(slog.String("op", op), slog.String("name", p.Name))
	logger.Info("creating product")

	if image != nil {
		name, err := s.images.Save(image.Reader, image.Filename, image.ContentType)
		if err != nil {
			logger.Warn("failed to store image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Image = &name
	}

	created, err := s.productRepo.CreateProduct(ctx, p)
	if err != nil {
		// the row never existed, drop the orphaned file
		if p.Image != nil {
			if rmErr := s.images.Remove(*p.Image); rmErr != nil {
				logger.Warn("failed to remove orphaned image", slog.Any("error", rmErr))
			}
		}
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *productService) Update(ctx context.Context, p *models.Product, image *ImageUpload) (*models.Product, error) {
	const op = "service.ProductService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", p.ID))
	logger.Info("updating product")

	existing, err := s.productRepo.GetProductByID(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p.Image = existing.Image
	if image != nil {
		name, err := s.images.Save(image.Reader, image.Filename, image.ContentType)
		if err != nil {
			logger.Warn("failed to store image", slog.Any("error", err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.Image = &name
	}

	if err := s.productRepo.UpdateProduct(ctx, p); err != nil {
		if image != nil && p.Image != nil {
			if rmErr := s.images.Remove(*p.Image); rmErr != nil {
				logger.Warn("failed to remove orphaned image", slog.Any("error", rmErr))
			}
		}
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// replaced image, old file is unreferenced now
	if image != nil && existing.Image != nil {
		if rmErr := s.images.Remove(*existing.Image); rmErr != nil {
			logger.Warn("failed to remove previous image", slog.Any("error", rmErr))
		}
	}

	p.CategoryName = existing.CategoryName
	logger.Info("product updated")
	return p, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	const op = "service.ProductService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("productID", id))
	logger.Info("deleting product")

	existing, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.productRepo.DeleteProduct(ctx, id); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if existing.Image != nil {
		if rmErr := s.images.Remove(*existing.Image); rmErr != nil {
			logger.Warn("failed to remove image", slog.Any("error", rmErr))
		}
	}

	logger.Info("product deleted")
	return nil
}
