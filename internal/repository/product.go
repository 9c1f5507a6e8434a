package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"pollopollo/internal/domain"
	"pollopollo/internal/dto"
	"pollopollo/internal/storage"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository manages producer listings
type ProductRepository struct {
	db     *gorm.DB
	images storage.ImageWriter
	static string
}

func NewProductRepository(db *gorm.DB, images storage.ImageWriter, staticBaseURL string) *ProductRepository {
	return &ProductRepository{db: db, images: images, static: staticBaseURL}
}

// Create stores a new product for an existing user. The product inherits the owner's
// country. It returns nil for an invalid DTO or an unknown owner.
func (r *ProductRepository) Create(ctx context.Context, in *dto.ProductCreateDTO) (*dto.ProductDTO, error) {
	if in == nil || strings.TrimSpace(in.Title) == "" || in.Price < 0 {
		return nil, nil
	}
	var owner domain.User
	err := r.db.WithContext(ctx).Select("id", "country").First(&owner, in.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find owner %d: %w", in.UserID, err)
	}

	product := domain.Product{
		UserID:      owner.ID,
		Title:       in.Title,
		Price:       in.Price,
		Description: in.Description,
		Country:     owner.Country,
		Location:    in.Location,
		Available:   in.Available,
		Rank:        in.Rank,
	}
	if err := r.db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	out := r.toDTO(product)
	return &out, nil
}

// Find returns the product with the given id, or nil
func (r *ProductRepository) Find(ctx context.Context, productID uint) (*dto.ProductDTO, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find product %d: %w", productID, err)
	}
	out := r.toDTO(product)
	return &out, nil
}

// Read lists all available products, highest rank first
func (r *ProductRepository) Read(ctx context.Context) ([]dto.ProductDTO, error) {
	var products []domain.Product
	err := r.available(ctx).Order("`rank` desc").Order("id asc").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return r.toDTOs(products), nil
}

// ReadPage returns limit available products after skipping offset, together with the
// total number of available products. A limit of zero or less returns everything after
// the offset.
func (r *ProductRepository) ReadPage(ctx context.Context, offset, limit int) (*dto.ProductListDTO, error) {
	var count int64
	if err := r.available(ctx).Model(&domain.Product{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}
	q := r.available(ctx).Order("`rank` desc").Order("id asc")
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var products []domain.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("read product page: %w", err)
	}
	return &dto.ProductListDTO{Count: count, List: r.toDTOs(products)}, nil
}

// ReadByProducer lists every product of a producer, available or not
func (r *ProductRepository) ReadByProducer(ctx context.Context, producerID uint) ([]dto.ProductDTO, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Where("user_id = ?", producerID).
		Order("created_at desc").Order("id desc").Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("read products of %d: %w", producerID, err)
	}
	return r.toDTOs(products), nil
}

// Update writes availability and every field that is set in the DTO
func (r *ProductRepository) Update(ctx context.Context, in *dto.ProductUpdateDTO) (bool, error) {
	if in == nil {
		return false, nil
	}
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, in.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find product %d: %w", in.ID, err)
	}

	product.Available = in.Available
	if in.Title != "" {
		product.Title = in.Title
	}
	if in.Price != nil {
		if *in.Price < 0 {
			return false, nil
		}
		product.Price = *in.Price
	}
	if in.Description != "" {
		product.Description = in.Description
	}
	if in.Location != "" {
		product.Location = in.Location
	}
	if in.Rank != nil {
		product.Rank = *in.Rank
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(&product).Error; err != nil {
		return false, fmt.Errorf("update product %d: %w", in.ID, err)
	}
	return true, nil
}

// UpdateImage stores a new product picture and returns its public path, or "" when the
// product does not exist
func (r *ProductRepository) UpdateImage(ctx context.Context, productID uint, originalName string, image io.Reader) (string, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("find product %d: %w", productID, err)
	}
	name, err := replaceImage(ctx, r.db, r.images, &product, product.Thumbnail, originalName, image)
	if err != nil {
		return "", err
	}
	return imagePath(r.static, name), nil
}

func (r *ProductRepository) available(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("available = ?", true)
}

func (r *ProductRepository) toDTO(p domain.Product) dto.ProductDTO {
	return dto.ProductDTO{
		ProductID:   p.ID,
		UserID:      p.UserID,
		Title:       p.Title,
		Price:       p.Price,
		Description: p.Description,
		Country:     p.Country,
		Location:    p.Location,
		Available:   p.Available,
		Rank:        p.Rank,
		Thumbnail:   imagePath(r.static, p.Thumbnail),
	}
}

func (r *ProductRepository) toDTOs(products []domain.Product) []dto.ProductDTO {
	out := make([]dto.ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, r.toDTO(p))
	}
	return out
}
