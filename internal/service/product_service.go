package service

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/ws"
	"go-pos-backend/pkg/validator"

	"gorm.io/gorm"
)

// ImageInput is the optional image payload on product create/update.
// A nil pointer means "leave the image alone"; an empty Data deletes it.
// Field limits are enforced in the service so violations map to the
// whitelisted domain errors.
type ImageInput struct {
	Data     string `json:"data"`
	MimeType string `json:"mime_type"`
}

type CreateProductInput struct {
	Name   string      `json:"name"`
	Price  int64       `json:"price"`
	Stock  int64       `json:"stock"`
	TagIDs []int64     `json:"tag_ids"`
	Image  *ImageInput `json:"image"`
}

type UpdateProductInput struct {
	Name   string      `json:"name"`
	Price  int64       `json:"price"`
	Stock  int64       `json:"stock"`
	TagIDs []int64     `json:"tag_ids"`
	Image  *ImageInput `json:"image"`
}

type CreateTagInput struct {
	Name string `json:"name"`
}

// TagWithCount pairs a tag with its denormalized product count for list views.
type TagWithCount struct {
	model.ProductTag
	ProductCount int64 `json:"product_count"`
}

type ProductService interface {
	CreateProduct(input *CreateProductInput, userID, userName string) (*model.Product, error)
	UpdateProduct(id int64, input *UpdateProductInput, userID, userName string) (*model.Product, error)
	DeleteProduct(id int64, userID, userName string) error
	GetAllProducts() ([]model.Product, error)
	GetProductByID(id int64) (*model.Product, error)
	GetProductImage(productID int64) (*model.ProductImage, error)

	CreateTag(input *CreateTagInput, userID string) (*model.ProductTag, error)
	GetAllTags() ([]TagWithCount, error)
}

type productService struct {
	productRepo repository.ProductRepository
	tagRepo     repository.TagRepository
	imageRepo   repository.ImageRepository
	counterRepo repository.CounterRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewProductService(
	pRepo repository.ProductRepository,
	tRepo repository.TagRepository,
	iRepo repository.ImageRepository,
	cRepo repository.CounterRepository,
	db *gorm.DB,
	hub *ws.Hub,
) ProductService {
	return &productService{
		productRepo: pRepo,
		tagRepo:     tRepo,
		imageRepo:   iRepo,
		counterRepo: cRepo,
		db:          db,
		wsHub:       hub,
	}
}

func validateProductFields(name string, price, stock int64, tagIDs []int64) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > model.ProductNameMaxLen {
		return ErrProductNameLength
	}
	if price < 0 || price > model.PriceMax {
		return ErrPriceOutOfRange
	}
	if stock < 0 || stock > model.StockMax {
		return ErrStockOutOfRange
	}
	if len(tagIDs) > model.MaxTagsPerProduct {
		return ErrTooManyTags
	}
	return nil
}

// validateImageInput checks a populated image payload. Empty Data is the
// delete branch and is handled by the caller, not here.
func validateImageInput(img *ImageInput) error {
	if !validator.IsBase64Payload(img.Data) {
		return ErrImageEncoding
	}
	if len(img.Data) > int(model.ImageDataMaxLen) {
		return ErrImageTooLarge
	}
	if !model.IsAllowedImageMimeType(img.MimeType) {
		return ErrImageMimeType
	}
	return nil
}

// dedupeIDs drops repeated tag ids while keeping first-seen order.
func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// diffTagIDs splits the tag change into additions and removals.
func diffTagIDs(oldIDs, newIDs []int64) (added, removed []int64) {
	oldSet := make(map[int64]bool, len(oldIDs))
	for _, id := range oldIDs {
		oldSet[id] = true
	}
	newSet := make(map[int64]bool, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = true
	}
	for _, id := range newIDs {
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, id := range oldIDs {
		if !newSet[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

// attachTags verifies the tags exist, then links them and bumps their counters.
func (s *productService) attachTags(tx *gorm.DB, productID int64, tagIDs []int64) error {
	if len(tagIDs) == 0 {
		return nil
	}
	tags, err := s.tagRepo.FindAllByIDs(tx, tagIDs)
	if err != nil {
		return err
	}
	if len(tags) != len(tagIDs) {
		return ErrTagNotFound
	}
	for _, tagID := range tagIDs {
		if err := s.tagRepo.AddRelation(tx, productID, tagID); err != nil {
			return err
		}
		if err := s.counterRepo.IncrementTag(tx, tagID); err != nil {
			return err
		}
	}
	return nil
}

// detachTag unlinks one tag from the product, decrements its counter and
// garbage-collects the tag when the product held its last reference. The
// reference count is read before the relation row is removed, so a count of
// one means this product was the only holder.
func (s *productService) detachTag(tx *gorm.DB, productID, tagID int64) error {
	count, err := s.tagRepo.RelationCount(tx, tagID)
	if err != nil {
		return err
	}
	if err := s.tagRepo.DeleteRelation(tx, productID, tagID); err != nil {
		return err
	}
	if err := s.counterRepo.DecrementTag(tx, tagID); err != nil {
		return err
	}
	if count <= 1 {
		// Orphaned: remove leftovers, the counter row, the tag itself, and
		// the store-wide tag count.
		if err := s.tagRepo.DeleteRelationsByTag(tx, tagID); err != nil {
			return err
		}
		if err := s.counterRepo.DeleteTagCounter(tx, tagID); err != nil {
			return err
		}
		if err := s.tagRepo.Delete(tx, tagID); err != nil {
			return err
		}
		if err := s.counterRepo.DecrementStore(tx, model.CounterProductTags); err != nil {
			return err
		}
	}
	return nil
}

// applyImageChange runs one of the three image branches: nil input leaves the
// stored image alone, empty data deletes it, a populated payload replaces it.
func (s *productService) applyImageChange(tx *gorm.DB, productID int64, img *ImageInput) error {
	if img == nil {
		return nil
	}
	if img.Data == "" {
		return s.imageRepo.DeleteByProductID(tx, productID)
	}
	if err := validateImageInput(img); err != nil {
		return err
	}
	return s.imageRepo.Upsert(tx, &model.ProductImage{
		ProductID: productID,
		Data:      img.Data,
		MimeType:  img.MimeType,
	})
}

func (s *productService) CreateProduct(input *CreateProductInput, userID, userName string) (*model.Product, error) {
	if err := validateProductFields(input.Name, input.Price, input.Stock, input.TagIDs); err != nil {
		return nil, err
	}

	// Duplicate name check; the unique index backs this up under races.
	existing, err := s.productRepo.FindByName(input.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrProductNameTaken
	}

	tagIDs := dedupeIDs(input.TagIDs)
	var product *model.Product

	err = s.db.Transaction(func(tx *gorm.DB) error {
		count, err := s.productRepo.Count(tx)
		if err != nil {
			return err
		}
		if count >= model.MaxProductsPerStore {
			return ErrProductLimit
		}

		product = &model.Product{
			Name:            input.Name,
			Price:           input.Price,
			Stock:           input.Stock,
			CreatedByUserID: &userID,
			UpdatedByUserID: &userID,
		}
		if err := s.productRepo.Create(tx, product); err != nil {
			return err
		}
		if err := s.attachTags(tx, product.ID, tagIDs); err != nil {
			return err
		}
		if err := s.counterRepo.IncrementStore(tx, model.CounterProducts); err != nil {
			return err
		}
		if input.Image != nil && input.Image.Data != "" {
			if err := s.applyImageChange(tx, product.ID, input.Image); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	created, err := s.productRepo.FindByID(product.ID)
	if err != nil {
		return nil, err
	}

	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventProductChanged,
		Payload: created,
		Actor:   userName,
		Message: fmt.Sprintf("%s created product '%s'", userName, created.Name),
	})

	return created, nil
}

func (s *productService) UpdateProduct(id int64, input *UpdateProductInput, userID, userName string) (*model.Product, error) {
	if err := validateProductFields(input.Name, input.Price, input.Stock, input.TagIDs); err != nil {
		return nil, err
	}

	// Name uniqueness excludes the product itself; renaming to your own name
	// is a no-op, not a conflict.
	existing, err := s.productRepo.FindByName(input.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.ID != id {
		return nil, ErrProductNameTaken
	}

	newTagIDs := dedupeIDs(input.TagIDs)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		oldTagIDs, err := s.tagRepo.TagIDsByProduct(tx, id)
		if err != nil {
			return err
		}
		added, removed := diffTagIDs(oldTagIDs, newTagIDs)

		if err := s.attachTags(tx, id, added); err != nil {
			return err
		}
		for _, tagID := range removed {
			if err := s.detachTag(tx, id, tagID); err != nil {
				return err
			}
		}

		product.Name = input.Name
		product.Price = input.Price
		product.Stock = input.Stock
		product.UpdatedByUserID = &userID
		if err := s.productRepo.Update(tx, product); err != nil {
			return err
		}

		return s.applyImageChange(tx, id, input.Image)
	})

	if err != nil {
		return nil, err
	}

	updated, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, err
	}

	go s.wsHub.Publish(ws.Event{
		Type:    ws.EventProductChanged,
		Payload: updated,
		Actor:   userName,
		Message: fmt.Sprintf("%s updated product '%s'", userName, updated.Name),
	})

	return updated, nil
}

// DeleteProduct is idempotent: deleting an id that no longer exists succeeds
// as a no-op. Order item snapshots survive; their product_id becomes NULL.
func (s *productService) DeleteProduct(id int64, userID, userName string) error {
	var name string
	deleted := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdate(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		name = product.Name

		tagIDs, err := s.tagRepo.TagIDsByProduct(tx, id)
		if err != nil {
			return err
		}
		for _, tagID := range tagIDs {
			if err := s.detachTag(tx, id, tagID); err != nil {
				return err
			}
		}

		if err := s.imageRepo.DeleteByProductID(tx, id); err != nil {
			return err
		}
		if err := s.counterRepo.DecrementStore(tx, model.CounterProducts); err != nil {
			return err
		}
		if err := s.productRepo.Delete(tx, id); err != nil {
			return err
		}
		deleted = true
		return nil
	})

	if err != nil {
		return err
	}

	if deleted {
		go s.wsHub.Publish(ws.Event{
			Type:    ws.EventProductChanged,
			Payload: map[string]interface{}{"id": id, "deleted": true},
			Actor:   userName,
			Message: fmt.Sprintf("%s deleted product '%s'", userName, name),
		})
	}

	return nil
}

func (s *productService) GetAllProducts() ([]model.Product, error) {
	return s.productRepo.FindAll()
}

func (s *productService) GetProductByID(id int64) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductImage(productID int64) (*model.ProductImage, error) {
	return s.imageRepo.FindByProductID(productID)
}

func (s *productService) CreateTag(input *CreateTagInput, userID string) (*model.ProductTag, error) {
	if n := utf8.RuneCountInString(input.Name); n < 1 || n > model.TagNameMaxLen {
		return nil, ErrTagNameLength
	}
	existing, err := s.tagRepo.FindByName(input.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrTagNameTaken
	}

	tag := &model.ProductTag{Name: input.Name}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.tagRepo.Create(tx, tag); err != nil {
			return err
		}
		return s.counterRepo.IncrementStore(tx, model.CounterProductTags)
	})
	if err != nil {
		return nil, err
	}
	return tag, nil
}

func (s *productService) GetAllTags() ([]TagWithCount, error) {
	tags, err := s.tagRepo.FindAll()
	if err != nil {
		return nil, err
	}
	counts, err := s.counterRepo.GetAllTagCounts()
	if err != nil {
		return nil, err
	}
	out := make([]TagWithCount, len(tags))
	for i, t := range tags {
		out[i] = TagWithCount{ProductTag: t, ProductCount: counts[t.ID]}
	}
	return out, nil
}
