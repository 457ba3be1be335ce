package service

import (
	"errors"
	"strings"
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"

	"github.com/stretchr/testify/assert"
)

func TestValidateProductFields(t *testing.T) {
	assert.NoError(t, validateProductFields("Coffee", 500, 10, nil))
	assert.NoError(t, validateProductFields(strings.Repeat("あ", 50), 0, 0, nil))

	assert.ErrorIs(t, validateProductFields("", 500, 10, nil), ErrProductNameLength)
	assert.ErrorIs(t, validateProductFields(strings.Repeat("a", 51), 500, 10, nil), ErrProductNameLength)
	assert.ErrorIs(t, validateProductFields("Coffee", -1, 10, nil), ErrPriceOutOfRange)
	assert.ErrorIs(t, validateProductFields("Coffee", model.PriceMax+1, 10, nil), ErrPriceOutOfRange)
	assert.ErrorIs(t, validateProductFields("Coffee", 500, -1, nil), ErrStockOutOfRange)
	assert.ErrorIs(t, validateProductFields("Coffee", 500, model.StockMax+1, nil), ErrStockOutOfRange)

	tooMany := make([]int64, model.MaxTagsPerProduct+1)
	assert.ErrorIs(t, validateProductFields("Coffee", 500, 10, tooMany), ErrTooManyTags)
}

func TestValidateImageInput(t *testing.T) {
	ok := &ImageInput{Data: "aGVsbG8=", MimeType: "image/png"}
	assert.NoError(t, validateImageInput(ok))

	assert.ErrorIs(t, validateImageInput(&ImageInput{Data: "not base64!", MimeType: "image/png"}), ErrImageEncoding)
	assert.ErrorIs(t, validateImageInput(&ImageInput{Data: "aGVsbG8=", MimeType: "image/tiff"}), ErrImageMimeType)
	assert.ErrorIs(t, validateImageInput(&ImageInput{Data: "aGVsbG8=", MimeType: ""}), ErrImageMimeType)

	huge := strings.Repeat("A", int(model.ImageDataMaxLen)+4)
	assert.ErrorIs(t, validateImageInput(&ImageInput{Data: huge, MimeType: "image/jpeg"}), ErrImageTooLarge)
}

func TestDedupeIDs(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, dedupeIDs([]int64{3, 1, 3, 2, 1}))
	assert.Empty(t, dedupeIDs(nil))
	assert.Equal(t, []int64{7}, dedupeIDs([]int64{7, 7, 7}))
}

// failingNameProductRepo simulates a database outage during the name check.
type failingNameProductRepo struct {
	repository.ProductRepository
	err error
}

func (r *failingNameProductRepo) FindByName(name string) (*model.Product, error) {
	return nil, r.err
}

type failingNameTagRepo struct {
	repository.TagRepository
	err error
}

func (r *failingNameTagRepo) FindByName(name string) (*model.ProductTag, error) {
	return nil, r.err
}

// A failed name lookup must surface as an error, never as "name is free".
func TestNameCheckPropagatesDBErrors(t *testing.T) {
	dbErr := errors.New("connection reset by peer")

	svc := NewProductService(&failingNameProductRepo{err: dbErr}, nil, nil, nil, nil, nil)

	_, err := svc.CreateProduct(&CreateProductInput{Name: "Coffee", Price: 500, Stock: 10}, "u", "User")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrProductNameTaken)

	_, err = svc.UpdateProduct(1, &UpdateProductInput{Name: "Coffee", Price: 500, Stock: 10}, "u", "User")
	assert.ErrorIs(t, err, dbErr)

	tagSvc := NewProductService(nil, &failingNameTagRepo{err: dbErr}, nil, nil, nil, nil)
	_, err = tagSvc.CreateTag(&CreateTagInput{Name: "drinks"}, "u")
	assert.ErrorIs(t, err, dbErr)
	assert.NotErrorIs(t, err, ErrTagNameTaken)
}

func TestDiffTagIDs(t *testing.T) {
	added, removed := diffTagIDs([]int64{1, 2, 3}, []int64{2, 3, 4})
	assert.Equal(t, []int64{4}, added)
	assert.Equal(t, []int64{1}, removed)

	added, removed = diffTagIDs(nil, []int64{1, 2})
	assert.Equal(t, []int64{1, 2}, added)
	assert.Empty(t, removed)

	added, removed = diffTagIDs([]int64{1, 2}, nil)
	assert.Empty(t, added)
	assert.Equal(t, []int64{1, 2}, removed)

	added, removed = diffTagIDs([]int64{5, 6}, []int64{5, 6})
	assert.Empty(t, added)
	assert.Empty(t, removed)
}
