package service

import "errors"

// Domain validation errors. These are the only messages allowed to reach the
// UI verbatim; anything else collapses to GenericErrorMessage so internal
// detail never leaks.
var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderUnknownProduct = errors.New("order references nonexistent product")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrOrderItemCount      = errors.New("order must contain between 1 and 20 items")
	ErrQuantityTooSmall    = errors.New("quantity must be at least 1")
	ErrCustomerNameTooLong = errors.New("customer name must be at most 50 characters")
	ErrCommentTooLong      = errors.New("comment must be at most 250 characters")
	ErrInvalidOrderStatus  = errors.New("invalid order status")

	ErrProductNameLength = errors.New("product name must be between 1 and 50 characters")
	ErrProductNameTaken  = errors.New("product name already exists")
	ErrPriceOutOfRange   = errors.New("price must be between 0 and 1000000000")
	ErrStockOutOfRange   = errors.New("stock must be between 0 and 1000000000")
	ErrTooManyTags       = errors.New("a product can have at most 20 tags")
	ErrTagNotFound       = errors.New("unknown product tag")
	ErrProductLimit      = errors.New("product limit reached")

	ErrTagNameLength = errors.New("tag name must be between 1 and 50 characters")
	ErrTagNameTaken  = errors.New("tag name already exists")

	ErrImageEncoding = errors.New("image data is not valid base64")
	ErrImageTooLarge = errors.New("image data is too large")
	ErrImageMimeType = errors.New("unsupported image type")
)

const GenericErrorMessage = "an error occurred"

var whitelisted = []error{
	ErrOrderNotFound,
	ErrProductNotFound,
	ErrOrderUnknownProduct,
	ErrInsufficientStock,
	ErrOrderItemCount,
	ErrQuantityTooSmall,
	ErrCustomerNameTooLong,
	ErrCommentTooLong,
	ErrInvalidOrderStatus,
	ErrProductNameLength,
	ErrProductNameTaken,
	ErrPriceOutOfRange,
	ErrStockOutOfRange,
	ErrTooManyTags,
	ErrTagNotFound,
	ErrProductLimit,
	ErrTagNameLength,
	ErrTagNameTaken,
	ErrImageEncoding,
	ErrImageTooLarge,
	ErrImageMimeType,
}

// IsWhitelisted reports whether err carries a message safe to show the user.
func IsWhitelisted(err error) bool {
	for _, w := range whitelisted {
		if errors.Is(err, w) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err should surface as a 404. A missing tag on a
// product mutation stays a 400: the path target existed, the payload did not.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrProductNotFound)
}

// UserMessage maps any error to the message the UI may display. The matched
// sentinel's own message is returned, so wrapping context never leaks.
func UserMessage(err error) string {
	for _, w := range whitelisted {
		if errors.Is(err, w) {
			return w.Error()
		}
	}
	return GenericErrorMessage
}
