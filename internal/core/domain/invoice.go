package domain

import (
	"errors"
	"time"
)

// AttachmentType discriminates the optional attachment variant on an invoice.
type AttachmentType string

const (
	AttachmentNone         AttachmentType = "none"
	AttachmentImageLink    AttachmentType = "image_link"
	AttachmentUploadedFile AttachmentType = "uploaded_file"
)

// Attachment is a tagged variant: either no attachment, an externally hosted
// image URL, or a reference id returned by blob storage. URL and FileID are
// never both set.
type Attachment struct {
	Type   AttachmentType `json:"type" bson:"type"`
	URL    string         `json:"url,omitempty" bson:"url,omitempty"`
	FileID string         `json:"file_id,omitempty" bson:"file_id,omitempty"`
}

// Invoice is the core aggregate root. It is created once, listed, and hard
// deleted; there is no update operation.
type Invoice struct {
	ID           string     `json:"id" bson:"_id,omitempty"`
	ClientName   string     `json:"client_name" bson:"client_name"`
	MobileNumber string     `json:"mobile_number" bson:"mobile_number"`
	Amount       float64    `json:"amount" bson:"amount"`
	BillingDate  string     `json:"billing_date" bson:"billing_date"` // YYYY-MM-DD
	DueDate      string     `json:"due_date" bson:"due_date"`         // YYYY-MM-DD
	UserID       string     `json:"user_id" bson:"user_id"`
	Attachment   Attachment `json:"attachment" bson:"attachment"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
}

// Validation errors (caught before any write).
var ErrMissingFields = errors.New("missing fields")
var ErrInvalidAmount = errors.New("invalid amount")
var ErrInvalidMobileNumber = errors.New("invalid mobile number")
var ErrInvalidDate = errors.New("invalid date")

var ErrNotAuthenticated = errors.New("not authenticated")
var ErrForbidden = errors.New("access forbidden")
var ErrInvoiceNotFound = errors.New("invoice not found")
var ErrAttachmentNotFound = errors.New("attachment file not found")
var ErrExportFailed = errors.New("invoice export failed")

// ErrorKind returns the stable machine-readable kind for a domain error,
// exposed alongside the human-readable message in API responses. Unknown
// errors map to "backend".
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrMissingFields),
		errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrInvalidMobileNumber),
		errors.Is(err, ErrInvalidDate):
		return "validation"
	case errors.Is(err, ErrNotAuthenticated), errors.Is(err, ErrInvalidCredentials):
		return "not_authenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrUserExists):
		return "conflict"
	case errors.Is(err, ErrAttachmentNotFound):
		return "file_not_found"
	case errors.Is(err, ErrExportFailed):
		return "export_failed"
	default:
		return "backend"
	}
}
