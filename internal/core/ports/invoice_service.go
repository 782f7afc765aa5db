package ports

import (
	"context"
	"io"
	"slices"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// Session is the explicit caller identity passed into every service
// operation. There is no ambient "current user"; the transport layer builds
// a Session from verified token claims.
type Session struct {
	UserID string
	Labels []string
}

// IsAdmin reports whether the session carries the admin label.
func (s Session) IsAdmin() bool {
	return slices.Contains(s.Labels, domain.LabelAdmin)
}

// AttachmentInput describes the optional attachment supplied on create.
// Exactly one of ImageLink, LocalPath, or Content is expected.
type AttachmentInput struct {
	// ImageLink is an externally hosted image URL, stored verbatim with no
	// reachability check.
	ImageLink string
	// LocalPath points at a file on disk to upload to blob storage.
	LocalPath string
	// Content streams file data to upload (e.g. from a multipart part).
	Content     io.Reader
	FileName    string
	ContentType string
}

// CreateInvoiceInput carries the raw field values for a new invoice. Amount
// arrives as a string and is parsed/validated by the service.
type CreateInvoiceInput struct {
	ClientName   string
	MobileNumber string
	Amount       string
	BillingDate  string
	DueDate      string
	Attachment   *AttachmentInput
}

// ListInvoicesInput carries pagination parameters for the list operation.
type ListInvoicesInput struct {
	Page  int
	Limit int
}

// ListInvoicesResult is one role-scoped page of invoices.
type ListInvoicesResult struct {
	Items      []*domain.Invoice
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// InvoiceService defines the invoice use-case operations. All role scoping
// (admin sees everything, others only their own records) lives here.
type InvoiceService interface {
	Create(ctx context.Context, sess Session, input CreateInvoiceInput) (*domain.Invoice, error)
	List(ctx context.Context, sess Session, input ListInvoicesInput) (*ListInvoicesResult, error)
	Delete(ctx context.Context, sess Session, invoiceID string) error
}

// ExportService renders an invoice to a PDF file on local disk and returns
// the file path.
type ExportService interface {
	Export(ctx context.Context, sess Session, invoiceID string) (string, error)
}
