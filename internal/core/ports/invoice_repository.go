package ports

import (
	"context"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
)

// ListInvoicesFilter carries the query parameters for listing invoices.
// UserID is always set by the service layer, never by callers directly.
type ListInvoicesFilter struct {
	UserID string // empty = no filter (admin); non-empty = scoped to owner
	Page   int    // 1-based
	Limit  int    // max rows per page (capped at 100 by service)
}

// InvoiceRepository defines persistence operations for invoices.
// Listing is ordered by creation time descending.
type InvoiceRepository interface {
	// Create inserts the invoice and returns it with the store-assigned id.
	Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error)
	FindByID(ctx context.Context, id string) (*domain.Invoice, error)
	// List returns a page of invoices matching filter and the total count.
	List(ctx context.Context, filter ListInvoicesFilter) ([]*domain.Invoice, int64, error)
	// Delete removes the invoice by id. Returns domain.ErrInvoiceNotFound
	// when no document matches.
	Delete(ctx context.Context, id string) error
}
