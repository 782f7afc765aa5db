package service

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	dateLayout       = "2006-01-02"
)

// mobileNumberPattern is the canonical rule: 10 to 15 digits, nothing else.
var mobileNumberPattern = regexp.MustCompile(`^[0-9]{10,15}$`)

// InvoiceService implements invoice create/list/delete with role scoping.
type InvoiceService struct {
	repo  ports.InvoiceRepository
	store ports.AttachmentStore
	log   zerolog.Logger
}

func NewInvoiceService(repo ports.InvoiceRepository, store ports.AttachmentStore, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, store: store, log: log}
}

// Create validates all preconditions before any write or upload, resolves the
// optional attachment, and persists the invoice. The owner is always stamped
// from the session, never from caller input.
func (s *InvoiceService) Create(ctx context.Context, sess ports.Session, input ports.CreateInvoiceInput) (*domain.Invoice, error) {
	if input.ClientName == "" || input.MobileNumber == "" || input.Amount == "" ||
		input.BillingDate == "" || input.DueDate == "" {
		return nil, domain.ErrMissingFields
	}

	amount, err := strconv.ParseFloat(input.Amount, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	if !mobileNumberPattern.MatchString(input.MobileNumber) {
		return nil, domain.ErrInvalidMobileNumber
	}

	for _, d := range []string{input.BillingDate, input.DueDate} {
		if _, err := time.Parse(dateLayout, d); err != nil {
			return nil, domain.ErrInvalidDate
		}
	}

	if sess.UserID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	attachment, err := s.resolveAttachment(ctx, input.Attachment)
	if err != nil {
		return nil, err
	}

	inv := &domain.Invoice{
		ClientName:   input.ClientName,
		MobileNumber: input.MobileNumber,
		Amount:       amount,
		BillingDate:  input.BillingDate,
		DueDate:      input.DueDate,
		UserID:       sess.UserID,
		Attachment:   attachment,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create invoice")
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", created.ID).
		Str("user_id", sess.UserID).
		Str("attachment", string(created.Attachment.Type)).
		Msg("invoice created")

	return created, nil
}

// resolveAttachment maps the input variant to a stored attachment. An image
// link is stored verbatim with no reachability check; file content is
// uploaded first and its reference id attached.
func (s *InvoiceService) resolveAttachment(ctx context.Context, in *ports.AttachmentInput) (domain.Attachment, error) {
	switch {
	case in == nil:
		return domain.Attachment{Type: domain.AttachmentNone}, nil
	case in.ImageLink != "":
		return domain.Attachment{Type: domain.AttachmentImageLink, URL: in.ImageLink}, nil
	case in.Content != nil:
		ref, err := s.store.Upload(ctx, in.Content, in.FileName, in.ContentType)
		if err != nil {
			return domain.Attachment{}, err
		}
		return domain.Attachment{Type: domain.AttachmentUploadedFile, FileID: ref}, nil
	case in.LocalPath != "":
		ref, err := s.store.UploadFile(ctx, in.LocalPath)
		if err != nil {
			return domain.Attachment{}, err
		}
		return domain.Attachment{Type: domain.AttachmentUploadedFile, FileID: ref}, nil
	default:
		return domain.Attachment{Type: domain.AttachmentNone}, nil
	}
}

// List returns one page of invoices, most recent first. Admin sessions see
// every invoice; all other sessions are scoped to their own records by a
// server-side equality filter on the owner id.
func (s *InvoiceService) List(ctx context.Context, sess ports.Session, input ports.ListInvoicesInput) (*ports.ListInvoicesResult, error) {
	if sess.UserID == "" {
		return nil, domain.ErrNotAuthenticated
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filter := ports.ListInvoicesFilter{Page: page, Limit: limit}
	if !sess.IsAdmin() {
		filter.UserID = sess.UserID
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list invoices")
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListInvoicesResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// Delete hard deletes an invoice. Non-admin callers may only delete their
// own records.
func (s *InvoiceService) Delete(ctx context.Context, sess ports.Session, invoiceID string) error {
	if sess.UserID == "" {
		return domain.ErrNotAuthenticated
	}

	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return err
	}

	if !sess.IsAdmin() && inv.UserID != sess.UserID {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, invoiceID); err != nil {
		return err
	}

	s.log.Info().Str("invoice_id", invoiceID).Str("user_id", sess.UserID).Msg("invoice deleted")
	return nil
}
