package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stubs
// ---------------------------------------------------------------------------

type stubInvoiceRepo struct {
	byID        map[string]*domain.Invoice
	nextID      int
	createCalls int
	createErr   error
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{byID: make(map[string]*domain.Invoice)}
}

func (r *stubInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	r.createCalls++
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	clone := *inv
	clone.ID = "inv_" + strconv.Itoa(r.nextID)
	r.byID[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id string) (*domain.Invoice, error) {
	inv, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrInvoiceNotFound
	}
	clone := *inv
	return &clone, nil
}

// List mirrors the real Mongo query: equality filter on user_id, created_at
// descending, page/limit windowing.
func (r *stubInvoiceRepo) List(_ context.Context, f ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	var matched []*domain.Invoice
	for _, inv := range r.byID {
		if f.UserID != "" && inv.UserID != f.UserID {
			continue
		}
		clone := *inv
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (r *stubInvoiceRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return domain.ErrInvoiceNotFound
	}
	delete(r.byID, id)
	return nil
}

type stubAttachmentStore struct {
	uploadCalls int
	uploadErr   error
	lastName    string
}

func (s *stubAttachmentStore) Upload(_ context.Context, _ io.Reader, name, _ string) (string, error) {
	s.uploadCalls++
	s.lastName = name
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "file_ref_1", nil
}

func (s *stubAttachmentStore) UploadFile(_ context.Context, path string) (string, error) {
	s.uploadCalls++
	s.lastName = path
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	return "file_ref_1", nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func validInput() ports.CreateInvoiceInput {
	return ports.CreateInvoiceInput{
		ClientName:   "Acme",
		MobileNumber: "9876543210",
		Amount:       "1500",
		BillingDate:  "2024-01-01",
		DueDate:      "2024-01-15",
	}
}

func userSession(id string) ports.Session {
	return ports.Session{UserID: id}
}

func adminSession(id string) ports.Session {
	return ports.Session{UserID: id, Labels: []string{domain.LabelAdmin}}
}

// ---------------------------------------------------------------------------
// Create tests
// ---------------------------------------------------------------------------

func TestInvoiceService_Create_Success(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	inv, err := svc.Create(context.Background(), userSession("user_1"), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if inv.ID == "" {
		t.Error("expected store-assigned id")
	}
	if inv.ClientName != "Acme" || inv.MobileNumber != "9876543210" {
		t.Errorf("fields not persisted: %+v", inv)
	}
	if inv.Amount != 1500 {
		t.Errorf("expected amount 1500, got %v", inv.Amount)
	}
	if inv.Attachment.Type != domain.AttachmentNone {
		t.Errorf("expected no attachment, got %q", inv.Attachment.Type)
	}
	if inv.CreatedAt.IsZero() {
		t.Error("CreatedAt must not be zero")
	}
}

func TestInvoiceService_Create_OwnerStampedFromSession(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	// The input surface has no user id field at all; whatever identity an
	// attacker holds, the stored owner is the session's.
	inv, err := svc.Create(context.Background(), userSession("user_7"), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.UserID != "user_7" {
		t.Errorf("expected owner user_7, got %q", inv.UserID)
	}
	if repo.byID[inv.ID].UserID != "user_7" {
		t.Errorf("stored owner mismatch: %q", repo.byID[inv.ID].UserID)
	}
}

func TestInvoiceService_Create_ValidationFailures(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*ports.CreateInvoiceInput)
		wantErr error
	}{
		{"empty client name", func(in *ports.CreateInvoiceInput) { in.ClientName = "" }, domain.ErrMissingFields},
		{"empty mobile", func(in *ports.CreateInvoiceInput) { in.MobileNumber = "" }, domain.ErrMissingFields},
		{"empty amount", func(in *ports.CreateInvoiceInput) { in.Amount = "" }, domain.ErrMissingFields},
		{"empty billing date", func(in *ports.CreateInvoiceInput) { in.BillingDate = "" }, domain.ErrMissingFields},
		{"empty due date", func(in *ports.CreateInvoiceInput) { in.DueDate = "" }, domain.ErrMissingFields},
		{"non-numeric amount", func(in *ports.CreateInvoiceInput) { in.Amount = "abc" }, domain.ErrInvalidAmount},
		{"NaN amount", func(in *ports.CreateInvoiceInput) { in.Amount = "NaN" }, domain.ErrInvalidAmount},
		{"zero amount", func(in *ports.CreateInvoiceInput) { in.Amount = "0" }, domain.ErrInvalidAmount},
		{"short mobile", func(in *ports.CreateInvoiceInput) { in.MobileNumber = "12345" }, domain.ErrInvalidMobileNumber},
		{"16-digit mobile", func(in *ports.CreateInvoiceInput) { in.MobileNumber = "1234567890123456" }, domain.ErrInvalidMobileNumber},
		{"mobile with letters", func(in *ports.CreateInvoiceInput) { in.MobileNumber = "98765x3210" }, domain.ErrInvalidMobileNumber},
		{"bad billing date", func(in *ports.CreateInvoiceInput) { in.BillingDate = "01/01/2024" }, domain.ErrInvalidDate},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := newStubInvoiceRepo()
			store := &stubAttachmentStore{}
			svc := NewInvoiceService(repo, store, discardLogger)

			input := validInput()
			tc.mutate(&input)

			_, err := svc.Create(context.Background(), userSession("user_1"), input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			// Rejection happens before any write or upload.
			if repo.createCalls != 0 {
				t.Errorf("expected 0 write calls, got %d", repo.createCalls)
			}
			if store.uploadCalls != 0 {
				t.Errorf("expected 0 upload calls, got %d", store.uploadCalls)
			}
		})
	}
}

func TestInvoiceService_Create_NotAuthenticated(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	_, err := svc.Create(context.Background(), ports.Session{}, validInput())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Errorf("expected 0 write calls, got %d", repo.createCalls)
	}
}

func TestInvoiceService_Create_ImageLinkStoredVerbatim(t *testing.T) {
	repo := newStubInvoiceRepo()
	store := &stubAttachmentStore{}
	svc := NewInvoiceService(repo, store, discardLogger)

	input := validInput()
	input.Attachment = &ports.AttachmentInput{ImageLink: "https://img.example.com/a.png"}

	inv, err := svc.Create(context.Background(), userSession("user_1"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inv.Attachment.Type != domain.AttachmentImageLink {
		t.Fatalf("expected image_link attachment, got %q", inv.Attachment.Type)
	}
	if inv.Attachment.URL != "https://img.example.com/a.png" {
		t.Errorf("link not stored verbatim: %q", inv.Attachment.URL)
	}
	// Links are never uploaded, only referenced.
	if store.uploadCalls != 0 {
		t.Errorf("expected 0 upload calls, got %d", store.uploadCalls)
	}
}

func TestInvoiceService_Create_UploadsFileAttachment(t *testing.T) {
	repo := newStubInvoiceRepo()
	store := &stubAttachmentStore{}
	svc := NewInvoiceService(repo, store, discardLogger)

	input := validInput()
	input.Attachment = &ports.AttachmentInput{
		Content:     strings.NewReader("%PDF-1.4 fake"),
		FileName:    "bill.pdf",
		ContentType: "application/pdf",
	}

	inv, err := svc.Create(context.Background(), userSession("user_1"), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.uploadCalls != 1 {
		t.Fatalf("expected 1 upload call, got %d", store.uploadCalls)
	}
	if inv.Attachment.Type != domain.AttachmentUploadedFile || inv.Attachment.FileID != "file_ref_1" {
		t.Errorf("attachment reference not stored: %+v", inv.Attachment)
	}
}

func TestInvoiceService_Create_UploadFailureIsTerminal(t *testing.T) {
	repo := newStubInvoiceRepo()
	store := &stubAttachmentStore{uploadErr: errors.New("blob storage down")}
	svc := NewInvoiceService(repo, store, discardLogger)

	input := validInput()
	input.Attachment = &ports.AttachmentInput{LocalPath: "/tmp/bill.pdf"}

	_, err := svc.Create(context.Background(), userSession("user_1"), input)
	if err == nil {
		t.Fatal("expected error when upload fails")
	}
	if repo.createCalls != 0 {
		t.Errorf("no record may be written after a failed upload, got %d writes", repo.createCalls)
	}
}

// ---------------------------------------------------------------------------
// List tests
// ---------------------------------------------------------------------------

func seedInvoices(t *testing.T, svc *InvoiceService, userID string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if _, err := svc.Create(context.Background(), userSession(userID), validInput()); err != nil {
			t.Fatalf("seed create: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestInvoiceService_List_ScopedToOwner(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)
	seedInvoices(t, svc, "user_a", 2)
	seedInvoices(t, svc, "user_b", 3)

	res, err := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 {
		t.Errorf("expected total 2, got %d", res.Total)
	}
	for _, inv := range res.Items {
		if inv.UserID != "user_a" {
			t.Errorf("leaked foreign invoice: %+v", inv)
		}
	}

	// A different non-admin sees none of user_a's records.
	other, err := svc.List(context.Background(), userSession("user_c"), ports.ListInvoicesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other.Total != 0 {
		t.Errorf("expected total 0 for stranger, got %d", other.Total)
	}
}

func TestInvoiceService_List_AdminSeesAll(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)
	seedInvoices(t, svc, "user_a", 2)
	seedInvoices(t, svc, "user_b", 3)

	res, err := svc.List(context.Background(), adminSession("admin_1"), ports.ListInvoicesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 5 {
		t.Errorf("expected total 5, got %d", res.Total)
	}
}

func TestInvoiceService_List_MostRecentFirst(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)
	seedInvoices(t, svc, "user_a", 3)

	res, err := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(res.Items); i++ {
		if res.Items[i].CreatedAt.After(res.Items[i-1].CreatedAt) {
			t.Errorf("items not in descending creation order at index %d", i)
		}
	}
}

func TestInvoiceService_List_PaginationBounds(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)
	seedInvoices(t, svc, "user_a", 3)

	res, err := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{Page: -4, Limit: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Page != 1 {
		t.Errorf("expected page normalised to 1, got %d", res.Page)
	}
	if res.Limit != maxPageLimit {
		t.Errorf("expected limit capped at %d, got %d", maxPageLimit, res.Limit)
	}
	if res.TotalPages != 1 {
		t.Errorf("expected 1 total page, got %d", res.TotalPages)
	}

	paged, err := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(paged.Items) != 1 || paged.TotalPages != 2 {
		t.Errorf("expected 1 item on page 2 of 2, got %d items, %d pages", len(paged.Items), paged.TotalPages)
	}
}

// ---------------------------------------------------------------------------
// Delete tests
// ---------------------------------------------------------------------------

func TestInvoiceService_Delete_OwnerSucceeds(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	inv, _ := svc.Create(context.Background(), userSession("user_a"), validInput())

	if err := svc.Delete(context.Background(), userSession("user_a"), inv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, _ := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{})
	for _, item := range res.Items {
		if item.ID == inv.ID {
			t.Errorf("deleted invoice still listed: %s", inv.ID)
		}
	}
}

func TestInvoiceService_Delete_NonOwnerForbidden(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	inv, _ := svc.Create(context.Background(), userSession("user_a"), validInput())

	err := svc.Delete(context.Background(), userSession("user_b"), inv.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, ok := repo.byID[inv.ID]; !ok {
		t.Error("invoice must survive a forbidden delete")
	}
}

func TestInvoiceService_Delete_AdminSucceeds(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)

	inv, _ := svc.Create(context.Background(), userSession("user_a"), validInput())

	if err := svc.Delete(context.Background(), adminSession("admin_1"), inv.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvoiceService_Delete_NotFound(t *testing.T) {
	repo := newStubInvoiceRepo()
	svc := NewInvoiceService(repo, &stubAttachmentStore{}, discardLogger)
	seedInvoices(t, svc, "user_a", 1)

	err := svc.Delete(context.Background(), userSession("user_a"), "inv_missing")
	if !errors.Is(err, domain.ErrInvoiceNotFound) {
		t.Fatalf("expected ErrInvoiceNotFound, got %v", err)
	}

	res, _ := svc.List(context.Background(), userSession("user_a"), ports.ListInvoicesInput{})
	if res.Total != 1 {
		t.Errorf("list must be unaffected by a failed delete, got total %d", res.Total)
	}
}
