package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

const collectionInvoices = "invoices"

type InvoiceRepository struct {
	col *mongo.Collection
}

func NewInvoiceRepository(db *mongo.Database) *InvoiceRepository {
	return &InvoiceRepository{col: db.Collection(collectionInvoices)}
}

type invoiceDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ClientName   string             `bson:"client_name"`
	MobileNumber string             `bson:"mobile_number"`
	Amount       float64            `bson:"amount"`
	BillingDate  string             `bson:"billing_date"`
	DueDate      string             `bson:"due_date"`
	UserID       string             `bson:"user_id"`
	Attachment   attachmentDoc      `bson:"attachment"`
	CreatedAt    time.Time          `bson:"created_at"`
}

type attachmentDoc struct {
	Type   string `bson:"type"`
	URL    string `bson:"url,omitempty"`
	FileID string `bson:"file_id,omitempty"`
}

// Create inserts a new invoice document and returns the invoice with its
// store-assigned id.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toInvoiceDoc(inv)
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert invoice: unexpected inserted id type %T", res.InsertedID)
	}

	created := *inv
	created.ID = oid.Hex()
	return &created, nil
}

// FindByID retrieves an invoice by its hex id. A malformed id is treated the
// same as a missing document.
func (r *InvoiceRepository) FindByID(ctx context.Context, id string) (*domain.Invoice, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvoiceNotFound
	}

	var doc invoiceDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("find invoice: %w", err)
	}
	return fromInvoiceDoc(&doc), nil
}

// List returns a page of invoices ordered by creation time descending and the
// total count matching the filter. When filter.UserID is non-empty the query
// is scoped server-side so foreign records never cross the wire.
func (r *InvoiceRepository) List(ctx context.Context, filter ports.ListInvoicesFilter) ([]*domain.Invoice, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.UserID != "" {
		query["user_id"] = filter.UserID
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	defer cur.Close(ctx)

	var items []*domain.Invoice
	for cur.Next(ctx) {
		var doc invoiceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode invoice: %w", err)
		}
		items = append(items, fromInvoiceDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}

	return items, total, nil
}

// Delete hard deletes an invoice by id.
func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrInvoiceNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing the role-scoped list query.
func (r *InvoiceRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func toInvoiceDoc(inv *domain.Invoice) invoiceDoc {
	return invoiceDoc{
		ClientName:   inv.ClientName,
		MobileNumber: inv.MobileNumber,
		Amount:       inv.Amount,
		BillingDate:  inv.BillingDate,
		DueDate:      inv.DueDate,
		UserID:       inv.UserID,
		Attachment: attachmentDoc{
			Type:   string(inv.Attachment.Type),
			URL:    inv.Attachment.URL,
			FileID: inv.Attachment.FileID,
		},
		CreatedAt: inv.CreatedAt,
	}
}

func fromInvoiceDoc(doc *invoiceDoc) *domain.Invoice {
	return &domain.Invoice{
		ID:           doc.ID.Hex(),
		ClientName:   doc.ClientName,
		MobileNumber: doc.MobileNumber,
		Amount:       doc.Amount,
		BillingDate:  doc.BillingDate,
		DueDate:      doc.DueDate,
		UserID:       doc.UserID,
		Attachment: domain.Attachment{
			Type:   domain.AttachmentType(doc.Attachment.Type),
			URL:    doc.Attachment.URL,
			FileID: doc.Attachment.FileID,
		},
		CreatedAt: doc.CreatedAt,
	}
}
