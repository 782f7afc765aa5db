package handler

import (
	"time"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

// --- Request / Response types ---

// createInvoiceRequest is the JSON body for invoice creation. Amount stays a
// string here; numeric validation is a service precondition, not a bind
// concern. The multipart variant reads the same fields from form values plus
// an optional "file" part.
type createInvoiceRequest struct {
	ClientName   string `json:"client_name"   validate:"required"`
	MobileNumber string `json:"mobile_number" validate:"required"`
	Amount       string `json:"amount"        validate:"required"`
	BillingDate  string `json:"billing_date"  validate:"required"`
	DueDate      string `json:"due_date"      validate:"required"`
	ImageLink    string `json:"image_link,omitempty" validate:"omitempty,url"`
}

type attachmentResponse struct {
	Type   string `json:"type"`
	URL    string `json:"url,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

type invoiceResponse struct {
	ID           string             `json:"id"`
	ClientName   string             `json:"client_name"`
	MobileNumber string             `json:"mobile_number"`
	Amount       float64            `json:"amount"`
	BillingDate  string             `json:"billing_date"`
	DueDate      string             `json:"due_date"`
	UserID       string             `json:"user_id"`
	Attachment   attachmentResponse `json:"attachment"`
	CreatedAt    time.Time          `json:"created_at"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

type listInvoicesResponse struct {
	Data       []invoiceResponse  `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

func toInvoiceResponse(inv *domain.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:           inv.ID,
		ClientName:   inv.ClientName,
		MobileNumber: inv.MobileNumber,
		Amount:       inv.Amount,
		BillingDate:  inv.BillingDate,
		DueDate:      inv.DueDate,
		UserID:       inv.UserID,
		Attachment: attachmentResponse{
			Type:   string(inv.Attachment.Type),
			URL:    inv.Attachment.URL,
			FileID: inv.Attachment.FileID,
		},
		CreatedAt: inv.CreatedAt,
	}
}

func toListResponse(res *ports.ListInvoicesResult) listInvoicesResponse {
	data := make([]invoiceResponse, 0, len(res.Items))
	for _, inv := range res.Items {
		data = append(data, toInvoiceResponse(inv))
	}
	return listInvoicesResponse{
		Data: data,
		Pagination: paginationResponse{
			Total:      res.Total,
			Page:       res.Page,
			Limit:      res.Limit,
			TotalPages: res.TotalPages,
		},
	}
}
