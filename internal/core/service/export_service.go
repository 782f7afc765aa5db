package service

import (
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

// invoiceHTML is the fixed document rendered for every export. The render is
// deterministic: the same invoice fields always produce byte-identical HTML.
const invoiceHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.ID}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; margin: 40px; }
h1 { font-size: 22px; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #444; padding: 8px 12px; text-align: left; }
th { background: #f0f0f0; width: 35%; }
</style>
</head>
<body>
<h1>Invoice</h1>
<table>
<tr><th>Client Name</th><td>{{.ClientName}}</td></tr>
<tr><th>Mobile Number</th><td>{{.MobileNumber}}</td></tr>
<tr><th>Amount</th><td>&#8377;{{.Amount}}</td></tr>
<tr><th>Billing Date</th><td>{{.BillingDate}}</td></tr>
<tr><th>Due Date</th><td>{{.DueDate}}</td></tr>
{{if .ImageLink}}<tr><th>Attachment</th><td><a href="{{.ImageLink}}">{{.ImageLink}}</a></td></tr>{{end}}
{{if .FileID}}<tr><th>Attachment</th><td>{{.FileID}}</td></tr>{{end}}
</table>
</body>
</html>
`

var invoiceTmpl = template.Must(template.New("invoice").Parse(invoiceHTML))

// ExportService renders invoices to PDF files under exportDir.
type ExportService struct {
	repo      ports.InvoiceRepository
	renderer  ports.PDFRenderer
	exportDir string
	log       zerolog.Logger
}

func NewExportService(repo ports.InvoiceRepository, renderer ports.PDFRenderer, exportDir string, log zerolog.Logger) *ExportService {
	return &ExportService{repo: repo, renderer: renderer, exportDir: exportDir, log: log}
}

// Export renders the invoice to a PDF at a stable path keyed by invoice id
// (invoice_<id>.pdf) and returns that path. Render, convert, and write
// failures all surface as domain.ErrExportFailed; the stage-specific cause
// stays on the error chain for diagnostics.
func (s *ExportService) Export(ctx context.Context, sess ports.Session, invoiceID string) (string, error) {
	if sess.UserID == "" {
		return "", domain.ErrNotAuthenticated
	}

	inv, err := s.repo.FindByID(ctx, invoiceID)
	if err != nil {
		return "", err
	}
	if !sess.IsAdmin() && inv.UserID != sess.UserID {
		return "", domain.ErrForbidden
	}

	html, err := renderInvoiceHTML(inv)
	if err != nil {
		return "", fmt.Errorf("%w: render html: %w", domain.ErrExportFailed, err)
	}

	pdfData, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return "", fmt.Errorf("%w: convert to pdf: %w", domain.ErrExportFailed, err)
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: prepare export dir: %w", domain.ErrExportFailed, err)
	}

	path := filepath.Join(s.exportDir, "invoice_"+inv.ID+".pdf")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, pdfData, 0o644); err != nil {
		return "", fmt.Errorf("%w: write pdf: %w", domain.ErrExportFailed, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("%w: move pdf: %w", domain.ErrExportFailed, err)
	}

	s.log.Info().Str("invoice_id", inv.ID).Str("path", path).Msg("invoice exported")
	return path, nil
}

// renderInvoiceHTML builds the HTML document for an invoice. Amount is
// rendered with two decimals behind the rupee glyph.
func renderInvoiceHTML(inv *domain.Invoice) (string, error) {
	data := struct {
		ID           string
		ClientName   string
		MobileNumber string
		Amount       string
		BillingDate  string
		DueDate      string
		ImageLink    string
		FileID       string
	}{
		ID:           inv.ID,
		ClientName:   inv.ClientName,
		MobileNumber: inv.MobileNumber,
		Amount:       fmt.Sprintf("%.2f", inv.Amount),
		BillingDate:  inv.BillingDate,
		DueDate:      inv.DueDate,
	}
	switch inv.Attachment.Type {
	case domain.AttachmentImageLink:
		data.ImageLink = inv.Attachment.URL
	case domain.AttachmentUploadedFile:
		data.FileID = inv.Attachment.FileID
	}

	var b strings.Builder
	if err := invoiceTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
