package handler

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/invoicehub/invoicing-system/internal/api/metrics"
	"github.com/invoicehub/invoicing-system/internal/core/domain"
	"github.com/invoicehub/invoicing-system/internal/core/ports"
)

// InvoiceHandler handles HTTP requests for invoice operations.
type InvoiceHandler struct {
	service  ports.InvoiceService
	exporter ports.ExportService
}

func NewInvoiceHandler(service ports.InvoiceService, exporter ports.ExportService) *InvoiceHandler {
	return &InvoiceHandler{service: service, exporter: exporter}
}

// Create handles POST /v1/invoices. Accepts a JSON body, or multipart
// form-data with the same field names plus an optional "file" part that is
// uploaded to blob storage.
//
// @Summary      Create an invoice
// @Tags         invoices
// @Accept       json
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createInvoiceRequest  true  "Invoice fields"
// @Success      201   {object}  invoiceResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/invoices [post]
func (h *InvoiceHandler) Create(c echo.Context) error {
	sess, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	input, cleanup, err := h.bindCreateInput(c)
	if err != nil {
		return err
	}
	if cleanup != nil {
		defer cleanup()
	}

	inv, err := h.service.Create(c.Request().Context(), sess, input)
	if err != nil {
		return err
	}

	metrics.InvoicesCreatedTotal.WithLabelValues(string(inv.Attachment.Type)).Inc()
	if inv.Attachment.Type == domain.AttachmentUploadedFile {
		metrics.AttachmentUploadsTotal.Inc()
	}
	return c.JSON(http.StatusCreated, toInvoiceResponse(inv))
}

// bindCreateInput maps either a JSON or multipart request onto the service
// input. The returned cleanup closes the multipart file, when present.
func (h *InvoiceHandler) bindCreateInput(c echo.Context) (ports.CreateInvoiceInput, func(), error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		input := ports.CreateInvoiceInput{
			ClientName:   c.FormValue("client_name"),
			MobileNumber: c.FormValue("mobile_number"),
			Amount:       c.FormValue("amount"),
			BillingDate:  c.FormValue("billing_date"),
			DueDate:      c.FormValue("due_date"),
		}

		fh, err := c.FormFile("file")
		if err != nil {
			// No file part: an image_link form value may still be present.
			if link := c.FormValue("image_link"); link != "" {
				input.Attachment = &ports.AttachmentInput{ImageLink: link}
			}
			return input, nil, nil
		}

		f, err := fh.Open()
		if err != nil {
			return ports.CreateInvoiceInput{}, nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
		}
		input.Attachment = &ports.AttachmentInput{
			Content:     f,
			FileName:    fh.Filename,
			ContentType: fh.Header.Get(echo.HeaderContentType),
		}
		return input, func() { _ = f.Close() }, nil
	}

	var req createInvoiceRequest
	if err := c.Bind(&req); err != nil {
		return ports.CreateInvoiceInput{}, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.CreateInvoiceInput{}, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	input := ports.CreateInvoiceInput{
		ClientName:   req.ClientName,
		MobileNumber: req.MobileNumber,
		Amount:       req.Amount,
		BillingDate:  req.BillingDate,
		DueDate:      req.DueDate,
	}
	if req.ImageLink != "" {
		input.Attachment = &ports.AttachmentInput{ImageLink: req.ImageLink}
	}
	return input, nil, nil
}

// List handles GET /v1/invoices. Admin sessions receive every invoice; all
// other sessions only their own, most recent first.
//
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page (1-based)"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  listInvoicesResponse
// @Failure      401    {object}  map[string]string
// @Router       /v1/invoices [get]
func (h *InvoiceHandler) List(c echo.Context) error {
	sess, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	res, err := h.service.List(c.Request().Context(), sess, ports.ListInvoicesInput{Page: page, Limit: limit})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toListResponse(res))
}

// Delete handles DELETE /v1/invoices/:id. Only the owner or an admin may
// delete an invoice.
//
// @Summary      Delete an invoice
// @Tags         invoices
// @Security     BearerAuth
// @Param        id  path  string  true  "Invoice id"
// @Success      204  "deleted"
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c echo.Context) error {
	sess, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), sess, c.Param("id")); err != nil {
		return err
	}

	metrics.InvoicesDeletedTotal.Inc()
	return c.NoContent(http.StatusNoContent)
}

// ExportPDF handles GET /v1/invoices/:id/pdf: renders the invoice to a PDF
// on disk and streams it back as a download. RBAC matches delete: owner or
// admin.
//
// @Summary      Export an invoice as PDF
// @Tags         invoices
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "Invoice id"
// @Success      200  {file}    file
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /v1/invoices/{id}/pdf [get]
func (h *InvoiceHandler) ExportPDF(c echo.Context) error {
	sess, err := sessionFromContext(c)
	if err != nil {
		return err
	}

	start := time.Now()
	path, err := h.exporter.Export(c.Request().Context(), sess, c.Param("id"))
	if err != nil {
		metrics.ExportsTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.ExportsTotal.WithLabelValues("success").Inc()
	metrics.ExportDuration.Observe(time.Since(start).Seconds())

	return c.Attachment(path, filepath.Base(path))
}
