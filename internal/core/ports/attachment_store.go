package ports

import (
	"context"
	"io"
)

// AttachmentStore uploads invoice attachments to blob storage and returns
// the storage-assigned reference id. No retry is performed; a failed upload
// is terminal for the operation that requested it.
type AttachmentStore interface {
	Upload(ctx context.Context, r io.Reader, name, contentType string) (string, error)
	// UploadFile verifies the local file exists (domain.ErrAttachmentNotFound
	// otherwise) and streams it to storage.
	UploadFile(ctx context.Context, path string) (string, error)
}

// PDFRenderer converts a rendered HTML document into PDF bytes.
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}
