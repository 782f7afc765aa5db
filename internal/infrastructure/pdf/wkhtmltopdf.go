// Package pdf adapts the wkhtmltopdf rendering engine behind the PDFRenderer
// port. Requires the wkhtmltopdf binary on PATH (or WKHTMLTOPDF_PATH).
package pdf

import (
	"context"
	"fmt"
	"strings"

	wkhtmltopdf "github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderHTML converts an HTML document to PDF bytes. Each call builds a fresh
// generator; the underlying binary invocation is single-shot and honours ctx
// cancellation.
func (r *Renderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	gen, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("pdf generator: %w", err)
	}

	gen.PageSize.Set(wkhtmltopdf.PageSizeA4)
	gen.AddPage(wkhtmltopdf.NewPageReader(strings.NewReader(html)))

	if err := gen.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return gen.Bytes(), nil
}
