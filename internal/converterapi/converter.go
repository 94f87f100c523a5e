// Package converterapi turns bank statement files into converter responses.
// PDFs go through the external PDF-to-transaction HTTP API; JSON files are
// responses saved earlier and are decoded directly.
package converterapi

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/statement-compare/internal/parsererror"
	"fjacquet/statement-compare/internal/statement"
)

// Converter produces the raw transaction list of one statement file.
type Converter interface {
	Convert(ctx context.Context, filename string, r io.Reader) (*statement.APIResponse, error)
}

// FileConverter reads previously saved converter responses.
type FileConverter struct{}

// Convert decodes r as a converter JSON response.
func (FileConverter) Convert(_ context.Context, _ string, r io.Reader) (*statement.APIResponse, error) {
	return statement.DecodeAPIResponse(r)
}

// Dispatcher routes files to a converter by extension: .pdf to PDF, anything
// else to JSON.
type Dispatcher struct {
	PDF  Converter
	JSON Converter
}

// NewDispatcher returns a Dispatcher. pdf may be nil when no converter API is
// configured; PDFs are then rejected with ErrConverterUnavailable.
func NewDispatcher(pdf Converter) *Dispatcher {
	return &Dispatcher{PDF: pdf, JSON: FileConverter{}}
}

// Convert implements Converter.
func (d *Dispatcher) Convert(ctx context.Context, filename string, r io.Reader) (*statement.APIResponse, error) {
	if IsPDF(filename) {
		if d.PDF == nil {
			return nil, fmt.Errorf("%s: %w", filename, parsererror.ErrConverterUnavailable)
		}
		return d.PDF.Convert(ctx, filename, r)
	}
	saved := d.JSON
	if saved == nil {
		saved = FileConverter{}
	}
	return saved.Convert(ctx, filename, r)
}

// IsPDF reports whether filename has a .pdf extension.
func IsPDF(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}

// ConvertPath opens path and converts it with c.
func ConvertPath(ctx context.Context, c Converter, path string) (*statement.APIResponse, error) {
	f, err := os.Open(path) // #nosec G304 -- CLI tool requires user-provided file paths
	if err != nil {
		return nil, fmt.Errorf("error opening input file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return c.Convert(ctx, filepath.Base(path), f)
}
