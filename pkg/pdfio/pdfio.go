// Package pdfio wraps the PDF libraries the pipeline depends on behind
// a single narrow interface, so the Snapshot Store never imports any of
// them directly: ledongthuc/pdf for text extraction, gen2brain/go-fitz
// for page rasterization ahead of the OCR fallback, and pdfcpu for
// trimming a source bundle down to one Doc Item's own page range.
package pdfio

import (
	"bytes"
	"fmt"
	"image/png"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/otiai10/gosseract/v2"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Document is the read-only surface the rest of the pipeline needs from
// an opened PDF: how many pages it has, each page's raw extracted text,
// and a PNG rasterization on demand for pages whose text extraction
// comes back effectively empty.
type Document interface {
	PageCount() int
	PageText(index int) (string, error)
	RasterizePNG(index int) ([]byte, error)
	Close() error
}

type document struct {
	path      string
	textFile  *os.File
	textDoc   *pdf.Reader
	rasterDoc *fitz.Document
}

// Open opens path once for text extraction and lazily opens a second
// handle for rasterization only if a caller actually asks for one -
// most pages never need the fallback.
func Open(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s for text extraction: %w", path, err)
	}
	return &document{path: path, textFile: f, textDoc: r}, nil
}

func (d *document) PageCount() int {
	return d.textDoc.NumPage()
}

func (d *document) PageText(index int) (string, error) {
	page := d.textDoc.Page(index + 1)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d is null", index)
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("extracting text from page %d: %w", index, err)
	}
	return text, nil
}

func (d *document) RasterizePNG(index int) ([]byte, error) {
	if d.rasterDoc == nil {
		rd, err := fitz.New(d.path)
		if err != nil {
			return nil, fmt.Errorf("opening %s for rasterization: %w", d.path, err)
		}
		d.rasterDoc = rd
	}
	img, err := d.rasterDoc.Image(index)
	if err != nil {
		return nil, fmt.Errorf("rasterizing page %d: %w", index, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encoding page %d as PNG: %w", index, err)
	}
	return buf.Bytes(), nil
}

func (d *document) Close() error {
	if d.rasterDoc != nil {
		d.rasterDoc.Close()
	}
	return d.textFile.Close()
}

// ExtractPageRange trims the PDF at path down to a standalone document
// containing only pages startPage..endPage (1-based, inclusive) and
// returns its bytes, so a bundle split into several Doc Items writes
// each one out as its own page range rather than a copy of the whole
// source bundle.
func ExtractPageRange(path string, startPage, endPage int) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s for page extraction: %w", path, err)
	}
	defer f.Close()

	selection := fmt.Sprintf("%d-%d", startPage, endPage)
	var out bytes.Buffer
	if err := api.Trim(f, &out, []string{selection}, nil); err != nil {
		return nil, fmt.Errorf("trimming %s to pages %s: %w", path, selection, err)
	}
	return out.Bytes(), nil
}

// OCRFallback runs Tesseract over a rasterized page image when the
// extracted text comes back too short to classify - scanned receipt
// notices and photographed pages rarely carry an embedded text layer.
func OCRFallback(pngBytes []byte, language string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if language == "" {
		language = "jpn"
	}
	if err := client.SetLanguage(language); err != nil {
		return "", fmt.Errorf("setting OCR language %q: %w", language, err)
	}
	if err := client.SetImageFromBytes(pngBytes); err != nil {
		return "", fmt.Errorf("loading rasterized page into OCR engine: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("running OCR: %w", err)
	}
	return text, nil
}
