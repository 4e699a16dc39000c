package printing

import (
	"bytes"
	"context"
	"time"
)

// PaperSize names a page format.
type PaperSize string

const (
	PaperSizeA4     PaperSize = "A4"
	PaperSizeA3     PaperSize = "A3"
	PaperSizeLetter PaperSize = "LETTER"
)

// portrait width and height in millimeters
var paperDimensions = map[PaperSize][2]int{
	PaperSizeA4:     {210, 297},
	PaperSizeA3:     {297, 420},
	PaperSizeLetter: {216, 279},
}

func (p PaperSize) IsValid() bool {
	_, ok := paperDimensions[p]
	return ok
}

// Dimensions returns the portrait width and height in millimeters. Unknown
// sizes measure as A4.
func (p PaperSize) Dimensions() (width, height int) {
	d, ok := paperDimensions[p]
	if !ok {
		d = paperDimensions[PaperSizeA4]
	}
	return d[0], d[1]
}

type Orientation string

const (
	OrientationPortrait  Orientation = "PORTRAIT"
	OrientationLandscape Orientation = "LANDSCAPE"
)

// Margins are in millimeters.
type Margins struct {
	Top, Right, Bottom, Left int
}

// DefaultMargins is 10mm all round.
func DefaultMargins() Margins {
	return Margins{Top: 10, Right: 10, Bottom: 10, Left: 10}
}

// RenderRequest is one HTML document to print. An empty PaperSize takes the
// renderer default and a zero Timeout the renderer timeout.
type RenderRequest struct {
	HTML        string
	Title       string
	PaperSize   PaperSize
	Orientation Orientation
	Margins     Margins
	FooterHTML  string // repeated on every page
	Timeout     time.Duration
}

type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFRenderer turns HTML into PDF bytes.
type PDFRenderer interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// Render failure codes.
const (
	ErrCodeRenderTimeout    = "RENDER_TIMEOUT"
	ErrCodeRenderFailed     = "RENDER_FAILED"
	ErrCodeInvalidHTML      = "INVALID_HTML"
	ErrCodeInvalidPaperSize = "INVALID_PAPER_SIZE"
)

// RenderError carries one of the ErrCode values and the underlying cause.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

func (e *RenderError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *RenderError) Unwrap() error { return e.Cause }

var (
	pageMarker     = []byte("/Type /Page")
	pageTreeMarker = []byte("/Type /Pages")
)

// estimatePageCount counts page objects, leaving out page tree nodes which
// share the marker prefix. Never less than one.
func estimatePageCount(pdf []byte) int {
	return max(1, bytes.Count(pdf, pageMarker)-bytes.Count(pdf, pageTreeMarker))
}
