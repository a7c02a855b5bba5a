// Package scanner composes the scan pipeline: binarize, locate, sample,
// correct and decode, in one linear pass over the image. Every stage fails
// soft; callers always get a result, possibly empty, never an error at the
// string boundary.
package scanner

import (
	"context"
	"errors"
	"image"
	"log/slog"

	"github.com/scanforge/dmscan/internal/binarize"
	"github.com/scanforge/dmscan/internal/decode"
	"github.com/scanforge/dmscan/internal/detect"
)

// Reason classifies why a scan produced no detection. It never crosses the
// serialized boundary; it exists for logs and tests.
type Reason int

const (
	// ReasonNone means the scan succeeded.
	ReasonNone Reason = iota
	// ReasonInvalidInput means the pixel buffer or dimensions were
	// malformed.
	ReasonInvalidInput
	// ReasonNoRegionFound means no candidate symbol region was located.
	ReasonNoRegionFound
	// ReasonDegenerateGrid means a region was found but produced no valid
	// module grid.
	ReasonDegenerateGrid
	// ReasonUncorrectableData means error correction failed on the
	// extracted codewords.
	ReasonUncorrectableData
	// ReasonDecodeModeInconsistent means the corrected bit stream violated
	// the encoding rules.
	ReasonDecodeModeInconsistent
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonInvalidInput:
		return "invalid_input"
	case ReasonNoRegionFound:
		return "no_region_found"
	case ReasonDegenerateGrid:
		return "degenerate_grid"
	case ReasonUncorrectableData:
		return "uncorrectable_data"
	case ReasonDecodeModeInconsistent:
		return "decode_mode_inconsistent"
	default:
		return "unknown"
	}
}

// Detection is one decoded symbol.
type Detection struct {
	// Data is the decoded payload bytes.
	Data []byte
	// Text is the payload projected through Latin-1.
	Text string
	// Corners are the located region corners in image coordinates.
	Corners [4]detect.Point
	// ErrorsCorrected counts codewords repaired during decoding.
	ErrorsCorrected int
}

// Config holds scanner settings.
type Config struct {
	// Threshold is the luminance cutoff for binarization; values strictly
	// below it are dark.
	Threshold byte
	// TryPure short-circuits the region search with the cheap axis-aligned
	// extraction before running the full locator.
	TryPure bool
	// Logger receives per-stage debug records. Nil disables logging.
	Logger *slog.Logger
}

// DefaultConfig returns the scanner defaults.
func DefaultConfig() Config {
	return Config{
		Threshold: binarize.DefaultThreshold,
		TryPure:   true,
	}
}

// Scanner runs the scan pipeline. The zero value is not usable; construct
// with New.
type Scanner struct {
	cfg Config
	log *slog.Logger
}

// New creates a Scanner with the given config.
func New(cfg Config) *Scanner {
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scanner{cfg: cfg, log: log}
}

// ScanRGBA runs a one-shot scan with default settings. See
// Scanner.ScanRGBA.
func ScanRGBA(buf []byte, width, height int) string {
	return New(DefaultConfig()).ScanRGBA(buf, width, height)
}

// Scan decodes the first Data Matrix symbol found in the image. The slice is
// empty when nothing decodes; the reason tells which stage gave up.
func (s *Scanner) Scan(ctx context.Context, img image.Image) ([]Detection, Reason) {
	if img == nil {
		return nil, ReasonInvalidInput
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, ReasonInvalidInput
	}
	return s.scanLuminance(ctx, binarize.FromImage(img))
}

// ScanRGBA decodes from a tightly packed RGBA buffer of width*height*4
// bytes and serializes the outcome. This is the fail-soft string boundary:
// any failure, including malformed input, yields the empty JSON array.
func (s *Scanner) ScanRGBA(buf []byte, width, height int) string {
	lum, err := binarize.FromRGBA(buf, width, height)
	if err != nil {
		s.log.Debug("invalid rgba input", "width", width, "height", height, "len", len(buf))
		return emptyResult
	}
	detections, reason := s.scanLuminance(context.Background(), lum)
	if reason != ReasonNone {
		return emptyResult
	}
	return Serialize(detections)
}

func (s *Scanner) scanLuminance(ctx context.Context, lum *binarize.Luminance) ([]Detection, Reason) {
	bitmap := lum.Threshold(s.cfg.Threshold)

	if s.cfg.TryPure {
		if result, err := detect.DetectPure(bitmap); err == nil {
			if payload, err := decode.Decode(result.Grid); err == nil && len(payload.Bytes) > 0 {
				s.log.Debug("decoded pure symbol", "bytes", len(payload.Bytes))
				return []Detection{toDetection(payload, result)}, ReasonNone
			}
		}
	}

	result, err := detect.Detect(ctx, bitmap)
	if err != nil {
		s.log.Debug("detection failed", "error", err)
		if errors.Is(err, detect.ErrDegenerateGrid) {
			return nil, ReasonDegenerateGrid
		}
		return nil, ReasonNoRegionFound
	}

	payload, err := decode.Decode(result.Grid)
	if err != nil {
		s.log.Debug("decode failed", "error", err)
		if errors.Is(err, decode.ErrChecksum) {
			return nil, ReasonUncorrectableData
		}
		return nil, ReasonDecodeModeInconsistent
	}
	if len(payload.Bytes) == 0 {
		// An empty payload carries no information to report.
		return nil, ReasonDecodeModeInconsistent
	}

	s.log.Debug("decoded symbol",
		"bytes", len(payload.Bytes),
		"errors_corrected", payload.ErrorsCorrected)
	return []Detection{toDetection(payload, result)}, ReasonNone
}

func toDetection(payload *decode.Result, result *detect.Result) Detection {
	return Detection{
		Data:            payload.Bytes,
		Text:            payload.Text,
		Corners:         result.Corners,
		ErrorsCorrected: payload.ErrorsCorrected,
	}
}
