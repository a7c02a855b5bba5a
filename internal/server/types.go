package server

import (
	"github.com/scanforge/dmscan/internal/pdf"
	"github.com/scanforge/dmscan/internal/scanner"
)

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// DetectionResult is one decoded symbol in an API response.
type DetectionResult struct {
	Data            string       `json:"data"`
	Corners         [][2]float64 `json:"corners,omitempty"`
	ErrorsCorrected int          `json:"errors_corrected"`
}

// ScanResult holds the detections for one scanned image.
type ScanResult struct {
	Detections []DetectionResult `json:"detections"`
	Reason     string            `json:"reason,omitempty"`
	Width      int               `json:"width"`
	Height     int               `json:"height"`
	Processing struct {
		TotalTimeMs int64 `json:"total_time_ms"`
	} `json:"processing"`
}

// ScanResponse is the envelope for image scan responses.
type ScanResponse struct {
	Success bool        `json:"success"`
	Result  *ScanResult `json:"result,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PDFScanResponse is the envelope for PDF scan responses.
type PDFScanResponse struct {
	Success bool             `json:"success"`
	Pages   []pdf.PageResult `json:"pages,omitempty"`
	Error   string           `json:"error,omitempty"`
}

func toDetectionResults(detections []scanner.Detection) []DetectionResult {
	out := make([]DetectionResult, len(detections))
	for i, d := range detections {
		corners := make([][2]float64, len(d.Corners))
		for j, c := range d.Corners {
			corners[j] = [2]float64{c.X, c.Y}
		}
		out[i] = DetectionResult{
			Data:            d.Text,
			Corners:         corners,
			ErrorsCorrected: d.ErrorsCorrected,
		}
	}
	return out
}
