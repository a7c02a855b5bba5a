package pdf

import (
	"context"
	"fmt"

	"github.com/scanforge/dmscan/internal/scanner"
)

// Detection is one decoded symbol in a page result. It marshals to the same
// shape the image scan endpoint returns.
type Detection struct {
	Data            string       `json:"data"`
	Corners         [][2]float64 `json:"corners,omitempty"`
	ErrorsCorrected int          `json:"errors_corrected"`
}

// PageResult holds the detections found on one PDF page.
type PageResult struct {
	Page       int         `json:"page"`
	Images     int         `json:"images"`
	Detections []Detection `json:"detections"`
}

func toDetections(detections []scanner.Detection) []Detection {
	out := make([]Detection, len(detections))
	for i, d := range detections {
		corners := make([][2]float64, len(d.Corners))
		for j, c := range d.Corners {
			corners[j] = [2]float64{c.X, c.Y}
		}
		out[i] = Detection{
			Data:            d.Text,
			Corners:         corners,
			ErrorsCorrected: d.ErrorsCorrected,
		}
	}
	return out
}

// ScanFile extracts the embedded images of a PDF and scans each of them,
// returning per-page results. Pages whose images yield no detection are
// still listed so callers can distinguish "no symbol" from "no image".
func ScanFile(ctx context.Context, sc *scanner.Scanner, filename, pageRange string) ([]PageResult, error) {
	images, err := ExtractImages(filename, pageRange)
	if err != nil {
		return nil, fmt.Errorf("pdf scan: %w", err)
	}

	results := make([]PageResult, 0, len(images))
	for _, page := range Pages(images) {
		pageImages := images[page]
		result := PageResult{Page: page, Images: len(pageImages)}
		for _, img := range pageImages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			detections, _ := sc.Scan(ctx, img)
			result.Detections = append(result.Detections, toDetections(detections)...)
		}
		results = append(results, result)
	}
	return results, nil
}
