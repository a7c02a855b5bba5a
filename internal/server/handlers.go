package server

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/scanforge/dmscan/internal/pdf"
	"github.com/scanforge/dmscan/internal/scanner"
	"github.com/scanforge/dmscan/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// scanImageHandler scans one uploaded image for a Data Matrix symbol.
func (s *Server) scanImageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	img, ok := s.readImageUpload(w, r)
	if !ok {
		return
	}

	start := time.Now()
	ctx, cancel := s.requestContext(r)
	defer cancel()
	detections, reason := s.scanner.Scan(ctx, img)
	elapsed := time.Since(start)

	scanRequestsTotal.WithLabelValues("image", reason.String()).Inc()
	scanDuration.WithLabelValues("image").Observe(elapsed.Seconds())
	symbolsDetected.WithLabelValues("image").Observe(float64(len(detections)))

	result := &ScanResult{
		Detections: toDetectionResults(detections),
		Width:      img.Bounds().Dx(),
		Height:     img.Bounds().Dy(),
	}
	if reason != scanner.ReasonNone {
		result.Reason = reason.String()
	}
	result.Processing.TotalTimeMs = elapsed.Milliseconds()

	s.writeJSON(w, http.StatusOK, ScanResponse{Success: true, Result: result})
}

// scanPDFHandler scans the images embedded in an uploaded PDF.
func (s *Server) scanPDFHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data, ok := s.readUpload(w, r, "pdf")
	if !ok {
		return
	}

	// pdfcpu extraction works on files; stage the upload.
	tmp, err := os.CreateTemp("", "dmscan-upload-*.pdf")
	if err != nil {
		s.writeErrorResponse(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		s.writeErrorResponse(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	_ = tmp.Close()

	start := time.Now()
	ctx, cancel := s.requestContext(r)
	defer cancel()
	pages, err := pdf.ScanFile(ctx, s.scanner, tmpName, r.FormValue("pages"))
	elapsed := time.Since(start)

	if err != nil {
		scanRequestsTotal.WithLabelValues("pdf", "error").Inc()
		s.writeErrorResponse(w, "PDF scan failed", http.StatusUnprocessableEntity)
		return
	}
	scanRequestsTotal.WithLabelValues("pdf", "ok").Inc()
	scanDuration.WithLabelValues("pdf").Observe(elapsed.Seconds())

	s.writeJSON(w, http.StatusOK, PDFScanResponse{Success: true, Pages: pages})
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeoutSec <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), time.Duration(s.timeoutSec)*time.Second)
}

// readImageUpload parses the multipart form and decodes the "image" field.
func (s *Server) readImageUpload(w http.ResponseWriter, r *http.Request) (image.Image, bool) {
	data, ok := s.readUpload(w, r, "image")
	if !ok {
		return nil, false
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return nil, false
	}
	return img, true
}

func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, bool) {
	limit := s.maxUploadMB * 1024 * 1024
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return nil, false
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		s.writeErrorResponse(w, "No "+field+" file provided", http.StatusBadRequest)
		return nil, false
	}
	defer func() { _ = file.Close() }()

	if header.Size > limit {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return nil, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read upload", http.StatusInternalServerError)
		return nil, false
	}
	uploadSizeBytes.Observe(float64(len(data)))
	return data, true
}
