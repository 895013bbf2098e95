package server

import (
	"bytes"
	"encoding/json"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"time"

	_ "golang.org/x/image/bmp"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/framing"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	s.writeJSON(w, http.StatusOK, response)
}

// infoHandler returns pipeline and model information.
func (s *Server) infoHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.pipeline == nil {
		s.writeErrorResponse(w, "Pipeline not available", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, http.StatusOK, s.pipeline.Info())
}

// detectHandler processes face detection requests: multipart image upload
// in, faces plus focal point JSON out. With ?framing=1 the response also
// carries the pan/zoom crop plan.
func (s *Server) detectHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > s.maxUploadMB*1024*1024 {
		s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		return
	}

	imageData, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read image data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(imageData)))

	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
		return
	}

	if s.pipeline == nil {
		s.writeErrorResponse(w, "Pipeline not available", http.StatusServiceUnavailable)
		return
	}

	start := time.Now()
	res, err := s.pipeline.ProcessImage(img)
	if err != nil {
		detectRequestsTotal.WithLabelValues("http", "error").Inc()
		slog.Error("Detection failed", "error", err, "filename", header.Filename)
		s.writeErrorResponse(w, "Detection failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	detectRequestsTotal.WithLabelValues("http", "success").Inc()
	detectProcessingDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())

	withFraming := r.URL.Query().Get("framing") != ""
	result, err := s.buildDetectResult(res, withFraming)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, DetectResponse{Success: true, Result: result})
}

// buildDetectResult converts a pipeline result to the API shape and records
// the detection metrics.
func (s *Server) buildDetectResult(res *pipeline.ImageResult, withFraming bool) (*DetectResult, error) {
	facesDetected.Observe(float64(len(res.Faces)))
	if res.FocalPoint.Kind == detector.FocalKindDefault {
		focalFallbacksTotal.Inc()
	}

	out := &DetectResult{
		Width:      res.Width,
		Height:     res.Height,
		Faces:      res.Faces,
		FocalPoint: res.FocalPoint,
	}
	out.Processing.InferenceMs = res.Processing.InferenceNs / int64(time.Millisecond)
	out.Processing.TotalMs = res.Processing.TotalNs / int64(time.Millisecond)

	if withFraming {
		pz, err := framing.Plan(res.Width, res.Height, res.FocalPoint, s.viewport, s.zoom)
		if err != nil {
			return nil, err
		}
		out.Framing = &pz
	}
	return out, nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	s.writeJSON(w, status, DetectResponse{Success: false, Error: message})
}
