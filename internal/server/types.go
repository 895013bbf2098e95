package server

import (
	"image"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/framing"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
)

// pipelineInterface defines the methods the server needs from a pipeline.
type pipelineInterface interface {
	ProcessImage(img image.Image) (*pipeline.ImageResult, error)
	Info() map[string]interface{}
	Close() error
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    pipelineInterface
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
	viewport    framing.Viewport
	zoom        float64
}

// Config holds server configuration.
type Config struct {
	Host           string
	Port           int
	CORSOrigin     string
	MaxUploadMB    int64
	TimeoutSec     int
	PipelineConfig pipeline.Config
	Viewport       framing.Viewport
	Zoom           float64
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// DetectResult is the detection payload for one image.
type DetectResult struct {
	Width      int                 `json:"width"`
	Height     int                 `json:"height"`
	Faces      []pipeline.FaceBox  `json:"faces"`
	FocalPoint detector.FocalPoint `json:"focal_point"`
	Framing    *framing.PanZoom    `json:"framing,omitempty"`
	Processing struct {
		InferenceMs int64 `json:"inference_ms"`
		TotalMs     int64 `json:"total_ms"`
	} `json:"processing"`
}

// DetectResponse wraps the detection result with a success flag.
type DetectResponse struct {
	Success bool          `json:"success"`
	Result  *DetectResult `json:"result,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// NewServer creates a detection server, building the pipeline from the
// provided configuration.
func NewServer(config Config) (*Server, error) {
	cfg := config.PipelineConfig
	cfg.Detector.UpdateModelPath(cfg.ModelsDir)

	nb := pipeline.NewBuilder().
		WithModelsDir(cfg.ModelsDir).
		WithThreads(cfg.Detector.NumThreads).
		WithConfidenceThreshold(cfg.Detector.Decode.Filter.ConfidenceThreshold).
		WithIoUThreshold(cfg.Detector.Decode.IoUThreshold).
		WithGPU(cfg.Detector.GPU.UseGPU).
		WithGPUDevice(cfg.Detector.GPU.DeviceID)
	if cfg.Detector.ModelPath != "" {
		nb = nb.WithDetectorModelPath(cfg.Detector.ModelPath)
	}

	pl, err := nb.Build()
	if err != nil {
		return nil, err
	}

	return newServerWithPipeline(pl, config), nil
}

// newServerWithPipeline wires a server around an existing pipeline. Split
// out so tests can inject a fake.
func newServerWithPipeline(pl pipelineInterface, config Config) *Server {
	vp := config.Viewport
	if vp.Width <= 0 || vp.Height <= 0 {
		vp = framing.Viewport{Width: 1920, Height: 1080}
	}
	zoom := config.Zoom
	if zoom < 1 {
		zoom = framing.DefaultZoom
	}
	maxUpload := config.MaxUploadMB
	if maxUpload <= 0 {
		maxUpload = 32
	}
	return &Server{
		pipeline:    pl,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: maxUpload,
		timeoutSec:  config.TimeoutSec,
		viewport:    vp,
		zoom:        zoom,
	}
}

// Close releases server resources.
func (s *Server) Close() error {
	if s.pipeline != nil {
		return s.pipeline.Close()
	}
	return nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/info", s.corsMiddleware(s.infoHandler))
	mux.HandleFunc("/detect", s.corsMiddleware(s.detectHandler))
	mux.HandleFunc("/ws", s.detectWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}
