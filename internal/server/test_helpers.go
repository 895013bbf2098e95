package server

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/framing"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/pipeline"
)

// mockPipeline is a simple fake implementation of the pipeline for testing.
type mockPipeline struct {
	failProcess bool
	noFaces     bool
	closed      bool
}

// ProcessImage returns a canned detection result.
func (m *mockPipeline) ProcessImage(img image.Image) (*pipeline.ImageResult, error) {
	if m.failProcess {
		return nil, errors.New("mock detection failure")
	}
	bounds := img.Bounds()
	res := &pipeline.ImageResult{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}
	if m.noFaces {
		res.Faces = nil
		res.FocalPoint = detector.DefaultFocalPoint()
	} else {
		res.Faces = []pipeline.FaceBox{
			{X: 10, Y: 10, W: 40, H: 48, Confidence: 0.95},
		}
		res.FocalPoint = detector.FocalPoint{X: 0.3, Y: 0.34, Kind: detector.FocalKindFace}
	}
	res.Processing.InferenceNs = 2_000_000
	res.Processing.TotalNs = 3_000_000
	return res, nil
}

func (m *mockPipeline) Info() map[string]interface{} {
	return map[string]interface{}{"models_dir": "/tmp/models"}
}

func (m *mockPipeline) Close() error {
	m.closed = true
	return nil
}

// newTestServer builds a server around a mock pipeline.
func newTestServer(mock *mockPipeline) *Server {
	return newServerWithPipeline(mock, Config{
		MaxUploadMB: 8,
		Viewport:    framing.Viewport{Width: 1920, Height: 1080},
		Zoom:        framing.DefaultZoom,
	})
}

// encodePNG produces an encoded test image of the given size.
func encodePNG(w, h int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 80, G: 80, B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// multipartImageRequest builds a POST request with the image as a multipart
// form file.
func multipartImageRequest(target string, imageData []byte) (*http.Request, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("image", "test.png")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(imageData); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
