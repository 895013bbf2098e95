package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/detector"
)

func TestServer_HealthHandler(t *testing.T) {
	server := newTestServer(&mockPipeline{})

	tests := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"GET request success", http.MethodGet, http.StatusOK},
		{"POST request not allowed", http.MethodPost, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			server.healthHandler(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var resp HealthResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, "healthy", resp.Status)
				assert.NotEmpty(t, resp.Time)
			}
		})
	}
}

func TestServer_InfoHandler(t *testing.T) {
	server := newTestServer(&mockPipeline{})
	req := httptest.NewRequest(http.MethodGet, "/info", nil)
	w := httptest.NewRecorder()

	server.infoHandler(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var info map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Contains(t, info, "models_dir")
}

func TestServer_DetectHandler(t *testing.T) {
	server := newTestServer(&mockPipeline{})

	imageData, err := encodePNG(100, 100)
	require.NoError(t, err)
	req, err := multipartImageRequest("/detect", imageData)
	require.NoError(t, err)
	w := httptest.NewRecorder()

	server.detectHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Result)
	assert.Equal(t, 100, resp.Result.Width)
	require.Len(t, resp.Result.Faces, 1)
	assert.Equal(t, detector.FocalKindFace, resp.Result.FocalPoint.Kind)
	assert.Nil(t, resp.Result.Framing)
}

func TestServer_DetectHandlerWithFraming(t *testing.T) {
	server := newTestServer(&mockPipeline{})

	imageData, err := encodePNG(640, 480)
	require.NoError(t, err)
	req, err := multipartImageRequest("/detect?framing=1", imageData)
	require.NoError(t, err)
	w := httptest.NewRecorder()

	server.detectHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	require.NotNil(t, resp.Result.Framing)
	assert.False(t, resp.Result.Framing.Start.Empty())
	assert.False(t, resp.Result.Framing.End.Empty())
}

func TestServer_DetectHandlerNoFacesFallback(t *testing.T) {
	server := newTestServer(&mockPipeline{noFaces: true})

	imageData, err := encodePNG(50, 50)
	require.NoError(t, err)
	req, err := multipartImageRequest("/detect", imageData)
	require.NoError(t, err)
	w := httptest.NewRecorder()

	server.detectHandler(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp DetectResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Empty(t, resp.Result.Faces)
	assert.Equal(t, detector.FocalKindDefault, resp.Result.FocalPoint.Kind)
	assert.InDelta(t, 0.5, resp.Result.FocalPoint.X, 1e-9)
	assert.InDelta(t, 0.5, resp.Result.FocalPoint.Y, 1e-9)
}

func TestServer_DetectHandlerErrors(t *testing.T) {
	t.Run("wrong method", func(t *testing.T) {
		server := newTestServer(&mockPipeline{})
		req := httptest.NewRequest(http.MethodGet, "/detect", nil)
		w := httptest.NewRecorder()
		server.detectHandler(w, req)
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("no file", func(t *testing.T) {
		server := newTestServer(&mockPipeline{})
		req := httptest.NewRequest(http.MethodPost, "/detect", nil)
		w := httptest.NewRecorder()
		server.detectHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid image", func(t *testing.T) {
		server := newTestServer(&mockPipeline{})
		req, err := multipartImageRequest("/detect", []byte("not an image"))
		require.NoError(t, err)
		w := httptest.NewRecorder()
		server.detectHandler(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("pipeline failure", func(t *testing.T) {
		server := newTestServer(&mockPipeline{failProcess: true})
		imageData, err := encodePNG(10, 10)
		require.NoError(t, err)
		req, err := multipartImageRequest("/detect", imageData)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		server.detectHandler(w, req)
		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp DetectResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "Detection failed")
	})
}

func TestServer_Close(t *testing.T) {
	mock := &mockPipeline{}
	server := newTestServer(mock)
	require.NoError(t, server.Close())
	assert.True(t, mock.closed)
}

func TestServer_SetupRoutes(t *testing.T) {
	server := newTestServer(&mockPipeline{})
	mux := http.NewServeMux()
	server.SetupRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
