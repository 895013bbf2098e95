package detector

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/mempool"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/onnx"
	"github.com/JCookit/MMM-OneDrive-sub001/internal/utils"
	"github.com/yalue/onnxruntime_go"
)

// InferenceResult holds the raw forward-pass output for one image.
type InferenceResult struct {
	Raw            RawOutput
	OriginalWidth  int
	OriginalHeight int
	ProcessingTime int64 // inference time in nanoseconds
}

// FaceDetector runs SSD face detection using ONNX Runtime and decodes the
// output into detections and a focal point.
type FaceDetector struct {
	config    Config
	decoder   *Decoder
	session   *onnxruntime_go.DynamicAdvancedSession
	inputInfo onnxruntime_go.InputOutputInfo
	mu        sync.RWMutex
}

// NewFaceDetector creates a face detector with the given configuration.
// The anchor spec is validated against the model's declared output width;
// a mismatch fails here rather than producing silently wrong geometry.
func NewFaceDetector(config Config) (*FaceDetector, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	if err := validateModelFile(config.ModelPath); err != nil {
		return nil, err
	}

	decoder, err := NewDecoder(config.Anchors, config.Decode)
	if err != nil {
		return nil, err
	}

	slog.Debug("Initializing face detector",
		"model_path", config.ModelPath,
		"input_size", config.Anchors.InputSize,
		"num_anchors", decoder.NumAnchors(),
		"gpu_enabled", config.GPU.UseGPU)

	if err := setupONNXEnvironment(); err != nil {
		return nil, err
	}

	inputInfo, outputInfos, err := validateModelInfo(config)
	if err != nil {
		return nil, err
	}
	if err := checkDeclaredAnchorWidth(outputInfos, decoder.NumAnchors()); err != nil {
		return nil, err
	}

	session, err := createSession(config, inputInfo.Name)
	if err != nil {
		return nil, err
	}

	slog.Debug("Face detector initialized successfully")
	return &FaceDetector{
		config:    config,
		decoder:   decoder,
		session:   session,
		inputInfo: inputInfo,
	}, nil
}

// checkDeclaredAnchorWidth compares the model's static output widths (when
// declared) against the anchor spec. The model is ground truth.
func checkDeclaredAnchorWidth(outputs []onnxruntime_go.InputOutputInfo, numAnchors int) error {
	if len(outputs) != 2 {
		return fmt.Errorf("expected 2 outputs (scores, boxes), got %d", len(outputs))
	}
	if n := onnx.FlatLen(outputs[0].Dimensions); n > 1 && n != scoreStride*numAnchors {
		return fmt.Errorf("score output width %d does not match anchor spec (%d anchors, want %d)",
			n, numAnchors, scoreStride*numAnchors)
	}
	if n := onnx.FlatLen(outputs[1].Dimensions); n > 1 && n != boxStride*numAnchors {
		return fmt.Errorf("box output width %d does not match anchor spec (%d anchors, want %d)",
			n, numAnchors, boxStride*numAnchors)
	}
	return nil
}

// Close releases resources used by the detector.
func (d *FaceDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session != nil {
		if err := d.session.Destroy(); err != nil {
			fmt.Printf("Failed to destroy detector session: %v", err)
		}
		d.session = nil
	}
	// DestroyEnvironment is left to application shutdown.
	return nil
}

// GetConfig returns a copy of the detector's configuration.
func (d *FaceDetector) GetConfig() Config {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.config
}

// Decoder exposes the tensor decoder for callers that obtain raw output
// elsewhere (tests, replayed captures).
func (d *FaceDetector) Decoder() *Decoder { return d.decoder }

// preprocessImage resamples the image to the model's square input and
// builds the mean-subtracted BGR blob. The returned release func hands the
// pooled buffer back.
func (d *FaceDetector) preprocessImage(img image.Image) (onnx.Tensor, func(), error) {
	size := d.config.Anchors.InputSize
	resized, err := utils.ResizeExact(img, size, size)
	if err != nil {
		return onnx.Tensor{}, nil, fmt.Errorf("failed to resize image: %w", err)
	}

	blob, w, h, err := utils.NormalizeMeanBGRPooled(resized, d.config.Mean)
	if err != nil {
		return onnx.Tensor{}, nil, fmt.Errorf("failed to normalize image: %w", err)
	}
	release := func() { mempool.PutFloat32(blob) }

	tensor, err := onnx.NewImageTensor(blob, 3, h, w)
	if err != nil {
		release()
		return onnx.Tensor{}, nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	return tensor, release, nil
}

// runInferenceCore executes the session and copies out both outputs.
func (d *FaceDetector) runInferenceCore(tensor onnx.Tensor) (RawOutput, error) {
	if err := onnx.VerifyImageTensor(tensor); err != nil {
		return RawOutput{}, fmt.Errorf("invalid tensor: %w", err)
	}

	d.mu.RLock()
	session := d.session
	d.mu.RUnlock()
	if session == nil {
		return RawOutput{}, errors.New("detector session is nil")
	}

	inputTensor, err := onnxruntime_go.NewTensor(onnxruntime_go.NewShape(tensor.Shape...), tensor.Data)
	if err != nil {
		return RawOutput{}, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer func() {
		if err := inputTensor.Destroy(); err != nil {
			fmt.Fprintf(os.Stderr, "Error destroying input tensor: %v\n", err)
		}
	}()

	outputs := []onnxruntime_go.Value{nil, nil}
	if err := session.Run([]onnxruntime_go.Value{inputTensor}, outputs); err != nil {
		return RawOutput{}, fmt.Errorf("inference failed: %w", err)
	}
	defer func() {
		for _, out := range outputs {
			if out == nil {
				continue
			}
			if err := out.Destroy(); err != nil {
				fmt.Fprintf(os.Stderr, "Error destroying output tensor: %v\n", err)
			}
		}
	}()

	scores, err := tensorData(outputs[0], d.config.ScoresOutput)
	if err != nil {
		return RawOutput{}, err
	}
	boxes, err := tensorData(outputs[1], d.config.BoxesOutput)
	if err != nil {
		return RawOutput{}, err
	}
	return RawOutput{Scores: scores, Boxes: boxes}, nil
}

// tensorData copies the float32 payload out of an output tensor so it
// survives tensor destruction.
func tensorData(v onnxruntime_go.Value, name string) ([]float32, error) {
	t, ok := v.(*onnxruntime_go.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("output %s: expected float32 tensor, got %T", name, v)
	}
	src := t.GetData()
	out := make([]float32, len(src))
	copy(out, src)
	return out, nil
}

// RunInference performs the forward pass on a single image and returns the
// raw tensors. Callers wanting bounded latency pass a context; the decode
// stages after this are small bounded numeric loops.
func (d *FaceDetector) RunInference(ctx context.Context, img image.Image) (*InferenceResult, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	bounds := img.Bounds()

	tensor, release, err := d.preprocessImage(img)
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}
	defer release()

	raw, err := d.runInferenceCore(tensor)
	if err != nil {
		return nil, err
	}
	if err := d.decoder.checkShapes(raw); err != nil {
		return nil, err
	}

	return &InferenceResult{
		Raw:            raw,
		OriginalWidth:  bounds.Dx(),
		OriginalHeight: bounds.Dy(),
		ProcessingTime: time.Since(start).Nanoseconds(),
	}, nil
}

// Detect runs inference and decode, returning suppressed detections in the
// source image's pixel space.
func (d *FaceDetector) Detect(ctx context.Context, img image.Image) ([]Detection, error) {
	res, err := d.RunInference(ctx, img)
	if err != nil {
		return nil, err
	}
	return d.decoder.Decode(res.Raw, res.OriginalWidth, res.OriginalHeight)
}

// DetectFocalPoint runs the full pipeline down to the single focal point.
func (d *FaceDetector) DetectFocalPoint(ctx context.Context, img image.Image) ([]Detection, FocalPoint, error) {
	res, err := d.RunInference(ctx, img)
	if err != nil {
		return nil, FocalPoint{}, err
	}
	return d.decoder.DecodeFocalPoint(res.Raw, res.OriginalWidth, res.OriginalHeight)
}

// GetModelInfo returns information about the loaded detection model.
func (d *FaceDetector) GetModelInfo() map[string]interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return map[string]interface{}{
		"model_path":           d.config.ModelPath,
		"input_name":           d.inputInfo.Name,
		"input_size":           d.config.Anchors.InputSize,
		"num_anchors":          d.decoder.NumAnchors(),
		"scores_output":        d.config.ScoresOutput,
		"boxes_output":         d.config.BoxesOutput,
		"confidence_threshold": d.config.Decode.Filter.ConfidenceThreshold,
		"iou_threshold":        d.config.Decode.IoUThreshold,
		"num_threads":          d.config.NumThreads,
		"gpu": map[string]interface{}{
			"enabled":            d.config.GPU.UseGPU,
			"device_id":          d.config.GPU.DeviceID,
			"memory_limit_bytes": d.config.GPU.GPUMemLimit,
		},
	}
}
