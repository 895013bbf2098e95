package utils

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/JCookit/MMM-OneDrive-sub001/internal/mempool"
	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ValidateImageDims rejects images with a zero or negative dimension.
func ValidateImageDims(width, height int) error {
	if width <= 0 || height <= 0 {
		return &ImageProcessingError{
			Operation: "validate",
			Err:       fmt.Errorf("degenerate image dimensions %dx%d", width, height),
		}
	}
	return nil
}

// ResizeExact resamples an image to exactly width x height without preserving
// aspect ratio, matching the fixed square input the detection model expects.
// Uses Lanczos resampling for high quality.
func ResizeExact(img image.Image, width, height int) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "resize", Err: errors.New("input image is nil")}
	}
	if width <= 0 || height <= 0 {
		return nil, &ImageProcessingError{
			Operation: "resize",
			Err:       fmt.Errorf("invalid target dimensions %dx%d", width, height),
		}
	}
	b := img.Bounds()
	if err := ValidateImageDims(b.Dx(), b.Dy()); err != nil {
		return nil, err
	}
	if b.Dx() == width && b.Dy() == height {
		return img, nil
	}
	return imaging.Resize(img, width, height, imaging.Lanczos), nil
}

// BlobMean holds per-channel mean values subtracted during normalization,
// in BGR channel order.
type BlobMean struct {
	B float64
	G float64
	R float64
}

// DefaultBlobMean returns the training-set mean of the SSD face model.
func DefaultBlobMean() BlobMean {
	return BlobMean{B: 104.0, G: 177.0, R: 123.0}
}

// NormalizeMeanBGR converts an image into a float32 tensor in NCHW layout
// with BGR channel order and per-channel mean subtraction. Returns the
// buffer plus the image width and height.
func NormalizeMeanBGR(img image.Image, mean BlobMean) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := ValidateImageDims(w, h); err != nil {
		return nil, 0, 0, err
	}
	buf := make([]float32, 3*w*h)
	fillMeanBGR(img, buf, mean)
	return buf, w, h, nil
}

// NormalizeMeanBGRPooled is like NormalizeMeanBGR but draws the output
// buffer from the shared float32 pool. The caller must return it via
// mempool.PutFloat32 once the tensor has been consumed.
func NormalizeMeanBGRPooled(img image.Image, mean BlobMean) ([]float32, int, int, error) {
	if img == nil {
		return nil, 0, 0, &ImageProcessingError{Operation: "normalize", Err: errors.New("input image is nil")}
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if err := ValidateImageDims(w, h); err != nil {
		return nil, 0, 0, err
	}
	buf := mempool.GetFloat32(3 * w * h)
	fillMeanBGR(img, buf, mean)
	return buf, w, h, nil
}

// fillMeanBGR writes the three mean-subtracted channel planes into buf.
// buf must have length >= 3*w*h.
func fillMeanBGR(img image.Image, buf []float32, mean BlobMean) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := w * h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y))
			nrgba, ok := c.(color.NRGBA)
			if !ok {
				continue
			}
			idx := y*w + x
			buf[idx] = float32(float64(nrgba.B) - mean.B)
			buf[plane+idx] = float32(float64(nrgba.G) - mean.G)
			buf[2*plane+idx] = float32(float64(nrgba.R) - mean.R)
		}
	}
}

// CropImageRect crops an image to the given rectangle.
func CropImageRect(img image.Image, rect image.Rectangle) image.Image {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return imaging.New(0, 0, color.Transparent)
	}
	return imaging.Crop(img, rect)
}

// CropImageBox crops an image using a float Box.
func CropImageBox(img image.Image, box Box) image.Image {
	return CropImageRect(img, box.ToRect(img.Bounds()))
}
