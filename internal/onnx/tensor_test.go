package onnx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageTensor(t *testing.T) {
	data := make([]float32, 3*4*5)
	tensor, err := NewImageTensor(data, 3, 4, 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3, 4, 5}, tensor.Shape)
	assert.Len(t, tensor.Data, 60)
}

func TestNewImageTensorErrors(t *testing.T) {
	_, err := NewImageTensor(nil, 3, 4, 5)
	assert.Error(t, err)

	_, err = NewImageTensor(make([]float32, 10), 3, 4, 5)
	assert.ErrorContains(t, err, "unexpected data length")
}

func TestValidateNCHW(t *testing.T) {
	assert.NoError(t, ValidateNCHW([]int64{1, 3, 300, 300}))
	assert.Error(t, ValidateNCHW([]int64{1, 3, 300}))
	assert.Error(t, ValidateNCHW([]int64{1, 3, 0, 300}))
	assert.Error(t, ValidateNCHW([]int64{1, 3, -1, 300}))
}

func TestVerifyImageTensor(t *testing.T) {
	tensor := Tensor{Data: make([]float32, 12), Shape: []int64{1, 3, 2, 2}}
	assert.NoError(t, VerifyImageTensor(tensor))

	tensor.Data = tensor.Data[:10]
	assert.Error(t, VerifyImageTensor(tensor))
}

func TestFlatLen(t *testing.T) {
	assert.Equal(t, 270000, FlatLen([]int64{1, 3, 300, 300}))
	// Dynamic dims count as 1.
	assert.Equal(t, 17464, FlatLen([]int64{-1, 8732, 2}))
	assert.Equal(t, 1, FlatLen(nil))
}

func TestTensorStats(t *testing.T) {
	minV, maxV, mean := TensorStats([]float32{-1, 0, 1, 4})
	assert.InDelta(t, -1, minV, 1e-6)
	assert.InDelta(t, 4, maxV, 1e-6)
	assert.InDelta(t, 1, mean, 1e-6)

	minV, maxV, mean = TensorStats(nil)
	assert.Zero(t, minV)
	assert.Zero(t, maxV)
	assert.Zero(t, mean)
}
