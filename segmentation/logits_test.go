package segmentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogitsFromSliceValidatesLength(t *testing.T) {
	_, err := LogitsFromSlice(make([]float32, 5), 2, 2, 2)
	assert.Error(t, err)

	l, err := LogitsFromSlice(make([]float32, 8), 2, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Classes)
}

func TestAccumulate(t *testing.T) {
	a, err := LogitsFromSlice([]float32{1, 2, 3, 4}, 1, 2, 2)
	require.NoError(t, err)
	b, err := LogitsFromSlice([]float32{10, 20, 30, 40}, 1, 2, 2)
	require.NoError(t, err)

	require.NoError(t, a.Accumulate(b))
	assert.Equal(t, []float32{11, 22, 33, 44}, a.data())

	mismatched := NewLogits(2, 2, 2)
	assert.Error(t, a.Accumulate(mismatched))
}

func TestFlipHorizontal(t *testing.T) {
	l, err := LogitsFromSlice([]float32{
		1, 2, 3,
		4, 5, 6,
	}, 1, 2, 3)
	require.NoError(t, err)

	flipped := l.FlipHorizontal()
	assert.Equal(t, []float32{
		3, 2, 1,
		6, 5, 4,
	}, flipped.data())

	// A double flip restores the original.
	assert.Equal(t, l.data(), flipped.FlipHorizontal().data())
}

func TestFlipVertical(t *testing.T) {
	l, err := LogitsFromSlice([]float32{
		1, 2,
		3, 4,
		5, 6,
	}, 1, 3, 2)
	require.NoError(t, err)

	flipped := l.FlipVertical()
	assert.Equal(t, []float32{
		5, 6,
		3, 4,
		1, 2,
	}, flipped.data())
	assert.Equal(t, l.data(), flipped.FlipVertical().data())
}

func TestResizeBilinearIdentityAndConstant(t *testing.T) {
	l, err := LogitsFromSlice([]float32{1, 2, 3, 4}, 1, 2, 2)
	require.NoError(t, err)
	assert.Same(t, l, l.ResizeBilinear(2, 2))

	// A constant plane stays constant under interpolation.
	flat, err := LogitsFromSlice([]float32{7, 7, 7, 7}, 1, 2, 2)
	require.NoError(t, err)
	up := flat.ResizeBilinear(5, 3)
	require.Equal(t, 15, len(up.data()))
	for _, v := range up.data() {
		assert.InDelta(t, 7.0, v, 1e-5)
	}
}

func TestResizeBilinearPreservesArgmaxOfSeparatedClasses(t *testing.T) {
	// Class 0 strong on the left half, class 1 strong on the right.
	l, err := LogitsFromSlice([]float32{
		// class 0
		9, 9, 0, 0,
		9, 9, 0, 0,
		// class 1
		0, 0, 9, 9,
		0, 0, 9, 9,
	}, 2, 2, 4)
	require.NoError(t, err)

	up := l.ResizeBilinear(8, 4)
	labels, err := up.Argmax()
	require.NoError(t, err)
	assert.Equal(t, 0, labels.At(0, 0))
	assert.Equal(t, 0, labels.At(1, 3))
	assert.Equal(t, 1, labels.At(7, 0))
	assert.Equal(t, 1, labels.At(6, 3))
}
