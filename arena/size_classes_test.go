package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 16},
		{11, 16},
		{16, 16},
		{17, 32},
		{31, 32},
		{58, 64},
		{61, 64},
		{64, 64},
		{65, 128},
		{128, 128},
		{129, 256},
		{300, 512},
		{1000, 1024},
	}
	for _, tt := range tests {
		got, err := Classify(tt.size, MinClassFloor)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Classify(%d)", tt.size)
	}
}

func TestClassify_RejectsNonPositive(t *testing.T) {
	for _, size := range []int{0, -1, -4096} {
		_, err := Classify(size, MinClassFloor)
		require.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
	}
}

func TestClassify_RespectsMinClass(t *testing.T) {
	got, err := Classify(1, 64)
	require.NoError(t, err)
	require.Equal(t, 64, got)

	got, err = Classify(65, 64)
	require.NoError(t, err)
	require.Equal(t, 128, got)
}

// TestClassify_Properties sweeps every small size: the class is a power of two, covers
// the request, and at most doubles the class of half the request.
func TestClassify_Properties(t *testing.T) {
	const pageSize = DefaultPageSize
	for s := 1; s <= pageSize/2; s++ {
		c, err := Classify(s, MinClassFloor)
		require.NoError(t, err)
		require.True(t, isPowerOfTwo(c), "class %d of %d", c, s)
		require.GreaterOrEqual(t, c, s)
		require.GreaterOrEqual(t, c, MinClassFloor)
		require.LessOrEqual(t, c, pageSize/2)

		if s > 1 {
			half, err := Classify((s+1)/2, MinClassFloor)
			require.NoError(t, err)
			require.LessOrEqual(t, c, 2*half, "size %d", s)
		}
	}
}

func TestBlockClass_SpanRounding(t *testing.T) {
	a := newTestAllocator(t)

	tests := []struct {
		size     int
		class    int
		spanning bool
	}{
		{16, 16, false},
		{128, 128, false},
		{129, 256, true},
		{256, 256, true},
		{257, 512, true},
		{1000, 1024, true},
	}
	for _, tt := range tests {
		class, err := a.blockClass(tt.size)
		require.NoError(t, err)
		assert.Equal(t, tt.class, class, "size %d", tt.size)
		assert.Equal(t, tt.spanning, a.isSpanClass(class), "size %d", tt.size)
		if tt.spanning {
			assert.Zero(t, class%DefaultPageSize)
		}
	}
}

func TestConfig_BlockClass(t *testing.T) {
	cfg := Config{PageSize: 4096, PageCount: 4, MinClass: 32}

	class, span, err := cfg.BlockClass(100)
	require.NoError(t, err)
	require.Equal(t, 128, class)
	require.False(t, span)

	class, span, err = cfg.BlockClass(2049)
	require.NoError(t, err)
	require.Equal(t, 4096, class)
	require.True(t, span)

	_, _, err = cfg.BlockClass(0)
	require.ErrorIs(t, err, ErrInvalidSize)
}
