package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestAllocator returns an allocator over the default 7 x 256 geometry, closed on cleanup.
func newTestAllocator(t testing.TB) *Allocator {
	t.Helper()
	return newTestAllocatorWithConfig(t, DefaultConfig())
}

func newTestAllocatorWithConfig(t testing.TB, cfg Config) *Allocator {
	t.Helper()
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if !a.closed {
			require.NoError(t, a.Close())
		}
	})
	return a
}

// mustAlloc allocates size bytes and fails the test on error.
func mustAlloc(t testing.TB, a *Allocator, size int) (Addr, []byte) {
	t.Helper()
	addr, b, err := a.Alloc(size)
	require.NoError(t, err, "alloc %d", size)
	require.NotEqual(t, NilAddr, addr)
	return addr, b
}

// requireValid fails the test when the page table breaks an invariant.
func requireValid(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, a.Verify())
}

// fill writes a recognisable pattern derived from tag into b.
func fill(b []byte, tag byte) {
	for i := range b {
		b[i] = tag + byte(i)
	}
}

// requirePattern checks that the first n bytes of b hold the pattern written by fill.
func requirePattern(t testing.TB, b []byte, n int, tag byte) {
	t.Helper()
	require.GreaterOrEqual(t, len(b), n)
	for i := range n {
		require.Equal(t, tag+byte(i), b[i], "byte %d", i)
	}
}

func pageView(a *Allocator, idx PageIndex) PageView {
	return a.Snapshot().Pages[idx]
}
