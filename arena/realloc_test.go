package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRealloc_NilAllocates(t *testing.T) {
	a := newTestAllocator(t)

	addr, b, err := a.Realloc(NilAddr, 40)
	require.NoError(t, err)
	require.Equal(t, Addr(0), addr)
	require.Len(t, b, 40)
	require.Equal(t, 1, a.Stats().AllocCalls)
	require.Zero(t, a.Stats().ReallocCalls)
}

func TestRealloc_SameClassInPlace(t *testing.T) {
	a := newTestAllocator(t)
	addr, b := mustAlloc(t, a, 58)
	fill(b, 1)

	for _, size := range []int{33, 58, 64} {
		got, nb, err := a.Realloc(addr, size)
		require.NoError(t, err)
		require.Equal(t, addr, got, "size %d", size)
		require.Len(t, nb, size)
		requirePattern(t, nb, min(size, 58), 1)
	}

	span, _ := mustAlloc(t, a, 300)
	got, _, err := a.Realloc(span, 512)
	require.NoError(t, err)
	require.Equal(t, span, got)

	require.Equal(t, 4, a.Stats().ReallocInPlace)
	require.Zero(t, a.Stats().ReallocMoved)
	requireValid(t, a)
}

// TestRealloc_Identity checks realloc(realloc(p, n), n) == realloc(p, n) with contents
// intact, for sizes below, at and above the original request.
func TestRealloc_Identity(t *testing.T) {
	for _, n := range []int{5, 40, 58, 100, 200, 900} {
		a := newTestAllocator(t)
		p, b := mustAlloc(t, a, 58)
		fill(b, 0x21)

		first, _, err := a.Realloc(p, n)
		require.NoError(t, err, "n=%d", n)
		second, nb, err := a.Realloc(first, n)
		require.NoError(t, err)
		require.Equal(t, first, second, "n=%d", n)
		requirePattern(t, nb, min(n, 58), 0x21)
		requireValid(t, a)
	}
}

func TestRealloc_GrowIntoSpanCopies(t *testing.T) {
	a := newTestAllocator(t)
	keep, _ := mustAlloc(t, a, 16)
	p, b := mustAlloc(t, a, 64)
	require.Equal(t, Addr(256), p)
	fill(b, 0x10)

	q, nb, err := a.Realloc(p, 600)
	require.NoError(t, err)
	require.Len(t, nb, 600)
	require.Equal(t, 1024, cap(nb))
	requirePattern(t, nb, 64, 0x10)
	require.Equal(t, PageDivided, pageView(a, 0).State, "page holding keep")
	require.Equal(t, PageSpan, pageView(a, PageIndex(int(q)/DefaultPageSize)).State)
	require.NoError(t, a.Free(keep))
	requireValid(t, a)
}

func TestRealloc_ShrinkSpanCopiesPrefix(t *testing.T) {
	a := newTestAllocator(t)
	p, b := mustAlloc(t, a, 1000)
	fill(b, 0x30)

	q, nb, err := a.Realloc(p, 20)
	require.NoError(t, err)
	require.Equal(t, Addr(0), q, "released span pages are reused")
	require.Len(t, nb, 20)
	requirePattern(t, nb, 20, 0x30)

	require.Equal(t, PageDivided, pageView(a, 0).State)
	for i := 1; i < DefaultPageCount; i++ {
		require.Equal(t, PageFree, pageView(a, PageIndex(i)).State)
	}
	require.Equal(t, 32, a.Stats().BytesInUse)
	requireValid(t, a)
}

// TestRealloc_ReusesCoalescedPage moves the only slot of a page into a span that
// starts on that same page, so source and destination overlap.
func TestRealloc_ReusesCoalescedPage(t *testing.T) {
	a := newTestAllocator(t)
	for i := 1; i < DefaultPageCount; i++ {
		mustAlloc(t, a, 200)
	}
	p, b := mustAlloc(t, a, 128)
	require.Equal(t, Addr(6*DefaultPageSize), p)
	fill(b, 0x55)

	q, nb, err := a.Realloc(p, 250)
	require.NoError(t, err)
	require.Equal(t, p, q)
	require.Equal(t, PageSpan, pageView(a, 6).State)
	requirePattern(t, nb, 128, 0x55)
	require.Equal(t, 1, a.Stats().ReallocMoved)
	requireValid(t, a)
}

func TestRealloc_FailureRestoresSlot(t *testing.T) {
	a := newTestAllocator(t)
	p, b := mustAlloc(t, a, 16)
	mustAlloc(t, a, 16)
	fill(b, 0x77)
	for i := 1; i < DefaultPageCount; i++ {
		mustAlloc(t, a, 256)
	}
	before := a.Snapshot()
	beforeBytes := a.Stats().BytesInUse

	got, nb, err := a.Realloc(p, 200)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, p, got, "original address returned on failure")
	require.Nil(t, nb)
	require.Equal(t, before, a.Snapshot())
	require.Equal(t, beforeBytes, a.Stats().BytesInUse)

	block, err := a.Block(p)
	require.NoError(t, err)
	requirePattern(t, block, 16, 0x77)
	requireValid(t, a)
}

func TestRealloc_FailureRestoresCoalescedPage(t *testing.T) {
	a := newTestAllocator(t)
	p, _ := mustAlloc(t, a, 16) // sole slot of page 0
	for i := 1; i < DefaultPageCount; i++ {
		mustAlloc(t, a, 256)
	}
	before := a.Snapshot()
	coalesces := a.Stats().Coalesces

	// Page 0 coalesces on release but one page cannot hold 600 bytes.
	got, _, err := a.Realloc(p, 600)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, p, got)
	require.Equal(t, before, a.Snapshot())
	require.Equal(t, coalesces, a.Stats().Coalesces)
	requireValid(t, a)
}

func TestRealloc_FailureRestoresSpan(t *testing.T) {
	a := newTestAllocator(t)
	p, b := mustAlloc(t, a, 400) // pages 0-1
	fill(b, 0x09)
	for i := 2; i < DefaultPageCount; i++ {
		mustAlloc(t, a, 256)
	}
	before := a.Snapshot()

	got, _, err := a.Realloc(p, 1000)
	require.ErrorIs(t, err, ErrOutOfMemory)
	require.Equal(t, p, got)
	require.Equal(t, before, a.Snapshot())

	block, err := a.Block(p)
	require.NoError(t, err)
	requirePattern(t, block, 400, 0x09)
	requireValid(t, a)
}

func TestRealloc_InvalidInputs(t *testing.T) {
	a := newTestAllocator(t)
	p, _ := mustAlloc(t, a, 16)
	span, _ := mustAlloc(t, a, 400)

	got, _, err := a.Realloc(p, 0)
	require.ErrorIs(t, err, ErrInvalidSize)
	require.Equal(t, p, got)

	got, _, err = a.Realloc(p+16, 32)
	require.ErrorIs(t, err, ErrInvalidAddress, "unused slot")
	require.Equal(t, NilAddr, got)

	_, _, err = a.Realloc(span+DefaultPageSize, 32)
	require.ErrorIs(t, err, ErrInvalidAddress, "inside span")

	_, _, err = a.Realloc(Addr(10_000), 32)
	require.ErrorIs(t, err, ErrInvalidAddress)

	require.NoError(t, a.Free(p))
	_, _, err = a.Realloc(p, 32)
	require.ErrorIs(t, err, ErrInvalidAddress, "freed block")
	requireValid(t, a)
}
