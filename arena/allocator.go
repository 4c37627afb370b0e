package arena

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"

	"github.com/joshuapare/arenakit/internal/buf"
)

// errNotLive marks an address that resolves to a slot or page holding no allocation.
// Free reports it as ErrDoubleFree, everything else as ErrInvalidAddress.
var errNotLive = errors.New("block not allocated")

// Allocator serves allocations from one fixed arena split into equal pages.
//
// Small requests (class <= PageSize/2) share Divided pages of a single size class and
// are tracked by a per-page bitmap. Larger requests take a run of contiguous Free pages.
// Every operation is first-fit by page index, then by slot index, so identical call
// sequences always produce identical addresses.
//
// An Allocator is not safe for concurrent use.
type Allocator struct {
	cfg    Config
	arena  []byte
	unmap  func() error
	pages  []page
	logger *zap.Logger
	stats  Stats
	closed bool
}

// New reserves the arena described by cfg and returns an allocator with every page free.
// A failed reservation is reported as ErrOutOfMemory.
func New(cfg Config, opts ...Option) (*Allocator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("arena: invalid config: %w", err)
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	size := cfg.ArenaSize()
	mem := o.buf
	unmap := func() error { return nil }
	if mem != nil {
		if len(mem) != size {
			return nil, fmt.Errorf("arena: caller buffer is %d bytes, need %d: %w", len(mem), size, ErrInvalidSize)
		}
	} else {
		var err error
		mem, unmap, err = o.reserve(size)
		if err != nil {
			return nil, fmt.Errorf("arena: reserve %d bytes: %w: %w", size, ErrOutOfMemory, err)
		}
		if len(mem) < size {
			_ = unmap()
			return nil, fmt.Errorf("arena: reserved %d of %d bytes: %w", len(mem), size, ErrOutOfMemory)
		}
	}

	a := &Allocator{
		cfg:    cfg,
		arena:  mem[:size:size],
		unmap:  unmap,
		pages:  make([]page, cfg.PageCount),
		logger: o.logger,
	}
	maxSlots := uint(cfg.MaxSlots())
	for i := range a.pages {
		a.pages[i] = page{
			base: Addr(i * cfg.PageSize),
			used: bitset.New(maxSlots),
		}
		a.pages[i].reset(cfg.PageSize)
	}

	a.logger.Debug("arena ready",
		zap.Int("page_size", cfg.PageSize),
		zap.Int("page_count", cfg.PageCount),
		zap.Int("min_class", cfg.MinClass),
	)
	return a, nil
}

// Close releases the arena. The allocator is unusable afterwards; all addresses and
// slices it handed out become invalid.
func (a *Allocator) Close() error {
	if a.closed {
		return ErrClosed
	}
	a.closed = true
	a.pages = nil
	a.arena = nil
	a.logger.Debug("arena released")
	return a.unmap()
}

// Config returns the geometry the allocator was built with.
func (a *Allocator) Config() Config {
	return a.cfg
}

// Alloc reserves a block for size bytes. The returned slice has len size and cap equal
// to the block's class. On failure the page table is left untouched.
func (a *Allocator) Alloc(size int) (Addr, []byte, error) {
	if a.closed {
		return NilAddr, nil, ErrClosed
	}
	a.stats.AllocCalls++
	addr, class, err := a.alloc(size)
	if err != nil {
		a.stats.AllocFailures++
		return NilAddr, nil, err
	}
	return addr, a.view(addr, size, class), nil
}

func (a *Allocator) alloc(size int) (Addr, int, error) {
	class, err := a.blockClass(size)
	if err != nil {
		return NilAddr, 0, fmt.Errorf("alloc %d: %w", size, err)
	}

	var (
		addr Addr
		ok   bool
	)
	if a.isSpanClass(class) {
		addr, ok = a.allocSpan(class)
	} else {
		addr, ok = a.allocSlot(class)
	}
	if !ok {
		return NilAddr, 0, fmt.Errorf("alloc %d (class %d): %w", size, class, ErrOutOfMemory)
	}
	a.stats.BytesInUse += class
	return addr, class, nil
}

// Block returns the whole block starting at addr, len and cap equal to its class.
func (a *Allocator) Block(addr Addr) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	loc, err := a.resolveStart(addr)
	if err != nil {
		return nil, fmt.Errorf("block: %w", err)
	}
	class := a.pages[loc.page].class
	b, ok := buf.Slice(a.arena, int(addr), class)
	if !ok {
		return nil, fmt.Errorf("block %v: class %d overruns arena: %w", addr, class, ErrCorrupt)
	}
	return b[:class:class], nil
}

func (a *Allocator) view(addr Addr, n, class int) []byte {
	off := int(addr)
	return a.arena[off : off+n : off+class]
}

// pageOf maps addr to its page by arithmetic from the arena base.
func (a *Allocator) pageOf(addr Addr) (PageIndex, error) {
	if addr == NilAddr || uint64(addr) >= uint64(len(a.arena)) {
		return 0, fmt.Errorf("%v outside arena of %d bytes: %w", addr, len(a.arena), ErrInvalidAddress)
	}
	return PageIndex(int(addr) / a.cfg.PageSize), nil
}

// resolve finds the live slot or span page addr points at. Addresses inside a span
// must be page aligned; addresses inside a divided page must be slot aligned.
func (a *Allocator) resolve(addr Addr) (location, error) {
	idx, err := a.pageOf(addr)
	if err != nil {
		return location{}, err
	}
	p := &a.pages[idx]
	off := int(addr - p.base)

	switch p.state {
	case PageDivided:
		if off%p.class != 0 {
			return location{}, fmt.Errorf("%v not on a %d byte slot boundary of page %d: %w", addr, p.class, idx, ErrInvalidAddress)
		}
		slot := SlotIndex(off / p.class)
		if !p.used.Test(uint(slot)) {
			return location{page: idx, slot: slot}, errNotLive
		}
		return location{page: idx, slot: slot}, nil
	case PageSpan:
		if off != 0 {
			return location{}, fmt.Errorf("%v not on a page boundary of span at page %d: %w", addr, p.head, ErrInvalidAddress)
		}
		return location{page: idx}, nil
	default:
		return location{page: idx}, errNotLive
	}
}

// resolveStart is resolve restricted to addresses returned by Alloc or Realloc.
func (a *Allocator) resolveStart(addr Addr) (location, error) {
	loc, err := a.resolve(addr)
	if errors.Is(err, errNotLive) {
		return location{}, fmt.Errorf("%v: %w: %w", addr, errNotLive, ErrInvalidAddress)
	}
	if err != nil {
		return location{}, err
	}
	if p := &a.pages[loc.page]; p.state == PageSpan && p.head != loc.page {
		return location{}, fmt.Errorf("%v is inside the span starting at page %d: %w", addr, p.head, ErrInvalidAddress)
	}
	return loc, nil
}
