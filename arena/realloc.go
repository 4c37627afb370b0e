package arena

import "fmt"

// occupancy records what release is about to undo, so a failed relocation can put the
// block back exactly where it was.
type occupancy struct {
	loc   location
	state PageState
	class int
	head  PageIndex
}

// Realloc resizes the block at addr.
//
// NilAddr behaves as Alloc. When size maps to the block's current class the address is
// returned unchanged. Otherwise the block is released, a new one allocated, and the
// first min(old class, size) bytes moved across. If no new block can be found the old
// one is restored in place and addr is returned alongside the error.
func (a *Allocator) Realloc(addr Addr, size int) (Addr, []byte, error) {
	if a.closed {
		return NilAddr, nil, ErrClosed
	}
	if addr == NilAddr {
		return a.Alloc(size)
	}
	a.stats.ReallocCalls++

	loc, err := a.resolveStart(addr)
	if err != nil {
		a.stats.ReallocFailures++
		return NilAddr, nil, fmt.Errorf("realloc: %w", err)
	}
	oldClass := a.pages[loc.page].class

	newClass, err := a.blockClass(size)
	if err != nil {
		a.stats.ReallocFailures++
		return addr, nil, fmt.Errorf("realloc %v: %w", addr, err)
	}
	if newClass == oldClass {
		a.stats.ReallocInPlace++
		return addr, a.view(addr, size, oldClass), nil
	}

	prior := a.occupancyOf(loc)
	a.release(loc)
	newAddr, _, err := a.alloc(size)
	if err != nil {
		a.restore(prior)
		a.stats.ReallocFailures++
		return addr, nil, fmt.Errorf("realloc %v: %w", addr, err)
	}

	// The old bytes are untouched by release and alloc; copy has memmove semantics
	// for the case where the new block reuses the old page.
	n := min(oldClass, size)
	copy(a.arena[int(newAddr):int(newAddr)+n], a.arena[int(addr):int(addr)+n])
	a.stats.ReallocMoved++
	return newAddr, a.view(newAddr, size, newClass), nil
}

func (a *Allocator) occupancyOf(loc location) occupancy {
	p := &a.pages[loc.page]
	return occupancy{loc: loc, state: p.state, class: p.class, head: p.head}
}

// restore re-occupies a block freed by release. Only valid when nothing else has
// touched the page table since.
func (a *Allocator) restore(o occupancy) {
	if o.state == PageSpan {
		k := PageIndex(o.class / a.cfg.PageSize)
		for i := o.head; i < o.head+k; i++ {
			p := &a.pages[i]
			p.state = PageSpan
			p.class = o.class
			p.slots = 0
			p.head = o.head
		}
		a.stats.SpanReleases--
	} else {
		p := &a.pages[o.loc.page]
		if p.state == PageFree {
			p.divide(o.class, a.cfg.PageSize)
			a.stats.Coalesces--
		}
		p.used.Set(uint(o.loc.slot))
	}
	a.stats.BytesInUse += o.class
}
