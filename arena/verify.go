package arena

import (
	"fmt"

	"github.com/joshuapare/arenakit/internal/buf"
)

// Verify walks the page table and returns the first invariant violation it finds,
// wrapped in ErrCorrupt. It never changes allocator state.
func (a *Allocator) Verify() error {
	if a.closed {
		return ErrClosed
	}
	ps := a.cfg.PageSize
	inUse := 0

	for i := range a.pages {
		p := &a.pages[i]
		idx := PageIndex(i)
		if p.base != Addr(i*ps) {
			return corruptf(idx, "base %v, want %v", p.base, Addr(i*ps))
		}

		switch p.state {
		case PageFree:
			if p.class != ps {
				return corruptf(idx, "free page has class %d", p.class)
			}
			if p.used.Any() {
				return corruptf(idx, "free page has %d used slots", p.used.Count())
			}

		case PageDivided:
			if p.class < a.cfg.MinClass || p.class > ps/2 || !isPowerOfTwo(p.class) {
				return corruptf(idx, "divided page has class %d", p.class)
			}
			if p.slots != ps/p.class {
				return corruptf(idx, "divided page has %d slots, want %d", p.slots, ps/p.class)
			}
			if !p.used.Any() {
				return corruptf(idx, "divided page with no used slots was not coalesced")
			}
			if j, ok := p.used.NextSet(uint(p.slots)); ok {
				return corruptf(idx, "slot %d used beyond %d slots", j, p.slots)
			}
			inUse += int(p.used.Count()) * p.class

		case PageSpan:
			if p.class < ps || p.class%ps != 0 {
				return corruptf(idx, "span page has class %d", p.class)
			}
			k := PageIndex(p.class / ps)
			if p.head > idx || idx >= p.head+k || int(p.head+k) > len(a.pages) {
				return corruptf(idx, "span page outside its run [%d,%d)", p.head, p.head+k)
			}
			h := &a.pages[p.head]
			if h.state != PageSpan || h.class != p.class || h.head != p.head {
				return corruptf(idx, "span page disagrees with its head page %d", p.head)
			}
			if p.head == idx {
				if !buf.Has(a.arena, int(p.base), p.class) {
					return corruptf(idx, "span of %d bytes overruns the arena", p.class)
				}
				inUse += p.class
			}

		default:
			return corruptf(idx, "unknown state %v", p.state)
		}
	}

	if inUse != a.stats.BytesInUse {
		return fmt.Errorf("%d bytes live in page table, %d accounted: %w", inUse, a.stats.BytesInUse, ErrCorrupt)
	}
	return nil
}

func corruptf(idx PageIndex, format string, args ...any) error {
	return fmt.Errorf("page %d: %s: %w", idx, fmt.Sprintf(format, args...), ErrCorrupt)
}
