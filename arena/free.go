package arena

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Free returns the block at addr to the arena. A divided page whose last slot is freed
// becomes a free page again; freeing any page of a span frees the whole span.
//
// Addresses outside the arena or off a slot boundary return ErrInvalidAddress, blocks
// that are not live return ErrDoubleFree. The page table is unchanged on error.
func (a *Allocator) Free(addr Addr) error {
	if a.closed {
		return ErrClosed
	}
	a.stats.FreeCalls++

	loc, err := a.resolve(addr)
	switch {
	case errors.Is(err, errNotLive):
		err = fmt.Errorf("free %v: %w", addr, ErrDoubleFree)
	case err != nil:
		err = fmt.Errorf("free: %w", err)
	}
	if err != nil {
		a.stats.FreeFailures++
		a.logger.Warn("free rejected", zap.Stringer("addr", addr), zap.Error(err))
		return err
	}

	a.release(loc)
	return nil
}

// release clears a resolved allocation and coalesces its page(s) back to free.
func (a *Allocator) release(loc location) {
	p := &a.pages[loc.page]
	if p.state == PageSpan {
		head, class := p.head, p.class
		k := PageIndex(class / a.cfg.PageSize)
		for i := head; i < head+k; i++ {
			a.pages[i].reset(a.cfg.PageSize)
		}
		a.stats.SpanReleases++
		a.stats.BytesInUse -= class
		a.logger.Debug("span released", zap.Int("page", int(head)), zap.Int("pages", int(k)))
		return
	}

	p.used.Clear(uint(loc.slot))
	a.stats.BytesInUse -= p.class
	if !p.inUse() {
		a.logger.Debug("page coalesced", zap.Int("page", int(loc.page)), zap.Int("class", p.class))
		p.reset(a.cfg.PageSize)
		a.stats.Coalesces++
	}
}
