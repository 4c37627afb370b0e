package arena

import "go.uber.org/zap"

// allocSlot hands out one slot of class from a divided page, dividing the lowest free
// page when no divided page of that class has room.
func (a *Allocator) allocSlot(class int) (Addr, bool) {
	free := PageIndex(-1)
	for i := range a.pages {
		p := &a.pages[i]
		switch p.state {
		case PageFree:
			if free < 0 {
				free = PageIndex(i)
			}
		case PageDivided:
			if p.class != class {
				continue
			}
			if slot, ok := p.firstFreeSlot(); ok {
				p.used.Set(uint(slot))
				return p.slotAddr(slot), true
			}
		}
	}
	if free < 0 {
		return NilAddr, false
	}

	p := &a.pages[free]
	p.divide(class, a.cfg.PageSize)
	p.used.Set(0)
	a.logger.Debug("page divided",
		zap.Int("page", int(free)),
		zap.Int("class", class),
		zap.Int("slots", p.slots),
	)
	return p.base, true
}
