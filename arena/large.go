package arena

import "go.uber.org/zap"

// allocSpan marks the first run of class/PageSize free pages as one span.
func (a *Allocator) allocSpan(class int) (Addr, bool) {
	k := class / a.cfg.PageSize
	start, ok := a.findRun(k)
	if !ok {
		return NilAddr, false
	}
	for i := start; i < start+PageIndex(k); i++ {
		p := &a.pages[i]
		p.state = PageSpan
		p.class = class
		p.slots = 0
		p.head = start
	}
	a.logger.Debug("span reserved",
		zap.Int("page", int(start)),
		zap.Int("pages", k),
		zap.Int("class", class),
	)
	return a.pages[start].base, true
}

// findRun returns the lowest start of k contiguous free pages.
func (a *Allocator) findRun(k int) (PageIndex, bool) {
	if k < 1 || k > len(a.pages) {
		return 0, false
	}
	run := 0
	for i := range a.pages {
		if a.pages[i].state != PageFree {
			run = 0
			continue
		}
		run++
		if run == k {
			return PageIndex(i - k + 1), true
		}
	}
	return 0, false
}
