package arena

import "github.com/bits-and-blooms/bitset"

// page is one entry of the page table.
type page struct {
	state PageState
	base  Addr // fixed for the page's lifetime
	class int  // slot size when divided, run bytes when span, page size when free
	slots int  // usable bits in used when divided
	head  PageIndex
	used  *bitset.BitSet
}

func (p *page) reset(pageSize int) {
	p.state = PageFree
	p.class = pageSize
	p.slots = 0
	p.head = 0
	p.used.ClearAll()
}

func (p *page) divide(class, pageSize int) {
	p.state = PageDivided
	p.class = class
	p.slots = pageSize / class
	p.used.ClearAll()
}

// firstFreeSlot returns the lowest clear slot of a divided page.
func (p *page) firstFreeSlot() (SlotIndex, bool) {
	i, ok := p.used.NextClear(0)
	if !ok || int(i) >= p.slots {
		return 0, false
	}
	return SlotIndex(i), true
}

func (p *page) slotAddr(slot SlotIndex) Addr {
	return p.base + Addr(int(slot)*p.class)
}

func (p *page) inUse() bool {
	return p.used.Any()
}
