package arena

// Snapshot is a read-only copy of the page table.
type Snapshot struct {
	PageSize  int
	PageCount int
	MinClass  int
	Pages     []PageView
}

// PageView describes one page at the time of the snapshot.
type PageView struct {
	Index PageIndex
	Base  Addr
	State PageState

	// Class is the slot size of a divided page, the run size of a span page and the
	// page size of a free page.
	Class int

	// Head is the first page of the run. Only meaningful for span pages.
	Head PageIndex

	// Slots holds one used flag per slot of a divided page, nil otherwise.
	Slots []bool
}

// Snapshot copies the current page table. It does not change allocator state.
func (a *Allocator) Snapshot() Snapshot {
	s := Snapshot{
		PageSize:  a.cfg.PageSize,
		PageCount: len(a.pages),
		MinClass:  a.cfg.MinClass,
		Pages:     make([]PageView, len(a.pages)),
	}
	for i := range a.pages {
		p := &a.pages[i]
		v := PageView{
			Index: PageIndex(i),
			Base:  p.base,
			State: p.state,
			Class: p.class,
		}
		switch p.state {
		case PageDivided:
			v.Slots = make([]bool, p.slots)
			for j := range v.Slots {
				v.Slots[j] = p.used.Test(uint(j))
			}
		case PageSpan:
			v.Head = p.head
		}
		s.Pages[i] = v
	}
	return s
}

// UsedSlots counts the used flags of a divided page.
func (v PageView) UsedSlots() int {
	n := 0
	for _, used := range v.Slots {
		if used {
			n++
		}
	}
	return n
}
