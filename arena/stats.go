package arena

// Stats holds operation counters and the current page table occupancy.
type Stats struct {
	AllocCalls      int
	AllocFailures   int // Alloc calls that returned an error
	FreeCalls       int
	FreeFailures    int // Free calls rejected with an error
	ReallocCalls    int
	ReallocFailures int // Realloc calls that returned an error
	ReallocInPlace  int // Realloc calls that kept the block
	ReallocMoved    int // Realloc calls that moved the block
	Coalesces       int // Divided pages returned to free
	SpanReleases    int // Multi-page runs returned to free
	BytesInUse      int // Sum of the classes of all live blocks

	FreePages    int
	DividedPages int
	SpanPages    int
}

// Stats returns a copy of the counters with page occupancy filled in.
func (a *Allocator) Stats() Stats {
	s := a.stats
	for i := range a.pages {
		switch a.pages[i].state {
		case PageFree:
			s.FreePages++
		case PageDivided:
			s.DividedPages++
		case PageSpan:
			s.SpanPages++
		}
	}
	return s
}
