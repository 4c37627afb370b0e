package arena

import "fmt"

// Addr is the byte offset of an allocation from the start of the arena.
type Addr uint32

// NilAddr is the null address. Realloc treats it as a fresh allocation.
const NilAddr Addr = 0xFFFFFFFF

func (a Addr) String() string {
	if a == NilAddr {
		return "nil"
	}
	return fmt.Sprintf("0x%04X", uint32(a))
}

// PageIndex identifies a page in the page table.
type PageIndex int

// SlotIndex identifies a slot within a divided page.
type SlotIndex int

// PageState is the role a page currently plays.
type PageState uint8

const (
	// PageFree pages hold no allocation.
	PageFree PageState = iota

	// PageDivided pages are split into equal slots of one size class.
	PageDivided

	// PageSpan pages belong to a run of contiguous pages serving one allocation.
	PageSpan
)

func (s PageState) String() string {
	switch s {
	case PageFree:
		return "free"
	case PageDivided:
		return "divided"
	case PageSpan:
		return "span"
	default:
		return fmt.Sprintf("PageState(%d)", uint8(s))
	}
}

// location is a resolved live allocation.
type location struct {
	page PageIndex
	slot SlotIndex // zero for spans
}
