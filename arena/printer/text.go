package printer

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/joshuapare/arenakit/arena"
)

// printText prints the snapshot in the classic dump layout, one block per page.
func (p *Printer) printText(s arena.Snapshot) error {
	var free, divided, span int
	for _, pg := range s.Pages {
		switch pg.State {
		case arena.PageFree:
			free++
		case arena.PageDivided:
			divided++
		case arena.PageSpan:
			span++
		}
	}

	if _, err := fmt.Fprintf(p.writer, "==Allocator==\n"); err != nil {
		return err
	}
	fmt.Fprintf(p.writer, "Arena: %s in %d pages (free %d, divided %d, span %d)\n\n",
		p.size(s.PageSize*s.PageCount), s.PageCount, free, divided, span)

	for _, pg := range s.Pages {
		if pg.State == arena.PageFree && !p.opts.ShowFreePages {
			continue
		}
		fmt.Fprintf(p.writer, "Page N%d, Size: %s\n", int(pg.Index)+1, p.size(s.PageSize))
		fmt.Fprintf(p.writer, "Start: %v\n", pg.Base)
		fmt.Fprintf(p.writer, "State: %s\n", stateLabel(pg.State))

		switch pg.State {
		case arena.PageDivided:
			fmt.Fprintf(p.writer, "Class size: %s (%d/%d used)\n", p.size(pg.Class), pg.UsedSlots(), len(pg.Slots))
			if p.opts.ShowSlots {
				for j, used := range pg.Slots {
					fmt.Fprintf(p.writer, "Block N%d, is used: %t\n", j+1, used)
				}
			}
		case arena.PageSpan:
			fmt.Fprintf(p.writer, "Class size: %s (run starts at page N%d)\n", p.size(pg.Class), int(pg.Head)+1)
		}
		if _, err := fmt.Fprintln(p.writer); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) size(n int) string {
	if p.opts.HumanSizes {
		return humanize.IBytes(uint64(n))
	}
	return strconv.Itoa(n)
}

func stateLabel(s arena.PageState) string {
	switch s {
	case arena.PageFree:
		return "FREE"
	case arena.PageDivided:
		return "Block divided"
	case arena.PageSpan:
		return "Multi-page"
	default:
		return s.String()
	}
}
