package printer

import (
	"encoding/json"

	"github.com/joshuapare/arenakit/arena"
)

// jsonSnapshot represents an allocator snapshot in JSON format.
type jsonSnapshot struct {
	PageSize  int        `json:"page_size"`
	PageCount int        `json:"page_count"`
	MinClass  int        `json:"min_class"`
	Pages     []jsonPage `json:"pages"`
}

// jsonPage represents one page in JSON format.
type jsonPage struct {
	Index int    `json:"index"`
	Base  uint32 `json:"base"`
	State string `json:"state"`
	Class int    `json:"class"`
	Head  *int   `json:"head,omitempty"`
	Used  int    `json:"used,omitempty"`
	Slots []bool `json:"slots,omitempty"`
}

func (p *Printer) printJSON(s arena.Snapshot) error {
	out := jsonSnapshot{
		PageSize:  s.PageSize,
		PageCount: s.PageCount,
		MinClass:  s.MinClass,
		Pages:     make([]jsonPage, 0, len(s.Pages)),
	}
	for _, pg := range s.Pages {
		if pg.State == arena.PageFree && !p.opts.ShowFreePages {
			continue
		}
		jp := jsonPage{
			Index: int(pg.Index),
			Base:  uint32(pg.Base),
			State: pg.State.String(),
			Class: pg.Class,
		}
		switch pg.State {
		case arena.PageDivided:
			jp.Used = pg.UsedSlots()
			if p.opts.ShowSlots {
				jp.Slots = pg.Slots
			}
		case arena.PageSpan:
			head := int(pg.Head)
			jp.Head = &head
		}
		out.Pages = append(out.Pages, jp)
	}

	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
