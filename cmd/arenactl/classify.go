package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

type classifyResult struct {
	Size  int    `json:"size"`
	Class int    `json:"class"`
	Path  string `json:"path"`
	Pages int    `json:"pages,omitempty"`
	Slots int    `json:"slots,omitempty"`
}

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <size>...",
		Short: "Show the size class and placement path for request sizes",
		Long: `The classify command prints, for each size, the class a request is rounded to
and whether it is carved from a divided page or served by a run of whole pages.

Example:
  arenactl classify 1 17 100 129 600
  arenactl classify --arena.page-size 4096 3000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClassify(args)
		},
	}
}

func (a *app) runClassify(args []string) error {
	results := make([]classifyResult, 0, len(args))
	for _, arg := range args {
		size, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("invalid size %q: %w", arg, err)
		}
		class, span, err := a.cfg.BlockClass(size)
		if err != nil {
			return err
		}
		r := classifyResult{Size: size, Class: class, Path: "slab", Slots: a.cfg.PageSize / class}
		if span {
			r.Path, r.Slots, r.Pages = "span", 0, class/a.cfg.PageSize
		}
		results = append(results, r)
	}

	if a.jsonOut {
		return a.printJSON(results)
	}
	for _, r := range results {
		if r.Path == "span" {
			fmt.Fprintf(a.out, "%8d -> %6d  span of %d pages\n", r.Size, r.Class, r.Pages)
			continue
		}
		fmt.Fprintf(a.out, "%8d -> %6d  slab, %d slots per page\n", r.Size, r.Class, r.Slots)
	}
	return nil
}
