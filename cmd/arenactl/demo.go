package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDemoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the classic allocation scenario and dump the arena",
		Long: `The demo command allocates 58, 31 and 61 bytes, reallocates the first block
down to 11 bytes and prints the page table. Use --verify to check invariants after
every step.

Example:
  arenactl demo
  arenactl demo --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo()
		},
	}
}

// demoResult is the JSON form of the demo output.
type demoResult struct {
	Steps []stepResult `json:"steps"`
}

func (a *app) runDemo() error {
	alloc, release, err := a.newAllocator()
	if err != nil {
		return err
	}
	defer release() //nolint:errcheck

	script := []step{
		{Op: opAlloc, Size: 58, As: "a"},
		{Op: opAlloc, Size: 31, As: "b"},
		{Op: opAlloc, Size: 61, As: "c"},
		{Op: opRealloc, Ref: "a", Size: 11, As: "a"},
	}

	r := newRunner(alloc)
	var res demoResult
	failures := 0
	for i, s := range script {
		sr, err := r.run(s)
		if err != nil {
			return err
		}
		sr.Step = i + 1
		if !sr.OK {
			failures++
		}
		a.printStep(sr)
		res.Steps = append(res.Steps, sr)
		if err := a.check(alloc, stepName(i, s)); err != nil {
			return err
		}
	}

	if a.jsonOut {
		if err := a.printJSON(res); err != nil {
			return err
		}
	} else {
		a.printInfo("\n")
	}
	if err := a.dump(alloc); err != nil {
		return err
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d demo steps failed", failures, len(script))
	}
	return nil
}
