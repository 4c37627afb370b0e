package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/arenakit/arena"
)

type op string

const (
	opAlloc   op = "alloc"
	opFree    op = "free"
	opRealloc op = "realloc"
)

// step is one operation of a replay script.
//
//	- {op: alloc, size: 58, as: a}
//	- {op: realloc, ref: a, size: 11}
//	- {op: free, ref: a}
//	- {op: free, addr: 0x40, expect: double_free}
type step struct {
	Op   op      `yaml:"op"`
	Size int     `yaml:"size"`
	Ref  string  `yaml:"ref"`
	Addr *uint32 `yaml:"addr"`
	As   string  `yaml:"as"`

	// Expect names the error the step must fail with; empty means it must succeed.
	Expect string `yaml:"expect"`
}

// script is the top level of a replay file.
type script struct {
	Steps []step `yaml:"steps"`
}

type stepResult struct {
	Step  int        `json:"step"`
	Op    op         `json:"op"`
	Size  int        `json:"size,omitempty"`
	Ref   string     `json:"ref,omitempty"`
	As    string     `json:"as,omitempty"`
	Addr  arena.Addr `json:"addr"`
	Class int        `json:"class,omitempty"`
	Error string     `json:"error,omitempty"`
	OK    bool       `json:"ok"`
}

type replayResult struct {
	Steps    []stepResult `json:"steps"`
	Failures int          `json:"failures"`
}

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <script.yaml>",
		Short: "Run a YAML script of alloc/free/realloc steps",
		Long: `The replay command runs each step of a script against a fresh arena and prints
the page table afterwards. Steps name their results with "as" and refer to
earlier results with "ref". A step may use a raw "addr" instead of a ref, and
may declare the error it expects (out_of_memory, invalid_address, double_free,
invalid_size).

Example:
  arenactl replay steps.yaml
  arenactl replay steps.yaml --verify --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReplay(args[0])
		},
	}
}

func loadScript(path string) (script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return script{}, fmt.Errorf("read script: %w", err)
	}
	var s script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return script{}, fmt.Errorf("parse script %s: %w", path, err)
	}
	if len(s.Steps) == 0 {
		return script{}, fmt.Errorf("script %s has no steps", path)
	}
	return s, nil
}

func (a *app) runReplay(path string) error {
	s, err := loadScript(path)
	if err != nil {
		return err
	}

	alloc, release, err := a.newAllocator()
	if err != nil {
		return err
	}
	defer release() //nolint:errcheck

	r := newRunner(alloc)
	var res replayResult
	for i, st := range s.Steps {
		sr, err := r.run(st)
		if err != nil {
			return fmt.Errorf("%s: %w", stepName(i, st), err)
		}
		sr.Step = i + 1
		if !sr.OK {
			res.Failures++
		}
		res.Steps = append(res.Steps, sr)
		a.printStep(sr)

		if err := a.check(alloc, stepName(i, st)); err != nil {
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
	if res.Failures > 0 {
		return fmt.Errorf("%d of %d steps did not behave as expected", res.Failures, len(s.Steps))
	}
	return nil
}

func (a *app) printStep(sr stepResult) {
	status := "ok"
	if !sr.OK {
		status = "UNEXPECTED"
	}
	label := sr.As
	if label == "" {
		label = sr.Ref
	}
	switch {
	case sr.Error != "":
		a.printInfo("%3d %-8s %-4s -> %s (%s)\n", sr.Step, sr.Op, label, sr.Error, status)
	case sr.Op == opFree:
		a.printInfo("%3d %-8s %-4s %v (%s)\n", sr.Step, sr.Op, label, sr.Addr, status)
	default:
		a.printInfo("%3d %-8s %-4s size=%-5d -> %v class=%d (%s)\n", sr.Step, sr.Op, label, sr.Size, sr.Addr, sr.Class, status)
	}
}

// runner executes steps against one allocator, tracking named addresses.
type runner struct {
	alloc *arena.Allocator
	names map[string]arena.Addr
}

func newRunner(alloc *arena.Allocator) *runner {
	return &runner{alloc: alloc, names: make(map[string]arena.Addr)}
}

// run executes s. Allocator errors are recorded in the result; the returned error is
// reserved for malformed steps.
func (r *runner) run(s step) (stepResult, error) {
	sr := stepResult{Op: s.Op, Size: s.Size, Ref: s.Ref, As: s.As, Addr: arena.NilAddr}

	var opErr error
	switch s.Op {
	case opAlloc:
		addr, b, err := r.alloc.Alloc(s.Size)
		opErr = err
		if err == nil {
			sr.Addr, sr.Class = addr, cap(b)
			r.bind(s.As, addr)
		}

	case opFree:
		addr, err := r.target(s)
		if err != nil {
			return sr, err
		}
		sr.Addr = addr
		opErr = r.alloc.Free(addr)
		if opErr == nil && s.Ref != "" {
			delete(r.names, s.Ref)
		}

	case opRealloc:
		addr, err := r.target(s)
		if err != nil {
			return sr, err
		}
		moved, b, err := r.alloc.Realloc(addr, s.Size)
		opErr = err
		sr.Addr = moved
		if err == nil {
			sr.Class = cap(b)
			if s.Ref != "" {
				delete(r.names, s.Ref)
			}
			name := s.As
			if name == "" {
				name = s.Ref
			}
			r.bind(name, moved)
		}

	default:
		return sr, fmt.Errorf("unknown op %q", s.Op)
	}

	if opErr != nil {
		sr.Error = errorCode(opErr)
	}
	sr.OK = sr.Error == s.Expect
	return sr, nil
}

// target resolves the address a free or realloc step acts on. A realloc with neither
// ref nor addr acts on NilAddr.
func (r *runner) target(s step) (arena.Addr, error) {
	switch {
	case s.Ref != "":
		addr, ok := r.names[s.Ref]
		if !ok {
			return arena.NilAddr, fmt.Errorf("unknown ref %q", s.Ref)
		}
		return addr, nil
	case s.Addr != nil:
		return arena.Addr(*s.Addr), nil
	case s.Op == opRealloc:
		return arena.NilAddr, nil
	default:
		return arena.NilAddr, errors.New("free needs a ref or an addr")
	}
}

func (r *runner) bind(name string, addr arena.Addr) {
	if name != "" {
		r.names[name] = addr
	}
}

// errorCode maps allocator errors to the names used by the "expect" field.
func errorCode(err error) string {
	switch {
	case errors.Is(err, arena.ErrOutOfMemory):
		return "out_of_memory"
	case errors.Is(err, arena.ErrDoubleFree):
		return "double_free"
	case errors.Is(err, arena.ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, arena.ErrInvalidSize):
		return "invalid_size"
	case errors.Is(err, arena.ErrClosed):
		return "closed"
	default:
		return err.Error()
	}
}

func stepName(i int, s step) string {
	return fmt.Sprintf("step %d (%s)", i+1, s.Op)
}
