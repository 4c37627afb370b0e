package arena

import (
	"flag"
	"fmt"
	"math"

	"github.com/joshuapare/arenakit/internal/buf"
)

const (
	// DefaultPageSize is the page size used when none is configured.
	DefaultPageSize = 256

	// DefaultPageCount is the number of pages used when none is configured.
	DefaultPageCount = 7

	// MinClassFloor is the smallest slot size any configuration may use.
	MinClassFloor = 16
)

// Config fixes the geometry of an allocator for its whole lifetime.
type Config struct {
	PageSize  int `yaml:"page_size"`
	PageCount int `yaml:"page_count"`
	MinClass  int `yaml:"min_class"`
}

// DefaultConfig returns the classic 7 x 256 byte geometry with 16 byte slots.
func DefaultConfig() Config {
	return Config{
		PageSize:  DefaultPageSize,
		PageCount: DefaultPageCount,
		MinClass:  MinClassFloor,
	}
}

func (cfg *Config) RegisterFlags(f *flag.FlagSet) {
	f.IntVar(&cfg.PageSize, "arena.page-size", DefaultPageSize, "Size of one arena page in bytes. Must be a power of two and at least twice the minimum class.")
	f.IntVar(&cfg.PageCount, "arena.page-count", DefaultPageCount, "Number of pages in the arena.")
	f.IntVar(&cfg.MinClass, "arena.min-class", MinClassFloor, "Smallest slot size handed out from a divided page. Must be a power of two >= 16.")
}

func (cfg *Config) Validate() error {
	if cfg.MinClass < MinClassFloor || !isPowerOfTwo(cfg.MinClass) {
		return fmt.Errorf("min class (%d) must be a power of two >= %d", cfg.MinClass, MinClassFloor)
	}
	if !isPowerOfTwo(cfg.PageSize) {
		return fmt.Errorf("page size (%d) must be a power of two", cfg.PageSize)
	}
	if cfg.PageSize < 2*cfg.MinClass {
		return fmt.Errorf("page size (%d) must be at least twice the min class (%d)", cfg.PageSize, cfg.MinClass)
	}
	if cfg.PageCount < 1 {
		return fmt.Errorf("page count (%d) must be positive", cfg.PageCount)
	}
	size, ok := buf.MulOverflowSafe(cfg.PageSize, cfg.PageCount)
	if !ok || uint64(size) >= math.MaxUint32 {
		return fmt.Errorf("arena size (%d x %d) does not fit the address space", cfg.PageSize, cfg.PageCount)
	}
	return nil
}

// ArenaSize is the number of bytes the arena spans.
func (cfg Config) ArenaSize() int {
	return cfg.PageSize * cfg.PageCount
}

// MaxSlots is the slot capacity of a page divided at the minimum class.
func (cfg Config) MaxSlots() int {
	return cfg.PageSize / cfg.MinClass
}
