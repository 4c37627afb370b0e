package arena

import (
	"fmt"
	"math/bits"
)

// Classify returns the smallest power of two that is >= max(size, minClass).
// Sizes <= 0 are rejected with ErrInvalidSize.
func Classify(size, minClass int) (int, error) {
	if size <= 0 {
		return 0, fmt.Errorf("classify %d: %w", size, ErrInvalidSize)
	}
	if size > 1<<(bits.UintSize-2) {
		return 0, fmt.Errorf("classify %d: %w", size, ErrInvalidSize)
	}
	if size < minClass {
		size = minClass
	}
	return 1 << bits.Len(uint(size-1)), nil
}

// Classify rounds size to this allocator's size class.
func (a *Allocator) Classify(size int) (int, error) {
	return Classify(size, a.cfg.MinClass)
}

// BlockClass is the class a request of size is served with under cfg: the classifier
// output for slab requests, rounded up to whole pages when span is true.
func (cfg Config) BlockClass(size int) (class int, span bool, err error) {
	class, err = Classify(size, cfg.MinClass)
	if err != nil {
		return 0, false, err
	}
	if class > cfg.PageSize/2 {
		return roundUp(class, cfg.PageSize), true, nil
	}
	return class, false, nil
}

func (a *Allocator) blockClass(size int) (int, error) {
	class, _, err := a.cfg.BlockClass(size)
	return class, err
}

// isSpanClass reports whether class must be served from whole pages.
func (a *Allocator) isSpanClass(class int) bool {
	return class > a.cfg.PageSize/2
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

func roundUp(n, multiple int) int {
	return (n + multiple - 1) / multiple * multiple
}
