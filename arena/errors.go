package arena

import "errors"

var (
	// ErrOutOfMemory indicates that no suitable page or page run was found, or that the
	// arena itself could not be reserved.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrInvalidAddress indicates an address outside the arena, or one that does not
	// start a live block.
	ErrInvalidAddress = errors.New("arena: invalid address")

	// ErrDoubleFree indicates an attempt to free a block that is already free.
	ErrDoubleFree = errors.New("arena: double free")

	// ErrInvalidSize indicates a zero, negative or unrepresentable request size.
	ErrInvalidSize = errors.New("arena: invalid size")

	// ErrClosed indicates use of an allocator after Close.
	ErrClosed = errors.New("arena: allocator closed")

	// ErrCorrupt indicates a page table invariant violation found by Verify.
	ErrCorrupt = errors.New("arena: page table corrupt")
)
