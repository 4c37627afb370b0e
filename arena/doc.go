// Package arena provides a fixed-arena allocator with page-granularity bookkeeping and
// power-of-two size-class slabs.
//
// # Overview
//
// The allocator owns one contiguous arena of PageSize × PageCount bytes, reserved once
// at construction and never grown. The arena is split into equal pages, and every page
// is in exactly one of three states:
//
//   - Free: holds nothing
//   - Divided: split into equal slots of one size class, tracked by a usage bitmap
//   - Span: part of a run of contiguous pages serving one large allocation
//
// # Size Classes
//
// A request is rounded up to the smallest power of two that is at least MinClass
// (16 by default). With the default 256 byte page:
//
//	   1 -  16 bytes  → class 16   (16 slots per page)
//	  17 -  32 bytes  → class 32   (8 slots per page)
//	  33 -  64 bytes  → class 64   (4 slots per page)
//	  65 - 128 bytes  → class 128  (2 slots per page)
//	 129+      bytes  → span of class/PageSize whole pages
//
// # Usage Example
//
//	a, err := arena.New(arena.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//
//	addr, buf, err := a.Alloc(58)
//	if err != nil {
//	    return err
//	}
//	copy(buf, payload)
//
//	addr, buf, err = a.Realloc(addr, 11) // contents preserved
//	...
//	err = a.Free(addr)
//
// # Placement
//
// Small requests go to the first divided page of the same class with a free slot,
// taking its lowest free slot; failing that, the lowest free page is divided. Large
// requests take the lowest run of enough free pages. Placement is deterministic.
//
// # Addresses
//
// Addresses (Addr) are byte offsets from the arena start. NilAddr is the null address.
// Free and Realloc resolve an address to its page by arithmetic and reject anything
// that is not the start of a live block with ErrInvalidAddress, or ErrDoubleFree when
// freeing a block that is already free.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must serialize access externally.
package arena
