//go:build !unix

package mmarena

import "fmt"

// Reserve allocates the arena on the Go heap when anonymous mappings are not available.
func Reserve(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("mmarena: invalid arena size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
