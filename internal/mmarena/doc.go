// Package mmarena reserves the backing memory of an allocator arena.
//
// On unix systems the arena is a private anonymous mapping, so it lives outside the
// Go heap and is returned to the OS on release. Elsewhere it is a plain heap slice.
package mmarena
