// Package strings provides zero-copy string utilities with pooled builders
// for Reservoir. Formatting on error and logging paths goes through pooled
// builders so that reporting a condition never becomes an allocation hotspot.
package strings

import (
	"fmt"
	"sync"
	"unsafe"
)

// BytesToString converts a byte slice to a string without allocation.
// WARNING: The returned string shares memory with the byte slice.
// Do not modify the byte slice after calling this function.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts a string to a byte slice without allocation.
// WARNING: The returned byte slice shares memory with the string.
// Do not modify the returned slice.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Clone creates a copy of a string (useful when you need to own the memory).
func Clone(s string) string {
	if len(s) == 0 {
		return ""
	}
	b := make([]byte, len(s))
	copy(b, StringToBytes(s))
	return BytesToString(b)
}

// Builder provides efficient string building with zero-copy reads.
type Builder struct {
	buf []byte
}

// NewBuilder creates a new string builder with the given capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (n int, err error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns the built string using zero-copy conversion.
// The result is invalidated by the next write or Reset.
func (b *Builder) String() string {
	return BytesToString(b.buf)
}

// Len returns the length of the built string.
func (b *Builder) Len() int {
	return len(b.buf)
}

// Reset resets the builder for reuse.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Pooled builders for the two size classes the library actually produces:
// short error/log lines and larger report dumps.
var (
	smallBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(256)
		},
	}

	largeBuilderPool = &sync.Pool{
		New: func() interface{} {
			return NewBuilder(4 * 1024)
		},
	}
)

// GetBuilder retrieves a pooled builder sized for the estimated output.
func GetBuilder(estimatedSize int) *Builder {
	var b *Builder
	if estimatedSize > 256 {
		b = largeBuilderPool.Get().(*Builder)
	} else {
		b = smallBuilderPool.Get().(*Builder)
	}
	b.Reset()
	return b
}

// PutBuilder returns a builder to its pool.
func PutBuilder(b *Builder) {
	if b == nil {
		return
	}
	b.Reset()
	if cap(b.buf) > 256 {
		largeBuilderPool.Put(b)
	} else {
		smallBuilderPool.Put(b)
	}
}

// Sprintf is a pooled alternative to fmt.Sprintf.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}

	b := GetBuilder(len(format) + len(args)*16)
	defer PutBuilder(b)

	fmt.Fprintf(b, format, args...)
	return Clone(b.String())
}

// Concat concatenates strings using a pooled builder.
func Concat(parts ...string) string {
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}

	total := 0
	for _, s := range parts {
		total += len(s)
	}

	b := GetBuilder(total)
	defer PutBuilder(b)

	for _, s := range parts {
		b.WriteString(s)
	}
	return Clone(b.String())
}
