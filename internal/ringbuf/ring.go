// Package ringbuf provides a fixed-capacity buffer read newest-first.
package ringbuf

import (
	"fmt"
	"sync"
)

// Buffer keeps the most recent Cap items. Pushing into a full buffer
// evicts the oldest item.
type Buffer[T any] struct {
	mu    sync.RWMutex
	items []T
	head  int // index of the next write
	size  int
	clone func(T) T
}

// New creates a buffer. It panics when capacity is below one.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		panic(fmt.Sprintf("ringbuf: invalid capacity %d", capacity))
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// NewWithCopy creates a buffer that stores clone(item) on Push and hands out
// clone(item) from Items, so callers never share state with stored items.
func NewWithCopy[T any](capacity int, clone func(T) T) *Buffer[T] {
	b := New[T](capacity)
	b.clone = clone
	return b
}

// Push inserts item as the newest element. When the buffer was full the
// evicted oldest element is returned with ok set.
func (b *Buffer[T]) Push(item T) (evicted T, ok bool) {
	if b.clone != nil {
		item = b.clone(item)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.size == len(b.items) {
		evicted, ok = b.items[b.head], true
	} else {
		b.size++
	}
	b.items[b.head] = item
	b.head = (b.head + 1) % len(b.items)
	return evicted, ok
}

// Items returns a copy of the contents, newest first.
func (b *Buffer[T]) Items() []T {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]T, 0, b.size)
	for i := 1; i <= b.size; i++ {
		idx := (b.head - i + len(b.items)) % len(b.items)
		item := b.items[idx]
		if b.clone != nil {
			item = b.clone(item)
		}
		out = append(out, item)
	}
	return out
}

// Len returns the number of stored items.
func (b *Buffer[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Cap returns the buffer capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Clear drops every item.
func (b *Buffer[T]) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.head = 0
	b.size = 0
}
