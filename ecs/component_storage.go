package ecs

import "iter"

// componentColumn is a type-erased column of component values addressed by row.
type componentColumn interface {
	Append(item any) int
	Delete(row int)
	Get(row int) any
	Has(row int) bool
	Iter() iter.Seq[int]
	Len() int
}

const (
	blockSize = 64
)

// blockColumn stores values of type T in fixed-size blocks. Blocks are allocated
// individually so pointers handed out by Get stay valid while the column grows.
type blockColumn[T any] struct {
	blocks    []*[blockSize]T
	filled    []*[blockSize]bool
	freeSlots []int
	nextIndex int
	count     int
}

// Append adds a value to the column, reusing the most recently freed row first.
func (c *blockColumn[T]) Append(item any) int {
	var value T
	if ptr, ok := item.(*T); ok {
		value = *ptr
	} else if val, ok := item.(T); ok {
		value = val
	} else {
		return -1
	}

	var row int
	if n := len(c.freeSlots); n > 0 {
		row = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		row = c.nextIndex
		c.nextIndex++
		if row/blockSize >= len(c.blocks) {
			c.blocks = append(c.blocks, new([blockSize]T))
			c.filled = append(c.filled, new([blockSize]bool))
		}
	}

	c.blocks[row/blockSize][row%blockSize] = value
	c.filled[row/blockSize][row%blockSize] = true
	c.count++
	return row
}

// Get returns a *T for the row, or nil when the row is empty.
func (c *blockColumn[T]) Get(row int) any {
	if !c.Has(row) {
		return nil
	}
	return &c.blocks[row/blockSize][row%blockSize]
}

// ptr is the typed counterpart of Get.
func (c *blockColumn[T]) ptr(row int) *T {
	if !c.Has(row) {
		return nil
	}
	return &c.blocks[row/blockSize][row%blockSize]
}

// Delete zeroes the row and makes it available for reuse.
func (c *blockColumn[T]) Delete(row int) {
	if !c.Has(row) {
		return
	}
	var zero T
	c.blocks[row/blockSize][row%blockSize] = zero
	c.filled[row/blockSize][row%blockSize] = false
	c.freeSlots = append(c.freeSlots, row)
	c.count--
}

func (c *blockColumn[T]) Has(row int) bool {
	if row < 0 || row >= c.nextIndex {
		return false
	}
	return c.filled[row/blockSize][row%blockSize]
}

func (c *blockColumn[T]) Len() int {
	return c.count
}

// Iter yields occupied rows in ascending order. Rows deleted during iteration are
// skipped; rows appended past the starting high-water mark are not visited.
func (c *blockColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		end := c.nextIndex
		for row := 0; row < end; row++ {
			if !c.Has(row) {
				continue
			}
			if !yield(row) {
				return
			}
		}
	}
}
