package invaders

import (
	"slices"
	"sync"
)

// KeyEvent is a physical key transition. Code follows the DOM KeyboardEvent.code
// naming ("ArrowLeft", "KeyV", "Backslash").
type KeyEvent struct {
	Code string
	Down bool
}

// KeyBus fans key events out to subscribers in subscription order.
type KeyBus struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[uint64]func(KeyEvent)
	order     []uint64
}

func NewKeyBus() *KeyBus {
	return &KeyBus{listeners: make(map[uint64]func(KeyEvent))}
}

// Subscribe registers fn and returns its cancel function. Cancel is idempotent and
// once it returns fn is never called again, even by a Publish in progress.
func (b *KeyBus) Subscribe(fn func(KeyEvent)) (cancel func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.listeners, id)
			b.order = slices.DeleteFunc(b.order, func(other uint64) bool { return other == id })
		})
	}
}

// Publish delivers ev to every current subscriber.
func (b *KeyBus) Publish(ev KeyEvent) {
	b.mu.Lock()
	ids := slices.Clone(b.order)
	b.mu.Unlock()

	for _, id := range ids {
		b.mu.Lock()
		fn, ok := b.listeners[id]
		b.mu.Unlock()
		if ok {
			fn(ev)
		}
	}
}

// Len returns the number of active subscribers
func (b *KeyBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
