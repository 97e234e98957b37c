package eventbus

import (
	"context"
	"sync"
)

// Journal хранит последние события в кольцевом буфере
type Journal struct {
	mu    sync.RWMutex
	items []*Envelope
	next  int
	full  bool
}

// NewJournal создаёт журнал на capacity событий
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = 128
	}
	return &Journal{items: make([]*Envelope, capacity)}
}

// Attach подписывает журнал на шину
func (j *Journal) Attach(bus EventBus, f Filter) (Subscription, error) {
	return bus.Subscribe(context.Background(), f, func(ctx context.Context, ev *Envelope) {
		j.Add(ev)
	})
}

// Add записывает событие, вытесняя самое старое
func (j *Journal) Add(ev *Envelope) {
	j.mu.Lock()
	j.items[j.next] = ev
	j.next = (j.next + 1) % len(j.items)
	if j.next == 0 {
		j.full = true
	}
	j.mu.Unlock()
}

// Len количество событий в журнале
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.full {
		return len(j.items)
	}
	return j.next
}

// Recent возвращает до n последних событий от старых к новым; n <= 0: все
func (j *Journal) Recent(n int) []*Envelope {
	j.mu.RLock()
	defer j.mu.RUnlock()

	size := j.next
	start := 0
	if j.full {
		size = len(j.items)
		start = j.next
	}
	if n <= 0 || n > size {
		n = size
	}

	out := make([]*Envelope, 0, n)
	for i := size - n; i < size; i++ {
		out = append(out, j.items[(start+i)%len(j.items)])
	}
	return out
}
