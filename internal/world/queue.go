package world

import "sync"

// Queue неограниченная FIFO-очередь: много производителей, один потребитель.
// Воркеры кладут в неё результаты, главный поток забирает их пачками.
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
}

// NewQueue создаёт пустую очередь
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push добавляет элемент в конец очереди
func (q *Queue[T]) Push(item T) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()
}

// Pop извлекает элемент из начала очереди
func (q *Queue[T]) Pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if len(q.items) == 0 {
		return zero, false
	}
	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

// PopN извлекает до max элементов в порядке поступления; max <= 0: все
func (q *Queue[T]) PopN(max int) []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items)
	if max > 0 && max < n {
		n = max
	}
	if n == 0 {
		return nil
	}

	out := make([]T, n)
	copy(out, q.items[:n])

	var zero T
	for i := 0; i < n; i++ {
		q.items[i] = zero
	}
	q.items = q.items[n:]
	return out
}

// Len возвращает текущую длину очереди
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
