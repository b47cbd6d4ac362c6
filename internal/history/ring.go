package history

// ring is a bounded double-ended stack. Pushing onto a full ring evicts
// the oldest element. The zero value has capacity zero and must be sized
// with newRing or resize before use.
type ring[T any] struct {
	buf   []T
	head  int // index of the oldest element
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

// Len returns the number of stored elements.
func (r *ring[T]) Len() int { return r.count }

// Cap returns the maximum number of elements.
func (r *ring[T]) Cap() int { return len(r.buf) }

// push appends v as the newest element. If the ring was full the oldest
// element is returned with evicted set.
func (r *ring[T]) push(v T) (old T, evicted bool) {
	if len(r.buf) == 0 {
		return v, true
	}
	if r.count == len(r.buf) {
		old = r.buf[r.head]
		r.buf[r.head] = v
		r.head = (r.head + 1) % len(r.buf)
		return old, true
	}
	r.buf[(r.head+r.count)%len(r.buf)] = v
	r.count++
	return old, false
}

// pop removes and returns the newest element.
func (r *ring[T]) pop() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	i := (r.head + r.count - 1) % len(r.buf)
	v := r.buf[i]
	r.buf[i] = zero
	r.count--
	return v, true
}

// popOldest removes and returns the oldest element.
func (r *ring[T]) popOldest() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) % len(r.buf)
	r.count--
	return v, true
}

// peek returns the newest element without removing it.
func (r *ring[T]) peek() (T, bool) {
	var zero T
	if r.count == 0 {
		return zero, false
	}
	return r.buf[(r.head+r.count-1)%len(r.buf)], true
}

// at returns the i-th element counting from the oldest.
func (r *ring[T]) at(i int) T {
	return r.buf[(r.head+i)%len(r.buf)]
}

// clear drops all elements.
func (r *ring[T]) clear() {
	var zero T
	for i := range r.buf {
		r.buf[i] = zero
	}
	r.head = 0
	r.count = 0
}

// resize changes the capacity, keeping the newest elements. Elements that
// no longer fit are returned oldest first.
func (r *ring[T]) resize(capacity int) []T {
	var dropped []T
	for r.count > capacity {
		v, _ := r.popOldest()
		dropped = append(dropped, v)
	}

	buf := make([]T, capacity)
	for i := 0; i < r.count; i++ {
		buf[i] = r.at(i)
	}
	r.buf = buf
	r.head = 0
	return dropped
}
