package strobe

// queue is the FIFO of effects awaiting execution. Insertion order is
// execution order; there is no priority and no reordering. The queue is
// owned by the engine's scheduling goroutine and is never shared.
type queue struct {
	effects []Effect
}

// push appends one effect.
func (q *queue) push(e Effect) {
	q.effects = append(q.effects, e)
}

// pushAll appends a batch as one contiguous block.
func (q *queue) pushAll(effects []Effect) {
	q.effects = append(q.effects, effects...)
}

// pop removes and returns the front effect.
func (q *queue) pop() (Effect, bool) {
	if len(q.effects) == 0 {
		return Effect{}, false
	}
	e := q.effects[0]
	q.effects = q.effects[1:]
	return e, true
}

// clear drops all pending effects. The in-flight effect, if any, is the
// engine's concern, not the queue's.
func (q *queue) clear() {
	q.effects = nil
}

// size returns the number of pending effects.
func (q *queue) size() int {
	return len(q.effects)
}
