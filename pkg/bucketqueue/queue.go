// Package bucketqueue implements a bucket priority queue with O(1) amortized
// push and pop for integer priorities that advance in small, bounded steps.
//
// The queue holds integer item ids in [0, n). Buckets are singly linked lists
// threaded through a fixed arena of "next" slots, one per item id, so pushing
// and popping never allocate.
//
// Ordering is exact as long as every pushed item has a priority within
// [last popped priority, last popped priority + Buckets()-1]. Items outside
// that window are still stored and returned, but may come out of order.
package bucketqueue

import (
	"errors"
)

// ErrEmptyQueue is returned by Pop when the queue holds no items.
var ErrEmptyQueue = errors.New("bucketqueue: pop on empty queue")

// nilSlot terminates bucket lists.
const nilSlot = -1

// CostFunc returns the integer priority of an item.
type CostFunc func(item int) int

// Queue is a bucket queue over item ids.
//
// An item must not be pushed twice without being popped or removed in
// between, and its priority must not change while it is queued: Remove
// locates the item through its current priority.
type Queue struct {
	// buckets holds the head item of every bucket list
	buckets []int32

	// next links each queued item to the following item of its bucket
	next []int32

	mask int
	size int

	// loc is the bucket index the last pop was served from
	loc int

	cost CostFunc
}

// New creates a queue with 2^bits buckets for item ids in [0, capacity).
func New(bits, capacity int, cost CostFunc) *Queue {
	count := 1 << bits
	q := &Queue{
		buckets: make([]int32, count),
		next:    make([]int32, capacity),
		mask:    count - 1,
		cost:    cost,
	}
	q.Reset()
	return q
}

// Buckets returns the number of buckets (2^bits).
func (q *Queue) Buckets() int {
	return len(q.buckets)
}

// Len returns the number of queued items.
func (q *Queue) Len() int {
	return q.size
}

// IsEmpty reports whether the queue holds no items.
func (q *Queue) IsEmpty() bool {
	return q.size == 0
}

// Reset empties the queue without releasing its storage.
func (q *Queue) Reset() {
	for i := range q.buckets {
		q.buckets[i] = nilSlot
	}
	for i := range q.next {
		q.next[i] = nilSlot
	}
	q.size = 0
	q.loc = 0
}

// Push prepends item to the list of its bucket.
func (q *Queue) Push(item int) {
	b := q.bucket(item)
	q.next[item] = q.buckets[b]
	q.buckets[b] = int32(item)
	q.size++
}

// Pop removes and returns an item of the lowest priority bucket, scanning
// forward from the bucket served last.
func (q *Queue) Pop() (int, error) {
	if q.size == 0 {
		return 0, ErrEmptyQueue
	}
	for q.buckets[q.loc] == nilSlot {
		q.loc = (q.loc + 1) & q.mask
	}

	item := q.buckets[q.loc]
	q.buckets[q.loc] = q.next[item]
	q.next[item] = nilSlot
	q.size--
	return int(item), nil
}

// Remove unlinks item from its bucket, including when it is the bucket head.
// It returns false, leaving the queue untouched, if item is not queued.
func (q *Queue) Remove(item int) bool {
	if item < 0 || item >= len(q.next) || q.size == 0 {
		return false
	}
	b := q.bucket(item)

	prev := int32(nilSlot)
	for n := q.buckets[b]; n != nilSlot; n = q.next[n] {
		if int(n) != item {
			prev = n
			continue
		}
		if prev == nilSlot {
			q.buckets[b] = q.next[n]
		} else {
			q.next[prev] = q.next[n]
		}
		q.next[n] = nilSlot
		q.size--
		return true
	}
	return false
}

func (q *Queue) bucket(item int) int {
	return q.cost(item) & q.mask
}
