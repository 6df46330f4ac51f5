/*
 * Copyright (c) 2020 The Parley Authors.
 * See the LICENSE file for more information.
 */

// Package mpsc provides an efficient implementation of a multi-producer,
// single-consumer lock-free queue.
//
// The Push function is safe to call from multiple goroutines. The Pop and
// Empty functions must only be called from a single, consumer goroutine.
package mpsc

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

type node struct {
	next *node
	val  interface{}
}

// Queue is a multi-producer, single-consumer lock-free queue.
type Queue struct {
	head, tail *node
	nodePool   sync.Pool
}

// New returns an initialized queue instance.
func New() *Queue {
	q := &Queue{
		nodePool: sync.Pool{New: func() interface{} {
			return &node{}
		}},
	}
	stub := q.nodePool.Get().(*node)
	q.head = stub
	q.tail = stub
	return q
}

// Push adds a value to the queue.
func (q *Queue) Push(val interface{}) {
	n := q.nodePool.Get().(*node)
	n.val = val

	prev := (*node)(atomic.SwapPointer((*unsafe.Pointer)(unsafe.Pointer(&q.head)), unsafe.Pointer(n)))
	atomic.StorePointer((*unsafe.Pointer)(unsafe.Pointer(&prev.next)), unsafe.Pointer(n))
}

// Pop removes the value from the front of the queue, or nil if the
// queue is empty.
func (q *Queue) Pop() interface{} {
	tail := q.tail
	next := (*node)(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&tail.next))))
	if next == nil {
		return nil
	}
	q.tail = next
	v := next.val
	next.val = nil

	tail.next = nil
	q.nodePool.Put(tail)
	return v
}

// Empty tells whether the queue has no pending values.
func (q *Queue) Empty() bool {
	tail := q.tail
	next := (*node)(atomic.LoadPointer((*unsafe.Pointer)(unsafe.Pointer(&tail.next))))
	return next == nil
}
