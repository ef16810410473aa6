// Package queue 实现了一个基于环形数组的泛型 FIFO 队列。
//
// 设计上参考了字节环形缓冲区的实现方式：
//   - 底层容量始终为 2 的幂，便于用位运算取模；
//   - 通过 isEmpty 标记区分 r == w 时的“空/满”状态；
//   - 容量不足时自动按倍数扩容。
//
// 队列本身不做任何并发保护，由调用方保证单协程访问。
package queue

import "math/bits"

// DefaultCapacity 是队列的默认初始容量。
const DefaultCapacity = 16

// Queue 是一个自动扩容的环形 FIFO 队列。
type Queue[T any] struct {
	buf     []T
	size    int // 底层数组容量（始终为 2 的幂）
	r       int // 下一次出队位置
	w       int // 下一次入队位置
	isEmpty bool
}

// New 创建一个给定初始容量的队列。
// capacity 会被向上取整为 2 的幂；capacity <= 0 时使用默认容量。
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	capacity = ceilToPowerOfTwo(capacity)
	return &Queue[T]{
		buf:     make([]T, capacity),
		size:    capacity,
		isEmpty: true,
	}
}

// Push 将元素追加到队尾。
// 当剩余空间不足时会自动扩容，因此 Push 总是成功。
func (q *Queue[T]) Push(elem T) {
	if q.IsFull() {
		q.grow()
	}
	q.buf[q.w] = elem
	q.w = (q.w + 1) & (q.size - 1)
	q.isEmpty = false
}

// Pop 移除并返回队首元素。
// 当队列为空时，第二个返回值为 false。
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if q.isEmpty {
		return zero, false
	}
	elem := q.buf[q.r]
	q.buf[q.r] = zero // 释放引用，避免元素被队列延长生命周期
	q.r = (q.r + 1) & (q.size - 1)
	if q.r == q.w {
		q.isEmpty = true
	}
	return elem, true
}

// Peek 返回队首元素但不出队。
// 当队列为空时，第二个返回值为 false。
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.isEmpty {
		return zero, false
	}
	return q.buf[q.r], true
}

// Len 返回队列中当前元素的个数。
func (q *Queue[T]) Len() int {
	if q.r == q.w {
		if q.isEmpty {
			return 0
		}
		return q.size
	}
	if q.w > q.r {
		return q.w - q.r
	}
	return q.size - q.r + q.w
}

// Cap 返回底层数组的容量。
func (q *Queue[T]) Cap() int {
	return q.size
}

// IsEmpty 返回队列是否为空。
func (q *Queue[T]) IsEmpty() bool {
	return q.isEmpty
}

// IsFull 返回队列是否已满。
func (q *Queue[T]) IsFull() bool {
	return q.r == q.w && !q.isEmpty
}

// Reset 清空队列并将读写指针重置为 0。
// 底层数组保留，以便后续复用。
func (q *Queue[T]) Reset() {
	var zero T
	for i := range q.buf {
		q.buf[i] = zero
	}
	q.r, q.w = 0, 0
	q.isEmpty = true
}

// grow 将底层数组容量翻倍，并把现有元素搬移到新数组头部。
func (q *Queue[T]) grow() {
	newBuf := make([]T, q.size<<1)
	n := q.Len()
	if q.w > q.r {
		copy(newBuf, q.buf[q.r:q.w])
	} else {
		c := copy(newBuf, q.buf[q.r:])
		copy(newBuf[c:], q.buf[:q.w])
	}
	q.buf = newBuf
	q.size = len(newBuf)
	q.r = 0
	q.w = n
}

// ceilToPowerOfTwo 将 n 向上取整为最接近的 2 的幂。
// 若 n 已经是 2 的幂，则直接返回 n。
func ceilToPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}
