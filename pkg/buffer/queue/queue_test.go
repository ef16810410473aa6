package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueueBasic(t *testing.T) {
	q := New[int](4)
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	q.Push(1)
	q.Push(2)
	q.Push(3)
	assert.Equal(t, 3, q.Len())

	head, ok := q.Peek()
	assert.True(t, ok)
	assert.Equal(t, 1, head)
	assert.Equal(t, 3, q.Len())

	for want := 1; want <= 3; want++ {
		got, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, q.IsEmpty())

	_, ok = q.Pop()
	assert.False(t, ok)
	_, ok = q.Peek()
	assert.False(t, ok)
}

func TestQueueFIFOOrderAcrossGrow(t *testing.T) {
	q := New[int](2)
	const n = 1000
	for i := 0; i < n; i++ {
		q.Push(i)
	}
	assert.Equal(t, n, q.Len())
	for i := 0; i < n; i++ {
		got, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, i, got)
	}
	assert.True(t, q.IsEmpty())
}

func TestQueueWrapAround(t *testing.T) {
	q := New[string](4)
	// 反复出入队，使读写指针跨越环形边界。
	for round := 0; round < 10; round++ {
		q.Push("a")
		q.Push("b")
		got, ok := q.Pop()
		assert.True(t, ok)
		assert.Equal(t, "a", got)
		got, ok = q.Pop()
		assert.True(t, ok)
		assert.Equal(t, "b", got)
	}
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 4, q.Cap())
}

func TestQueueReset(t *testing.T) {
	q := New[int](0)
	assert.Equal(t, DefaultCapacity, q.Cap())

	q.Push(7)
	q.Push(8)
	q.Reset()
	assert.True(t, q.IsEmpty())
	assert.Equal(t, 0, q.Len())

	q.Push(9)
	got, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 9, got)
}
