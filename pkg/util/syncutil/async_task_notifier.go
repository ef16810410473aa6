// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package syncutil

import (
	"context"
	"sync"
)

// AsyncTaskNotifier is a notifier for async task.
// The owner of the task uses Cancel to ask the task to stop, and
// BlockUntilFinish to wait for it; the task goroutine watches Context
// and calls Finish exactly once when it returns.
type AsyncTaskNotifier[T any] struct {
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
	finishOnce sync.Once
	result     T
}

// NewAsyncTaskNotifier creates a new async task notifier.
func NewAsyncTaskNotifier[T any]() *AsyncTaskNotifier[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &AsyncTaskNotifier[T]{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Context returns the context of the async task.
func (n *AsyncTaskNotifier[T]) Context() context.Context {
	return n.ctx
}

// Cancel signals the task to stop. It does not wait for the task.
func (n *AsyncTaskNotifier[T]) Cancel() {
	n.cancel()
}

// Finish marks the task as finished with the given result.
// It must be called by the task goroutine, a second call is a no-op.
func (n *AsyncTaskNotifier[T]) Finish(result T) {
	n.finishOnce.Do(func() {
		n.result = result
		close(n.done)
	})
}

// FinishChan returns a channel that is closed when the task finishes.
func (n *AsyncTaskNotifier[T]) FinishChan() <-chan struct{} {
	return n.done
}

// BlockUntilFinish blocks until the task calls Finish.
func (n *AsyncTaskNotifier[T]) BlockUntilFinish() {
	<-n.done
}

// BlockAndGetResult blocks until the task finishes and returns its result.
func (n *AsyncTaskNotifier[T]) BlockAndGetResult() T {
	<-n.done
	return n.result
}
