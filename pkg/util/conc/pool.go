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

package conc

import (
	"fmt"

	ants "github.com/panjf2000/ants/v2"
)

// Pool 是 ants.Pool 的泛型封装，提交的任务以 Future 形式返回结果。
type Pool[T any] struct {
	inner *ants.Pool
	opt   *poolOption
}

// NewPool 创建一个容量为 cap 的协程池。
// 池内协程数量固定，不会随任务量动态伸缩。
func NewPool[T any](cap int, opts ...PoolOption) *Pool[T] {
	opt := defaultPoolOption()
	for _, o := range opts {
		o(opt)
	}

	pool, err := ants.NewPool(cap, opt.antsOptions()...)
	if err != nil {
		// ants 仅在容量非法或选项冲突时报错，属于编程错误。
		panic(err)
	}

	return &Pool[T]{
		inner: pool,
		opt:   opt,
	}
}

// Submit 向协程池提交一个任务，立即返回对应的 Future。
// 当池处于 nonBlocking 模式且已满时，Future 直接携带提交错误。
func (pool *Pool[T]) Submit(method func() (T, error)) Future[T] {
	f := newFuture[T]()
	err := pool.inner.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				f.setResult(*new(T), fmt.Errorf("task panicked: %v", r))
				if !pool.opt.concealPanic {
					panic(r)
				}
			}
		}()
		if pool.opt.preHandler != nil {
			pool.opt.preHandler()
		}
		res, err := method()
		f.setResult(res, err)
	})
	if err != nil {
		f.setResult(*new(T), fmt.Errorf("conc: failed to submit task: %w", err))
	}

	return f
}

// Cap 返回协程池的容量。
func (pool *Pool[T]) Cap() int {
	return pool.inner.Cap()
}

// Running 返回当前正在执行任务的协程数量。
func (pool *Pool[T]) Running() int {
	return pool.inner.Running()
}

// Free 返回当前空闲的协程数量。
func (pool *Pool[T]) Free() int {
	return pool.inner.Free()
}

// Release 关闭协程池，等待存量任务执行完毕。
func (pool *Pool[T]) Release() {
	pool.inner.Release()
}
