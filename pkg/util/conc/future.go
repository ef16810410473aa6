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

// future 是 Future 的内部实现。
type future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *future[T] {
	return &future[T]{
		ch: make(chan struct{}),
	}
}

// Future 表示一个异步任务的结果句柄。
type Future[T any] interface {
	// Await 阻塞等待任务完成，返回结果与错误。
	Await() (T, error)

	// Value 阻塞等待任务完成，仅返回结果。
	Value() T

	// Err 阻塞等待任务完成，仅返回错误。
	Err() error

	// OK 阻塞等待任务完成，返回任务是否成功。
	OK() bool

	// Inner 返回任务完成时被关闭的 channel，可用于 select。
	Inner() <-chan struct{}
}

func (f *future[T]) setResult(value T, err error) {
	f.value = value
	f.err = err
	close(f.ch)
}

func (f *future[T]) Await() (T, error) {
	<-f.ch
	return f.value, f.err
}

func (f *future[T]) Value() T {
	<-f.ch
	return f.value
}

func (f *future[T]) Err() error {
	<-f.ch
	return f.err
}

func (f *future[T]) OK() bool {
	<-f.ch
	return f.err == nil
}

func (f *future[T]) Inner() <-chan struct{} {
	return f.ch
}

// Go 在新协程中执行任务并返回对应的 Future。
func Go[T any](fn func() (T, error)) Future[T] {
	f := newFuture[T]()
	go func() {
		f.setResult(fn())
	}()
	return f
}

// AwaitAll 等待所有 Future 完成，返回遇到的第一个错误。
func AwaitAll[T awaitable](futures ...T) error {
	for i := range futures {
		if err := futures[i].Err(); err != nil {
			return err
		}
	}
	return nil
}

type awaitable interface {
	Err() error
}
