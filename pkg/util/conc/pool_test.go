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
	"sync/atomic"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
)

func TestPoolSubmit(t *testing.T) {
	pool := NewPool[int](4)
	defer pool.Release()

	var executed atomic.Int64
	futures := make([]Future[int], 0, 16)
	for i := 0; i < 16; i++ {
		i := i
		futures = append(futures, pool.Submit(func() (int, error) {
			executed.Add(1)
			return i * 2, nil
		}))
	}

	for i, f := range futures {
		value, err := f.Await()
		assert.NoError(t, err)
		assert.Equal(t, i*2, value)
		assert.True(t, f.OK())
	}
	assert.EqualValues(t, 16, executed.Load())
	assert.NoError(t, AwaitAll(futures...))
}

func TestPoolSubmitError(t *testing.T) {
	pool := NewPool[struct{}](1)
	defer pool.Release()

	mockErr := errors.New("mock task error")
	f := pool.Submit(func() (struct{}, error) {
		return struct{}{}, mockErr
	})
	assert.ErrorIs(t, f.Err(), mockErr)
	assert.False(t, f.OK())
}

func TestGo(t *testing.T) {
	f := Go(func() (string, error) {
		return "done", nil
	})
	value, err := f.Await()
	assert.NoError(t, err)
	assert.Equal(t, "done", value)
}
