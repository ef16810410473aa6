// Copyright (C) 2019-2020 Zilliz. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License
// is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express
// or implied. See the License for the specific language governing permissions and limitations under the License.

package retry

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/objectstream-go/pkg/util/merr"
)

func TestDo(t *testing.T) {
	ctx := context.Background()

	n := 0
	err := Do(ctx, func() error {
		n++
		if n < 3 {
			return errors.New("transient")
		}
		return nil
	}, Attempts(5), Sleep(time.Millisecond))
	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDoAttemptsExhausted(t *testing.T) {
	ctx := context.Background()

	sentinel := errors.New("always fails")
	n := 0
	err := Do(ctx, func() error {
		n++
		return sentinel
	}, Attempts(3), Sleep(time.Millisecond))
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, n)
}

func TestDoNotRetryable(t *testing.T) {
	ctx := context.Background()

	n := 0
	err := Do(ctx, func() error {
		n++
		return merr.WrapErrSnapshotExists("world")
	}, Attempts(5), Sleep(time.Millisecond), RetryErr(merr.IsRetryableErr))
	assert.ErrorIs(t, err, merr.ErrSnapshotExists)
	assert.Equal(t, 1, n)
}

func TestDoUnrecoverable(t *testing.T) {
	ctx := context.Background()

	n := 0
	err := Do(ctx, func() error {
		n++
		return Unrecoverable(errors.New("fatal"))
	}, Attempts(5), Sleep(time.Millisecond))
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestDoContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Do(ctx, func() error {
		return errors.New("should not run")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
