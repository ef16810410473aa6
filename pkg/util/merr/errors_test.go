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

package merr

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrSnapshotNotFound("scene-001")
	errors.Wrap(err, "failed to load snapshot")
	s.ErrorIs(err, ErrSnapshotNotFound)
	s.Equal(Code(ErrSnapshotNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))

	sameCodeErr := newZeusError("new error", ErrSnapshotNotFound.errCode, false)
	s.True(sameCodeErr.Is(ErrSnapshotNotFound))
}

func (s *ErrSuite) TestWrap() {
	// Stream 相关错误。
	s.ErrorIs(WrapErrStreamFault(errors.New("disk full"), "write body"), ErrStreamFault)
	s.ErrorIs(WrapErrStreamFormatUnsupported("yaml"), ErrStreamFormatUnsupported)

	// Type 相关错误。
	s.ErrorIs(WrapErrTypeNotRegistered("Scene"), ErrTypeNotRegistered)
	s.ErrorIs(WrapErrTypeIllegalSchema("Scene", "duplicated attribute"), ErrTypeIllegalSchema)
	s.ErrorIs(WrapErrAttributeKindInvalid("Scene", "nodes"), ErrAttributeKindInvalid)

	// Snapshot 相关错误。
	s.ErrorIs(WrapErrSnapshotNotFound("scene-001", "load"), ErrSnapshotNotFound)
	s.ErrorIs(WrapErrSnapshotExists("scene-001"), ErrSnapshotExists)
	s.ErrorIs(WrapErrSnapshotLockHeld("/tmp/snapshots/.lock"), ErrSnapshotLockHeld)
	s.ErrorIs(WrapErrSnapshotManifest("/tmp/snapshots/manifest.json", errors.New("bad json")), ErrSnapshotManifest)

	// IO 相关错误。
	s.ErrorIs(WrapErrIoFailed("scene-001.bin", errors.New("io error")), ErrIoFailed)
	s.ErrorIs(WrapErrIoFailedReason("mock reason"), ErrIoFailed)

	// Parameter 相关错误。
	s.ErrorIs(WrapErrParameterInvalid(8, 1, "failed to create zstd compressor"), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterInvalidMsg("invalid capacity %d", -1), ErrParameterInvalid)
	s.ErrorIs(WrapErrParameterMissing("root type"), ErrParameterMissing)
}

func (s *ErrSuite) TestIsRetryable() {
	s.True(IsRetryableErr(ErrSnapshotLockHeld))
	s.True(IsRetryableErr(ErrIoUnexpectEOF))
	s.False(IsRetryableErr(ErrStreamFault))
	s.False(IsRetryableErr(errors.New("not a zeus error")))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.False(errors.Is(err, errThird))

	s.Equal("first: second", err.Error())
}

func (s *ErrSuite) TestCombineWithNil() {
	err := errors.New("non-nil")

	s.Equal(err.Error(), Combine(nil, err).Error())
	s.Equal(err.Error(), Combine(err, nil).Error())
	s.NoError(Combine(nil, nil))
}

func (s *ErrSuite) TestCombineOnlyNil() {
	s.NoError(Combine(nil, nil))
}

func (s *ErrSuite) TestErrorType() {
	err := WrapErrAsInputError(ErrParameterInvalid)
	s.Equal(InputError, GetErrorType(err))
	s.Equal("input_error", GetErrorType(err).String())

	s.Equal(SystemError, GetErrorType(ErrStreamFault))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
