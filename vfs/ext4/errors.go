// Copyright 2015 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ext4

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/vfs"
)

// CodecError is the error shape a real ext4 codec library is expected
// to return: a bare POSIX-shaped errno, the way the standard library's
// own syscall.Errno behaves. The adapter only ever receives these from
// Codec methods; it never constructs one outside of tests.
type CodecError int32

func (e CodecError) Error() string { return unix.Errno(e).Error() }

// translateErr lifts a Codec error into the canonical VfsError
// taxonomy per spec.md §4.5: recognised errno values map one-to-one,
// anything else collapses to Io.
func translateErr(err error, context string) error {
	if err == nil {
		return nil
	}

	var ce CodecError
	if !errors.As(err, &ce) {
		return vfs.WrapError(vfs.Io, err, context)
	}

	switch unix.Errno(ce) {
	case unix.ENOENT:
		return vfs.WrapError(vfs.NotFound, err, context)
	case unix.EEXIST:
		return vfs.WrapError(vfs.AlreadyExists, err, context)
	case unix.EISDIR:
		return vfs.WrapError(vfs.IsADirectory, err, context)
	case unix.ENOTDIR:
		return vfs.WrapError(vfs.NotADirectory, err, context)
	case unix.ENOTEMPTY:
		return vfs.WrapError(vfs.DirectoryNotEmpty, err, context)
	case unix.EINVAL:
		return vfs.WrapError(vfs.InvalidInput, err, context)
	case unix.EACCES, unix.EPERM:
		return vfs.WrapError(vfs.PermissionDenied, err, context)
	case unix.ENOSPC:
		return vfs.WrapError(vfs.StorageFull, err, context)
	case unix.ENOSYS:
		return vfs.WrapError(vfs.Unsupported, err, context)
	case unix.EBUSY:
		return vfs.WrapError(vfs.ResourceBusy, err, context)
	case unix.EFAULT:
		return vfs.WrapError(vfs.BadAddress, err, context)
	case unix.EAGAIN:
		return vfs.WrapError(vfs.WouldBlock, err, context)
	default:
		return vfs.WrapError(vfs.Io, err, context)
	}
}

func timeToSpec(t time.Time) vfs.Timespec {
	return vfs.Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}
