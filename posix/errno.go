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

// Package posix implements the process-wide file-descriptor table and
// the POSIX-facing syscall shim described in spec.md §4.7–§4.8, on top
// of the backend-neutral vfs package.
package posix

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/vfs"
)

// Errno is a raw POSIX errno the shim raises itself for conditions
// that never reach the backend (bad fd, wrong access mode, an
// oversized getcwd request) — distinct from the VfsError taxonomy,
// which covers backend-originated failures.
type Errno int32

func (e Errno) Error() string { return unix.Errno(e).Error() }

// vfsToErrno is the canonical mapping table from spec.md §7.
var vfsToErrno = map[vfs.VfsError]unix.Errno{
	vfs.NotFound:          unix.ENOENT,
	vfs.AlreadyExists:     unix.EEXIST,
	vfs.IsADirectory:      unix.EISDIR,
	vfs.NotADirectory:     unix.ENOTDIR,
	vfs.DirectoryNotEmpty: unix.ENOTEMPTY,
	vfs.InvalidInput:      unix.EINVAL,
	vfs.InvalidData:       unix.EINVAL,
	vfs.PermissionDenied:  unix.EACCES,
	vfs.Io:                unix.EIO,
	vfs.StorageFull:       unix.ENOSPC,
	vfs.Unsupported:       unix.ENOSYS,
	vfs.ResourceBusy:      unix.EBUSY,
	vfs.BadAddress:        unix.EFAULT,
	vfs.WouldBlock:        unix.EAGAIN,
}

// toErrno lowers err (a shim Errno or a wrapped vfs.VfsError) to a
// positive POSIX errno. Anything unrecognised collapses to EIO, the
// same fallback the ext4 adapter uses for unknown codec codes.
func toErrno(err error) unix.Errno {
	if err == nil {
		return 0
	}
	var e Errno
	if errors.As(err, &e) {
		return unix.Errno(e)
	}
	if kind, ok := vfs.As(err); ok {
		if no, ok := vfsToErrno[kind]; ok {
			return no
		}
	}
	return unix.EIO
}

// negErrno converts err into the `-errno` integer a syscall returns on
// failure, per spec.md §4.7's calling convention.
func negErrno(err error) int32 {
	if err == nil {
		return 0
	}
	return -int32(toErrno(err))
}
