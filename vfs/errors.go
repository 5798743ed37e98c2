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

package vfs

import (
	"errors"
	"fmt"
)

// VfsError is the canonical, backend-neutral error taxonomy. Backends
// (fat, ext4) and FsContext always return one of these, possibly
// wrapping a lower-level cause with %w so callers can still Unwrap to
// the codec error for logging.
type VfsError int

const (
	NotFound VfsError = iota + 1
	AlreadyExists
	IsADirectory
	NotADirectory
	DirectoryNotEmpty
	InvalidInput
	InvalidData
	PermissionDenied
	Io
	StorageFull
	Unsupported
	ResourceBusy
	BadAddress
	WouldBlock
)

var errNames = map[VfsError]string{
	NotFound:          "not found",
	AlreadyExists:     "already exists",
	IsADirectory:      "is a directory",
	NotADirectory:     "not a directory",
	DirectoryNotEmpty: "directory not empty",
	InvalidInput:      "invalid input",
	InvalidData:       "invalid data",
	PermissionDenied:  "permission denied",
	Io:                "I/O error",
	StorageFull:       "storage full",
	Unsupported:       "unsupported",
	ResourceBusy:      "resource busy",
	BadAddress:        "bad address",
	WouldBlock:        "would block",
}

func (e VfsError) Error() string {
	if name, ok := errNames[e]; ok {
		return name
	}
	return fmt.Sprintf("vfs error %d", int(e))
}

// WrapError annotates cause with a VfsError so that errors.Is(err,
// vfs.NotFound) still succeeds after wrapping, in the style the
// teacher wraps GCS errors in fs/inode/dir.go ("StatObject: %v")
// upgraded to %w so the sentinel survives.
func WrapError(kind VfsError, cause error, context string) error {
	if cause == nil {
		return fmt.Errorf("%s: %w", context, kind)
	}
	return fmt.Errorf("%s: %w: %v", context, kind, cause)
}

// Is reports whether err (or something it wraps) is the VfsError kind.
func Is(err error, kind VfsError) bool {
	return errors.Is(err, kind)
}

// As extracts the first VfsError in err's chain, if any.
func As(err error) (VfsError, bool) {
	var ve VfsError
	if errors.As(err, &ve) {
		return ve, true
	}
	return 0, false
}
