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

package posix

import "golang.org/x/sys/unix"

// Open flags, per spec.md §4.3. The low two bits select the access
// mode; the rest reuse the Linux ABI bit values from golang.org/x/sys
// so a caller porting real open(2) flag words needs no translation.
const (
	ORdonly int32 = unix.O_RDONLY
	OWronly int32 = unix.O_WRONLY
	ORdwr   int32 = unix.O_RDWR

	OAppend    int32 = unix.O_APPEND
	OTrunc     int32 = unix.O_TRUNC
	OCreat     int32 = unix.O_CREAT
	OExcl      int32 = unix.O_EXCL
	ODirectory int32 = unix.O_DIRECTORY

	// OExec has no equivalent Linux open(2) bit (O_PATH|O_EXEC on some
	// platforms); spec.md §4.3 and §9 call it out as recorded but not
	// enforced by any access-control layer yet, so it gets a bit clear
	// of the unix.O_* range rather than colliding with one of them.
	OExec int32 = 1 << 24
)

// Whence values for lseek, per spec.md §6. These line up with
// vfs.SeekStart/SeekCurrent/SeekEnd by construction.
const (
	SeekSet int32 = 0
	SeekCur int32 = 1
	SeekEnd int32 = 2
)

// AtFDCwd is the sentinel dirfd meaning "resolve against the ambient
// current directory" (spec.md §3). It is never a live fd.
const AtFDCwd int32 = -100
