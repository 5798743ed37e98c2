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

package fat

import (
	"errors"
	"time"

	"github.com/mivik/arceos/vfs"
)

// translateErr maps a Codec sentinel error to the canonical VfsError
// taxonomy, the way the teacher's inode package wraps gcs.NotFoundError
// ("StatObject: %v" in fs/inode/dir.go), generalized to a lookup table.
func translateErr(err error, context string) error {
	switch {
	case errors.Is(err, ErrCodecNotFound):
		return vfs.WrapError(vfs.NotFound, err, context)
	case errors.Is(err, ErrCodecExists):
		return vfs.WrapError(vfs.AlreadyExists, err, context)
	case errors.Is(err, ErrCodecNotEmpty):
		return vfs.WrapError(vfs.DirectoryNotEmpty, err, context)
	case errors.Is(err, ErrCodecBadType):
		return vfs.WrapError(vfs.InvalidInput, err, context)
	case errors.Is(err, ErrCodecNoSpace):
		return vfs.WrapError(vfs.StorageFull, err, context)
	default:
		return vfs.WrapError(vfs.Io, err, context)
	}
}

func timeToSpec(t time.Time) vfs.Timespec {
	return vfs.Timespec{Sec: t.Unix(), Nsec: int64(t.Nanosecond())}
}
