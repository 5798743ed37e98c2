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
	"context"
	"io"
	"sync"

	"github.com/mivik/arceos/vfs"
)

// FileInode is the FAT adapter's file node. Per spec.md §5, each open
// file serialises its own cursor/codec access behind a private mutex;
// concurrent read/write on the same fd is therefore serialised here,
// while unrelated files proceed independently.
type FileInode struct {
	fs      *Filesystem
	codecID uint64
	inodeID uint64
	name    string
	mode    vfs.NodePermission

	mu     sync.Mutex
	cursor uint64
}

var _ vfs.FileNode = (*FileInode)(nil)

func (f *FileInode) Metadata(ctx context.Context) (vfs.Metadata, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	size, err := f.fs.codec.Size(f.codecID)
	if err != nil {
		return vfs.Metadata{}, translateErr(err, "stat file")
	}
	times, err := f.fs.codec.StatTimes(f.codecID)
	if err != nil {
		return vfs.Metadata{}, translateErr(err, "stat file")
	}

	return vfs.Metadata{
		InodeID:   f.inodeID,
		DeviceID:  f.fs.deviceID,
		Nlink:     1,
		Mode:      f.mode,
		NodeType:  vfs.RegularFile,
		Size:      size,
		BlockSize: 512,
		Blocks:    size / 512,
		ATime:     timeToSpec(times.AccessDay),
		MTime:     timeToSpec(times.ModTime),
		CTime:     timeToSpec(times.ChangeTime),
	}, nil
}

func (f *FileInode) Sync(ctx context.Context, dataOnly bool) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if err := f.fs.codec.Sync(f.codecID); err != nil {
		return translateErr(err, "sync file")
	}
	return nil
}

func (f *FileInode) Read(ctx context.Context, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fs.mu.Lock()
	size, serr := f.fs.codec.Size(f.codecID)
	if serr != nil {
		f.fs.mu.Unlock()
		return 0, translateErr(serr, "read")
	}
	if f.cursor >= size {
		f.fs.mu.Unlock()
		return 0, io.EOF
	}
	n, err := f.fs.codec.ReadAt(f.codecID, buf, int64(f.cursor))
	f.fs.mu.Unlock()
	if err != nil {
		return n, translateErr(err, "read")
	}
	f.cursor += uint64(n)
	return n, nil
}

func (f *FileInode) Write(ctx context.Context, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fs.mu.Lock()
	n, err := f.fs.codec.WriteAt(f.codecID, buf, int64(f.cursor))
	f.fs.mu.Unlock()
	if err != nil {
		return n, translateErr(err, "write")
	}
	f.cursor += uint64(n)
	return n, nil
}

// Seek implements vfs.FileNode.Seek per spec.md §4.3: seeking past the
// end is allowed and becomes visible on the next write.
func (f *FileInode) Seek(ctx context.Context, pos vfs.SeekPos) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var base int64
	switch pos.Whence {
	case vfs.SeekStart:
		if pos.Offset < 0 {
			return 0, vfs.WrapError(vfs.InvalidInput, nil, "seek: negative absolute offset")
		}
		f.cursor = uint64(pos.Offset)
		return f.cursor, nil
	case vfs.SeekCurrent:
		base = int64(f.cursor)
	case vfs.SeekEnd:
		f.fs.mu.Lock()
		size, err := f.fs.codec.Size(f.codecID)
		f.fs.mu.Unlock()
		if err != nil {
			return 0, translateErr(err, "seek")
		}
		base = int64(size)
	default:
		return 0, vfs.WrapError(vfs.InvalidInput, nil, "seek: bad whence")
	}

	newPos := base + pos.Offset
	if newPos < 0 {
		return 0, vfs.WrapError(vfs.InvalidInput, nil, "seek: negative resulting offset")
	}
	f.cursor = uint64(newPos)
	return f.cursor, nil
}

// Truncate implements vfs.FileNode.Truncate.
func (f *FileInode) Truncate(ctx context.Context, size uint64) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if err := f.fs.codec.Truncate(f.codecID, size); err != nil {
		return translateErr(err, "truncate")
	}
	return nil
}

func (f *FileInode) ID() uint64   { return f.inodeID }
func (f *FileInode) Name() string { return f.name }
