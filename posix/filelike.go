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

import (
	"context"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/vfs"
)

// FileLike is the polymorphic handle the FD table stores, per spec.md
// §3: a File or Directory variant sharing one read/write/stat/poll
// surface, with runtime-type recovery via IsDir.
type FileLike interface {
	Entry() *vfs.DirEntry
	IsDir() bool
	Read(ctx context.Context, buf []byte) (int, error)
	Write(ctx context.Context, buf []byte) (int, error)
	Stat(ctx context.Context) (vfs.Metadata, error)
	Poll(ctx context.Context) (readable, writable bool, err error)
	SetNonblocking(nonblocking bool)
}

// OpenFile is the File variant of FileLike: a node reference plus
// open-state (spec.md §3's "File (open handle)"), serialising
// concurrent use of its cursor behind its own mutex (spec.md §5).
type OpenFile struct {
	entry *vfs.DirEntry
	node  vfs.FileNode
	flags int32

	mu          sync.Mutex
	nonblocking bool
}

var _ FileLike = (*OpenFile)(nil)

func newOpenFile(entry *vfs.DirEntry, node vfs.FileNode, flags int32) *OpenFile {
	return &OpenFile{entry: entry, node: node, flags: flags}
}

func (f *OpenFile) Entry() *vfs.DirEntry { return f.entry }
func (f *OpenFile) IsDir() bool          { return false }

func (f *OpenFile) accessMode() int32 { return f.flags & 0b11 }

func (f *OpenFile) Read(ctx context.Context, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accessMode() == OWronly {
		return 0, Errno(unix.EBADF)
	}
	return f.node.Read(ctx, buf)
}

func (f *OpenFile) Write(ctx context.Context, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.accessMode() == ORdonly {
		return 0, Errno(unix.EBADF)
	}
	if f.flags&OAppend != 0 {
		if _, err := f.node.Seek(ctx, vfs.SeekPos{Whence: vfs.SeekEnd, Offset: 0}); err != nil {
			return 0, err
		}
	}
	return f.node.Write(ctx, buf)
}

func (f *OpenFile) Seek(ctx context.Context, pos vfs.SeekPos) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.node.Seek(ctx, pos)
}

func (f *OpenFile) Stat(ctx context.Context) (vfs.Metadata, error) {
	return f.node.Metadata(ctx)
}

func (f *OpenFile) Poll(ctx context.Context) (readable, writable bool, err error) {
	return true, true, nil
}

func (f *OpenFile) SetNonblocking(nonblocking bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nonblocking = nonblocking
}

// OpenDir is the Directory variant of FileLike (spec.md §4.8): it
// carries a mutable offset cookie private to its owner and refuses
// read/write outright.
type OpenDir struct {
	entry *vfs.DirEntry

	mu     sync.Mutex
	offset uint64
}

var _ FileLike = (*OpenDir)(nil)

func newOpenDir(entry *vfs.DirEntry) *OpenDir {
	return &OpenDir{entry: entry}
}

func (d *OpenDir) Entry() *vfs.DirEntry { return d.entry }
func (d *OpenDir) IsDir() bool          { return true }

func (d *OpenDir) Read(ctx context.Context, buf []byte) (int, error) {
	return 0, Errno(unix.EBADF)
}

func (d *OpenDir) Write(ctx context.Context, buf []byte) (int, error) {
	return 0, Errno(unix.EBADF)
}

func (d *OpenDir) Stat(ctx context.Context) (vfs.Metadata, error) {
	return d.entry.Node().Metadata(ctx)
}

func (d *OpenDir) Poll(ctx context.Context) (readable, writable bool, err error) {
	return true, false, nil
}

func (d *OpenDir) SetNonblocking(nonblocking bool) {}

// Offset returns the directory handle's current cookie.
func (d *OpenDir) Offset() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.offset
}

// SetOffset updates the directory handle's cookie.
func (d *OpenDir) SetOffset(off uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.offset = off
}
