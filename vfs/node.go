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

import "context"

// NodeType enumerates the kinds of object a Node can represent.
type NodeType int

const (
	RegularFile NodeType = iota
	Directory
	Symlink
	CharacterDevice
	BlockDevice
	Fifo
	Socket
	Unknown
)

// NodePermission is a 12-bit POSIX mode: rwx for user/group/other plus
// setuid/setgid/sticky.
type NodePermission uint16

const (
	PermSetUID NodePermission = 1 << 11
	PermSetGID NodePermission = 1 << 10
	PermSticky NodePermission = 1 << 9
)

// Timespec is a point in time expressed as the backend codecs do: a
// Unix-epoch second count plus a nanosecond remainder.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// Metadata is a point-in-time snapshot of a node's attributes.
type Metadata struct {
	InodeID   uint64
	DeviceID  uint64
	Nlink     uint64
	Mode      NodePermission
	NodeType  NodeType
	UID, GID  uint32
	Size      uint64
	BlockSize uint64
	Blocks    uint64
	ATime     Timespec
	MTime     Timespec
	CTime     Timespec
}

// SeekWhence selects the origin for File.Seek.
type SeekWhence int

const (
	SeekStart SeekWhence = iota
	SeekCurrent
	SeekEnd
)

// SeekPos names the origin and offset for a seek.
type SeekPos struct {
	Whence SeekWhence
	Offset int64 // must be non-negative for SeekStart, signed delta otherwise
}

// NodeOps is the set of operations common to every node, regardless of
// whether it is a file or a directory. FileNode and DirNode embed it.
type NodeOps interface {
	// Metadata returns a fresh attribute snapshot. Requires no lock:
	// backends take whatever internal lock they need.
	Metadata(ctx context.Context) (Metadata, error)

	// Sync flushes pending state to the backing store. If dataOnly is
	// true, only file contents are flushed, not metadata (mirrors
	// fdatasync vs fsync).
	Sync(ctx context.Context, dataOnly bool) error
}

// FileNode is the node-level contract for regular files (§4.3).
type FileNode interface {
	NodeOps

	// Read fills buf starting at the node's cursor, advancing it by
	// the number of bytes returned. Partial reads are allowed.
	Read(ctx context.Context, buf []byte) (n int, err error)

	// Write copies buf to the node starting at the cursor, advancing
	// it by the number of bytes returned. Partial writes are allowed.
	Write(ctx context.Context, buf []byte) (n int, err error)

	// Seek repositions the cursor and returns the new absolute
	// offset. Seeking past the end is allowed.
	Seek(ctx context.Context, pos SeekPos) (newOffset uint64, err error)

	// Truncate changes the file's length, backing the POSIX shim's
	// O_TRUNC open flag. New bytes beyond the previous
	// length read as zero; the cursor is not moved.
	Truncate(ctx context.Context, size uint64) error
}

// DirVisitResult tells Directory.ReadDir whether to keep iterating.
type DirVisitResult int

const (
	DirVisitContinue DirVisitResult = iota
	DirVisitStop
)

// DirVisitor is invoked once per entry during ReadDir.
type DirVisitor func(name string, nextOffset uint64, build func() (*DirEntry, error)) DirVisitResult

// DirNode is the node-level contract for directories (§4.2).
type DirNode interface {
	NodeOps

	// ReadDir starts at offset (0 = beginning) and invokes visitor for
	// each entry until the visitor returns DirVisitStop or entries are
	// exhausted. It returns the number of entries visited. self is the
	// DirEntry the caller used to reach this node, becoming the weak
	// parent link for any DirEntry a lazy builder constructs.
	ReadDir(ctx context.Context, self *DirEntry, offset uint64, visitor DirVisitor) (count int, err error)

	// Lookup resolves name to a child entry, linked as a child of self
	// (the DirEntry the caller used to reach this node). Case
	// sensitivity is backend-defined (case-insensitive on FAT,
	// case-sensitive on ext4).
	Lookup(ctx context.Context, self *DirEntry, name string) (*DirEntry, error)

	// Create makes a new child of the given type and mode, linked as a
	// child of self, failing AlreadyExists if name is taken.
	Create(ctx context.Context, self *DirEntry, name string, nodeType NodeType, mode NodePermission) (*DirEntry, error)

	// Link creates a new name in this directory (linked as a child of
	// self) referring to the node behind existing. FAT always fails
	// PermissionDenied.
	Link(ctx context.Context, self *DirEntry, newName string, existing *DirEntry) (*DirEntry, error)

	// Unlink removes name, failing DirectoryNotEmpty if isDir and the
	// target directory is non-empty, or a type-mismatch error
	// otherwise.
	Unlink(ctx context.Context, name string, isDir bool) error

	// Rename moves srcName (a child of this directory) to dstName
	// inside dstDir, atomically within one filesystem.
	Rename(ctx context.Context, srcName string, dstDir DirNode, dstName string) error
}

// Filesystem is the backend-agnostic handle to a single mounted
// filesystem (§3's "rooted tree of DirEntries").
type Filesystem interface {
	// RootDir returns the filesystem's root DirEntry. Its parent is
	// always absent.
	RootDir() *DirEntry

	// DeviceID identifies this mount for Metadata.DeviceID.
	DeviceID() uint64
}
