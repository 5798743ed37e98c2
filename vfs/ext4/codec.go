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

// Package ext4 adapts an external ext4 codec library to the vfs node
// contracts, the same way package fat adapts a FAT codec: the Codec
// interface below is the seam a real driver over an on-disk ext4
// volume would satisfy.
package ext4

import (
	"time"

	"github.com/mivik/arceos/vfs"
)

// DirEntry is a single raw directory entry, or a stat snapshot, as the
// codec reports it. Unlike FAT, ext4 inode numbers are the codec's own
// id and are stable for the life of the mount (spec.md §3), so the
// adapter uses row.ID directly rather than minting its own.
type DirEntry struct {
	Name  string
	ID    uint64
	Kind  vfs.NodeType
	Nlink uint64
	Size  uint64
}

// Times bundles the three timestamps an ext4 inode carries, at full
// nanosecond resolution unlike FAT's DOS-format times.
type Times struct {
	AccessTime time.Time
	ModTime    time.Time
	ChangeTime time.Time
}

// Codec is the contract the external ext4 library must satisfy.
// Errors it returns are expected to carry a POSIX-shaped numeric code
// recoverable via errors.As into a CodecError (errors.go); codes this
// adapter does not recognise collapse to vfs.Io, per spec.md §4.5.
type Codec interface {
	// ReadDir lists dirID's entries in codec-defined order, starting at
	// cursor (0 = beginning). Names are returned verbatim; ext4 does no
	// case folding.
	ReadDir(dirID uint64, cursor uint64) (batch []DirEntry, nextCursor uint64, err error)

	// Lookup resolves name within dirID case-sensitively.
	Lookup(dirID uint64, name string) (DirEntry, error)

	// Create makes a new child of nodeType. Ext4 supports the full
	// vfs.NodeType set, unlike FAT's file/directory-only restriction.
	Create(dirID uint64, name string, nodeType vfs.NodeType) (DirEntry, error)

	// Link adds name in dirID pointing at the existing inode targetID,
	// incrementing its link count. Returns the new DirEntry reflecting
	// the updated nlink.
	Link(dirID uint64, name string, targetID uint64) (DirEntry, error)

	// Remove deletes name from dirID, decrementing nlink (and freeing
	// the inode once it reaches zero). isDir selects the expected kind.
	Remove(dirID uint64, name string, isDir bool) error

	// Rename moves srcName out of srcDirID into dstDirID as dstName,
	// atomically replacing any existing dstName itself (unlike FAT, the
	// codec is expected to handle the replace without a separate
	// pre-unlink step).
	Rename(srcDirID uint64, srcName string, dstDirID uint64, dstName string) error

	// ReadAt/WriteAt access file contents by inode id. Reading past EOF
	// returns (0, nil), leaving EOF detection to the adapter.
	ReadAt(fileID uint64, p []byte, off int64) (n int, err error)
	WriteAt(fileID uint64, p []byte, off int64) (n int, err error)

	// Truncate changes a file's length, zero-filling any new bytes.
	Truncate(fileID uint64, size uint64) error

	// Stat returns a fresh snapshot of id's directory-entry-shaped
	// attributes (kind, nlink, size) plus its timestamps.
	Stat(id uint64) (DirEntry, Times, error)

	// Sync flushes cached codec state for id to the block device.
	Sync(id uint64) error
}
