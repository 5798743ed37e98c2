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

// Package fat adapts the FAT12/16/32 codec library (an external
// collaborator per spec.md §1, not implemented here) to the vfs node
// contracts. The Codec interface below is the seam: a real build
// would satisfy it with a driver over an on-disk FAT volume exposed
// through a block device, the way the teacher's fs/inode package is
// built against the gcs.Bucket interface rather than the GCS wire
// protocol directly.
package fat

import (
	"errors"
	"time"
)

// Sentinel errors a Codec implementation returns; the adapter
// translates these into the canonical vfs.VfsError taxonomy.
var (
	ErrCodecNotFound = errors.New("fat: entry not found")
	ErrCodecExists   = errors.New("fat: entry exists")
	ErrCodecNotEmpty = errors.New("fat: directory not empty")
	ErrCodecBadType  = errors.New("fat: operation not valid for entry type")
	ErrCodecIO       = errors.New("fat: I/O error")
	ErrCodecNoSpace  = errors.New("fat: no space left on device")
)

// EntryKind distinguishes the two node kinds FAT can store.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindDir
)

// DirEntry is a single raw directory entry as the codec reports it.
// Name is whatever the codec decoded (short or long name); the
// adapter is responsible for the lower-casing spec.md §4.4 mandates.
type DirEntry struct {
	Name string
	ID   uint64 // codec-internal cluster/handle reference
	Kind EntryKind
	Size uint64
}

// Times bundles the three timestamps a FAT directory entry carries.
// Access has day granularity only, per the FAT on-disk format;
// ModTime and ChangeTime carry the 2-second-resolution write time.
type Times struct {
	AccessDay  time.Time
	ModTime    time.Time
	ChangeTime time.Time
}

// Codec is the contract the external FAT library must satisfy. All
// methods operate on codec-internal ids (cluster numbers, typically)
// handed back from ReadDir/Lookup/Create.
type Codec interface {
	// ReadDir lists the directory's entries in codec-defined order,
	// starting at cursor (0 = beginning). It returns a batch and the
	// cursor to resume at (0 once exhausted).
	ReadDir(dirID uint64, cursor uint32) (batch []DirEntry, nextCursor uint32, err error)

	// Lookup resolves name within dirID, matching case-insensitively.
	// Returns ErrCodecNotFound if absent.
	Lookup(dirID uint64, name string) (DirEntry, error)

	// CreateFile and CreateDir make a new, empty child. Both return
	// ErrCodecExists if name is already taken.
	CreateFile(dirID uint64, name string) (DirEntry, error)
	CreateDir(dirID uint64, name string) (DirEntry, error)

	// Remove deletes name from dirID. isDir selects which kind is
	// expected; ErrCodecBadType on mismatch, ErrCodecNotEmpty if isDir
	// and the target directory has children.
	Remove(dirID uint64, name string, isDir bool) error

	// Rename moves srcName out of srcDirID into dstDirID as dstName.
	// The codec itself returns ErrCodecExists if dstName is taken
	// (the adapter pre-unlinks to avoid this, per spec.md §4.4).
	Rename(srcDirID uint64, srcName string, dstDirID uint64, dstName string) error

	// ReadAt/WriteAt access file contents by codec id at a byte
	// offset, with the same partial-transfer semantics as io.ReaderAt
	// / io.WriterAt except that reading past EOF returns (0, nil)
	// rather than io.EOF, leaving EOF detection to the adapter.
	ReadAt(fileID uint64, p []byte, off int64) (n int, err error)
	WriteAt(fileID uint64, p []byte, off int64) (n int, err error)

	// Truncate changes a file's length, zero-filling any new bytes.
	Truncate(fileID uint64, size uint64) error

	// Size reports the current length of a file or directory's
	// backing data.
	Size(id uint64) (uint64, error)

	// StatTimes returns the entry's on-disk timestamps.
	StatTimes(id uint64) (Times, error)

	// Sync flushes cached codec state for id to the block device.
	Sync(id uint64) error
}
