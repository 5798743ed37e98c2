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
	"sync"

	"github.com/google/uuid"
	"github.com/mivik/arceos/vfs"
)

// Filesystem is the FAT adapter's vfs.Filesystem implementation. It
// holds the single codec handle behind a mutex: per spec.md §4.4, the
// adapter "borrows" the codec on each call rather than caching any
// iterator across calls, and per spec.md §5 the whole mount shares one
// coarse-grained lock around codec state.
type Filesystem struct {
	deviceID uint64
	root     *vfs.DirEntry

	mu    sync.Mutex // guards codec and ids; held for the duration of every node op
	codec Codec
	ids   *inodeAllocator

	// codecToInode remembers the inode id minted for each codec id so
	// that repeated lookups of the same on-disk entry see a stable
	// id, per spec.md §3's Metadata invariant.
	codecToInode map[uint64]uint64
}

var _ vfs.Filesystem = (*Filesystem)(nil)

// Mount builds a FAT-backed Filesystem over codec, whose root
// directory is identified by rootCodecID (typically the volume's
// fixed root cluster). Two-phase construction mirrors spec.md §9: the
// Filesystem exists with no root DirEntry until the root DirInode,
// which needs a *Filesystem back-reference, has been built.
func Mount(codec Codec, rootCodecID uint64) (*Filesystem, error) {
	fs := &Filesystem{
		deviceID:     uuidDeviceID(),
		codec:        codec,
		ids:          newInodeAllocator(),
		codecToInode: map[uint64]uint64{rootCodecID: RootInodeID},
	}

	rootNode := &DirInode{
		fs:      fs,
		codecID: rootCodecID,
		inodeID: RootInodeID,
		name:    "",
		mode:    0o755,
	}
	fs.root = vfs.NewRootDirEntry(rootNode)

	return fs, nil
}

func uuidDeviceID() uint64 {
	id := uuid.New()
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(id[i])
	}
	return v
}

// RootDir implements vfs.Filesystem.
func (f *Filesystem) RootDir() *vfs.DirEntry { return f.root }

// DeviceID implements vfs.Filesystem.
func (f *Filesystem) DeviceID() uint64 { return f.deviceID }

// inodeFor returns the stable inode id for a codec id, minting one on
// first sight. Caller must hold f.mu.
func (f *Filesystem) inodeFor(codecID uint64) uint64 {
	if id, ok := f.codecToInode[codecID]; ok {
		return id
	}
	id := f.ids.Alloc()
	f.codecToInode[codecID] = id
	return id
}
