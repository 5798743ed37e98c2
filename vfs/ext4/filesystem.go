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

package ext4

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mivik/arceos/vfs"
)

// Filesystem is the ext4 adapter's vfs.Filesystem implementation. As
// with package fat, one coarse mutex guards all codec access for the
// life of the mount (spec.md §5); unlike FAT there is no inode
// allocator, since ext4 inode numbers are already stable codec ids.
type Filesystem struct {
	deviceID uint64
	root     *vfs.DirEntry

	mu    sync.Mutex
	codec Codec
}

var _ vfs.Filesystem = (*Filesystem)(nil)

// Mount builds an ext4-backed Filesystem over codec, whose root
// directory is identified by rootInode (the ext4 root is conventionally
// inode 2, but the caller decides).
func Mount(codec Codec, rootInode uint64) (*Filesystem, error) {
	fs := &Filesystem{
		deviceID: uuidDeviceID(),
		codec:    codec,
	}

	rootNode := &DirInode{fs: fs, inodeID: rootInode, name: "", mode: 0o755}
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
