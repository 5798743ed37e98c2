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

// baseFilesystem is an embeddable helper for backend Filesystem
// implementations; neither fat.Filesystem nor ext4.Filesystem embeds
// it (each builds its root with NewRootDirEntry itself). It exists
// because the root
// DirEntry is self-referential: the DirEntry needs a node, and on some
// backends (FAT) that node needs to know its own filesystem's device
// id before the DirEntry can be built. The teacher's NewRootInode
// (fs/inode/dir.go) sidesteps this by minting the root id up front;
// here we go one step further with an explicit two-phase slot per
// spec.md §9, since the DirEntry itself — not just the inode id — is
// what's self-referential.
type baseFilesystem struct {
	deviceID uint64
	root     *DirEntry // set exactly once, by SetRoot
}

// DeviceID implements Filesystem.
func (b *baseFilesystem) DeviceID() uint64 {
	return b.deviceID
}

// RootDir implements Filesystem. Calling it before SetRoot is a
// programming error in the adapter, not a recoverable runtime state.
func (b *baseFilesystem) RootDir() *DirEntry {
	if b.root == nil {
		panic("vfs: RootDir called before SetRoot")
	}
	return b.root
}

// SetRoot fills the late-init slot. It may be called only once, right
// after constructing the root node, completing the two-phase
// construction: build the Filesystem with an empty root, build the
// root node (which may need to reference the Filesystem, e.g. to grab
// its shared codec mutex), then tie the two together here.
func (b *baseFilesystem) SetRoot(root NodeOps) {
	if b.root != nil {
		panic("vfs: SetRoot called twice")
	}
	b.root = NewRootDirEntry(root)
}

// NewBaseFilesystem constructs the embeddable base with a device id
// but no root yet; call SetRoot before RootDir is used.
func NewBaseFilesystem(deviceID uint64) baseFilesystem {
	return baseFilesystem{deviceID: deviceID}
}
