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

package ext4_test

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/vfs"
	"github.com/mivik/arceos/vfs/ext4"
)

type fakeInode struct {
	kind     vfs.NodeType
	data     []byte
	nlink    uint64
	children map[string]uint64
}

// fakeCodec is a minimal in-memory stand-in for an external ext4 codec
// library. Errors are returned as ext4.CodecError, the numeric-errno
// shape the real adapter expects.
type fakeCodec struct {
	mu     sync.Mutex
	nodes  map[uint64]*fakeInode
	nextID uint64
}

const fakeRootID = 2

func newFakeCodec() *fakeCodec {
	return &fakeCodec{
		nodes:  map[uint64]*fakeInode{fakeRootID: {kind: vfs.Directory, nlink: 2, children: map[string]uint64{}}},
		nextID: fakeRootID + 1,
	}
}

func errno(e int) error { return ext4.CodecError(e) }

func (c *fakeCodec) dir(id uint64) (*fakeInode, error) {
	n, ok := c.nodes[id]
	if !ok {
		return nil, errno(int(unix.ENOENT))
	}
	if n.kind != vfs.Directory {
		return nil, errno(int(unix.ENOTDIR))
	}
	return n, nil
}

func (c *fakeCodec) ReadDir(dirID uint64, cursor uint64) ([]ext4.DirEntry, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return nil, 0, err
	}
	if cursor != 0 {
		return nil, 0, nil
	}

	var batch []ext4.DirEntry
	for name, id := range d.children {
		child := c.nodes[id]
		batch = append(batch, ext4.DirEntry{Name: name, ID: id, Kind: child.kind, Nlink: child.nlink, Size: uint64(len(child.data))})
	}
	return batch, 0, nil
}

func (c *fakeCodec) Lookup(dirID uint64, name string) (ext4.DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return ext4.DirEntry{}, err
	}
	id, ok := d.children[name]
	if !ok {
		return ext4.DirEntry{}, errno(int(unix.ENOENT))
	}
	child := c.nodes[id]
	return ext4.DirEntry{Name: name, ID: id, Kind: child.kind, Nlink: child.nlink, Size: uint64(len(child.data))}, nil
}

func (c *fakeCodec) Create(dirID uint64, name string, nodeType vfs.NodeType) (ext4.DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return ext4.DirEntry{}, err
	}
	if _, ok := d.children[name]; ok {
		return ext4.DirEntry{}, errno(int(unix.EEXIST))
	}

	id := c.nextID
	c.nextID++
	node := &fakeInode{kind: nodeType, nlink: 1}
	if nodeType == vfs.Directory {
		node.children = map[string]uint64{}
		node.nlink = 2
	}
	c.nodes[id] = node
	d.children[name] = id

	return ext4.DirEntry{Name: name, ID: id, Kind: nodeType, Nlink: node.nlink}, nil
}

func (c *fakeCodec) Link(dirID uint64, name string, targetID uint64) (ext4.DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return ext4.DirEntry{}, err
	}
	target, ok := c.nodes[targetID]
	if !ok {
		return ext4.DirEntry{}, errno(int(unix.ENOENT))
	}
	if target.kind == vfs.Directory {
		return ext4.DirEntry{}, errno(int(unix.EPERM))
	}
	if _, exists := d.children[name]; exists {
		return ext4.DirEntry{}, errno(int(unix.EEXIST))
	}

	target.nlink++
	d.children[name] = targetID
	return ext4.DirEntry{Name: name, ID: targetID, Kind: target.kind, Nlink: target.nlink, Size: uint64(len(target.data))}, nil
}

func (c *fakeCodec) Remove(dirID uint64, name string, isDir bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return err
	}
	id, ok := d.children[name]
	if !ok {
		return errno(int(unix.ENOENT))
	}
	child := c.nodes[id]
	wantDir := child.kind == vfs.Directory
	if wantDir != isDir {
		if wantDir {
			return errno(int(unix.EISDIR))
		}
		return errno(int(unix.ENOTDIR))
	}
	if wantDir && len(child.children) > 0 {
		return errno(int(unix.ENOTEMPTY))
	}

	delete(d.children, name)
	if wantDir {
		delete(c.nodes, id)
		return nil
	}
	child.nlink--
	if child.nlink == 0 {
		delete(c.nodes, id)
	}
	return nil
}

func (c *fakeCodec) Rename(srcDirID uint64, srcName string, dstDirID uint64, dstName string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	srcDir, err := c.dir(srcDirID)
	if err != nil {
		return err
	}
	dstDir, err := c.dir(dstDirID)
	if err != nil {
		return err
	}
	id, ok := srcDir.children[srcName]
	if !ok {
		return errno(int(unix.ENOENT))
	}

	if existingID, exists := dstDir.children[dstName]; exists {
		existing := c.nodes[existingID]
		if existing.kind == vfs.Directory && len(existing.children) > 0 {
			return errno(int(unix.ENOTEMPTY))
		}
		delete(c.nodes, existingID)
	}

	delete(srcDir.children, srcName)
	dstDir.children[dstName] = id
	return nil
}

func (c *fakeCodec) ReadAt(fileID uint64, p []byte, off int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[fileID]
	if !ok {
		return 0, errno(int(unix.ENOENT))
	}
	if off >= int64(len(n.data)) {
		return 0, nil
	}
	return copy(p, n.data[off:]), nil
}

func (c *fakeCodec) WriteAt(fileID uint64, p []byte, off int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[fileID]
	if !ok {
		return 0, errno(int(unix.ENOENT))
	}
	end := off + int64(len(p))
	if end > int64(len(n.data)) {
		grown := make([]byte, end)
		copy(grown, n.data)
		n.data = grown
	}
	copy(n.data[off:end], p)
	return len(p), nil
}

func (c *fakeCodec) Truncate(fileID uint64, size uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[fileID]
	if !ok {
		return errno(int(unix.ENOENT))
	}
	grown := make([]byte, size)
	copy(grown, n.data)
	n.data = grown
	return nil
}

func (c *fakeCodec) Stat(id uint64) (ext4.DirEntry, ext4.Times, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		return ext4.DirEntry{}, ext4.Times{}, errno(int(unix.ENOENT))
	}
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return ext4.DirEntry{ID: id, Kind: n.kind, Nlink: n.nlink, Size: uint64(len(n.data))},
		ext4.Times{AccessTime: t, ModTime: t, ChangeTime: t}, nil
}

func (c *fakeCodec) Sync(id uint64) error { return nil }

var _ ext4.Codec = (*fakeCodec)(nil)
