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

package fat_test

import (
	"sync"
	"time"

	"github.com/mivik/arceos/vfs/fat"
)

// fakeNode backs one entry in the in-memory fake codec below. It
// stands in for the real FAT driver's cluster-chain bookkeeping.
type fakeNode struct {
	kind     fat.EntryKind
	data     []byte
	children map[string]uint64 // lower-cased name -> child id
}

// fakeCodec is a minimal in-memory stand-in for the external FAT
// codec library, used the way the teacher tests fs/inode against a
// fake GCS bucket rather than a live bucket.
type fakeCodec struct {
	mu     sync.Mutex
	nodes  map[uint64]*fakeNode
	nextID uint64
}

const fakeRootID = 100

func newFakeCodec() *fakeCodec {
	return &fakeCodec{
		nodes:  map[uint64]*fakeNode{fakeRootID: {kind: fat.KindDir, children: map[string]uint64{}}},
		nextID: fakeRootID + 1,
	}
}

func (c *fakeCodec) dir(id uint64) (*fakeNode, error) {
	n, ok := c.nodes[id]
	if !ok || n.kind != fat.KindDir {
		return nil, fat.ErrCodecBadType
	}
	return n, nil
}

func (c *fakeCodec) ReadDir(dirID uint64, cursor uint32) ([]fat.DirEntry, uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return nil, 0, err
	}
	if cursor != 0 {
		return nil, 0, nil
	}

	var batch []fat.DirEntry
	for name, id := range d.children {
		child := c.nodes[id]
		batch = append(batch, fat.DirEntry{Name: name, ID: id, Kind: child.kind, Size: uint64(len(child.data))})
	}
	return batch, 0, nil
}

func (c *fakeCodec) Lookup(dirID uint64, name string) (fat.DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return fat.DirEntry{}, err
	}
	id, ok := d.children[name]
	if !ok {
		return fat.DirEntry{}, fat.ErrCodecNotFound
	}
	child := c.nodes[id]
	return fat.DirEntry{Name: name, ID: id, Kind: child.kind, Size: uint64(len(child.data))}, nil
}

func (c *fakeCodec) create(dirID uint64, name string, kind fat.EntryKind) (fat.DirEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	d, err := c.dir(dirID)
	if err != nil {
		return fat.DirEntry{}, err
	}
	if _, ok := d.children[name]; ok {
		return fat.DirEntry{}, fat.ErrCodecExists
	}

	id := c.nextID
	c.nextID++
	node := &fakeNode{kind: kind}
	if kind == fat.KindDir {
		node.children = map[string]uint64{}
	}
	c.nodes[id] = node
	d.children[name] = id

	return fat.DirEntry{Name: name, ID: id, Kind: kind}, nil
}

func (c *fakeCodec) CreateFile(dirID uint64, name string) (fat.DirEntry, error) {
	return c.create(dirID, name, fat.KindFile)
}

func (c *fakeCodec) CreateDir(dirID uint64, name string) (fat.DirEntry, error) {
	return c.create(dirID, name, fat.KindDir)
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
		return fat.ErrCodecNotFound
	}
	child := c.nodes[id]
	wantDir := child.kind == fat.KindDir
	if wantDir != isDir {
		return fat.ErrCodecBadType
	}
	if wantDir && len(child.children) > 0 {
		return fat.ErrCodecNotEmpty
	}

	delete(d.children, name)
	delete(c.nodes, id)
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
		return fat.ErrCodecNotFound
	}
	if _, exists := dstDir.children[dstName]; exists {
		return fat.ErrCodecExists
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
		return 0, fat.ErrCodecNotFound
	}
	if off >= int64(len(n.data)) {
		return 0, nil
	}
	copied := copy(p, n.data[off:])
	return copied, nil
}

func (c *fakeCodec) WriteAt(fileID uint64, p []byte, off int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[fileID]
	if !ok {
		return 0, fat.ErrCodecNotFound
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
		return fat.ErrCodecNotFound
	}
	if uint64(len(n.data)) == size {
		return nil
	}
	grown := make([]byte, size)
	copy(grown, n.data)
	n.data = grown
	return nil
}

func (c *fakeCodec) Size(id uint64) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.nodes[id]
	if !ok {
		return 0, fat.ErrCodecNotFound
	}
	if n.kind == fat.KindDir {
		return uint64(len(n.children)) * 32, nil
	}
	return uint64(len(n.data)), nil
}

func (c *fakeCodec) StatTimes(id uint64) (fat.Times, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.nodes[id]; !ok {
		return fat.Times{}, fat.ErrCodecNotFound
	}
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return fat.Times{AccessDay: t, ModTime: t, ChangeTime: t}, nil
}

func (c *fakeCodec) Sync(id uint64) error {
	return nil
}

var _ fat.Codec = (*fakeCodec)(nil)
