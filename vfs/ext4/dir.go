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
	"context"

	"github.com/mivik/arceos/internal/metrics"
	"github.com/mivik/arceos/vfs"
)

// DirInode is the ext4 adapter's directory node. Names pass through
// unmodified (no case folding, unlike FAT), and node types map
// one-to-one onto vfs.NodeType per spec.md §4.5.
type DirInode struct {
	fs      *Filesystem
	inodeID uint64
	name    string
	mode    vfs.NodePermission
}

var _ vfs.DirNode = (*DirInode)(nil)

// inodeIDer is satisfied by both DirInode and FileInode, letting Link
// and Rename recover the raw inode id (and owning Filesystem) of an
// arbitrary vfs.NodeOps without a third, parallel type switch.
type inodeIDer interface {
	ID() uint64
	filesystem() *Filesystem
}

func (d *DirInode) filesystem() *Filesystem { return d.fs }

func (d *DirInode) Metadata(ctx context.Context) (vfs.Metadata, error) {
	d.fs.mu.Lock()
	row, times, err := d.fs.codec.Stat(d.inodeID)
	d.fs.mu.Unlock()
	if err != nil {
		return vfs.Metadata{}, translateErr(err, "stat directory")
	}

	return vfs.Metadata{
		InodeID:   d.inodeID,
		DeviceID:  d.fs.deviceID,
		Nlink:     row.Nlink,
		Mode:      d.mode,
		NodeType:  vfs.Directory,
		Size:      row.Size,
		BlockSize: 4096,
		Blocks:    row.Size / 512,
		ATime:     timeToSpec(times.AccessTime),
		MTime:     timeToSpec(times.ModTime),
		CTime:     timeToSpec(times.ChangeTime),
	}, nil
}

func (d *DirInode) Sync(ctx context.Context, dataOnly bool) error {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if err := d.fs.codec.Sync(d.inodeID); err != nil {
		return translateErr(err, "sync directory")
	}
	return nil
}

func (d *DirInode) ReadDir(ctx context.Context, self *vfs.DirEntry, offset uint64, visitor vfs.DirVisitor) (count int, err error) {
	cursor := offset
	for {
		d.fs.mu.Lock()
		batch, nextCursor, rerr := d.fs.codec.ReadDir(d.inodeID, cursor)
		d.fs.mu.Unlock()
		if rerr != nil {
			return count, translateErr(rerr, "read directory")
		}

		for _, raw := range batch {
			row := raw
			build := func() (*vfs.DirEntry, error) {
				return wrapCodecEntry(d.fs, self, row), nil
			}
			result := visitor(row.Name, nextCursor, build)
			count++
			if result == vfs.DirVisitStop {
				return count, nil
			}
		}

		if nextCursor == 0 {
			return count, nil
		}
		cursor = nextCursor
	}
}

func wrapCodecEntry(fs *Filesystem, self *vfs.DirEntry, row DirEntry) *vfs.DirEntry {
	var node vfs.NodeOps
	if row.Kind == vfs.Directory {
		node = &DirInode{fs: fs, inodeID: row.ID, name: row.Name, mode: 0o755}
	} else {
		node = &FileInode{fs: fs, inodeID: row.ID, name: row.Name, mode: 0o644}
	}
	return vfs.NewDirEntry(self, row.Name, node)
}

// Lookup implements vfs.DirNode.Lookup case-sensitively.
func (d *DirInode) Lookup(ctx context.Context, self *vfs.DirEntry, name string) (*vfs.DirEntry, error) {
	d.fs.mu.Lock()
	row, err := d.fs.codec.Lookup(d.inodeID, name)
	d.fs.mu.Unlock()
	if err != nil {
		return nil, translateErr(err, "lookup")
	}
	return wrapCodecEntry(d.fs, self, row), nil
}

// Create implements vfs.DirNode.Create. Ext4 accepts the full
// vfs.NodeType set, not just files and directories.
func (d *DirInode) Create(ctx context.Context, self *vfs.DirEntry, name string, nodeType vfs.NodeType, mode vfs.NodePermission) (*vfs.DirEntry, error) {
	d.fs.mu.Lock()
	row, err := d.fs.codec.Create(d.inodeID, name, nodeType)
	d.fs.mu.Unlock()
	if err != nil {
		return nil, translateErr(err, "create")
	}

	entry := wrapCodecEntry(d.fs, self, row)
	switch n := entry.Node().(type) {
	case *DirInode:
		n.mode = mode
	case *FileInode:
		n.mode = mode
	}
	return entry, nil
}

// Link implements vfs.DirNode.Link: ext4 supports hard links within a
// filesystem but rejects them across filesystems, per spec.md §4.2.
func (d *DirInode) Link(ctx context.Context, self *vfs.DirEntry, newName string, existing *vfs.DirEntry) (*vfs.DirEntry, error) {
	target, ok := existing.Node().(inodeIDer)
	if !ok || target.filesystem() != d.fs {
		return nil, vfs.WrapError(vfs.InvalidInput, nil, "link: cross-filesystem hard link")
	}

	d.fs.mu.Lock()
	row, err := d.fs.codec.Link(d.inodeID, newName, target.ID())
	d.fs.mu.Unlock()
	if err != nil {
		return nil, translateErr(err, "link")
	}
	return wrapCodecEntry(d.fs, self, row), nil
}

func (d *DirInode) Unlink(ctx context.Context, name string, isDir bool) error {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if err := d.fs.codec.Remove(d.inodeID, name, isDir); err != nil {
		return translateErr(err, "unlink")
	}
	return nil
}

// Rename implements vfs.DirNode.Rename. Unlike FAT, the codec handles
// an existing destination name atomically; the adapter does not need
// to pre-unlink it.
func (d *DirInode) Rename(ctx context.Context, srcName string, dstDir vfs.DirNode, dstName string) error {
	dst, ok := dstDir.(*DirInode)
	if !ok || dst.fs != d.fs {
		return vfs.WrapError(vfs.InvalidInput, nil, "rename: cross-filesystem rename")
	}

	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	if _, err := d.fs.codec.Lookup(dst.inodeID, dstName); err == nil {
		metrics.RecordRenameCollision("ext4")
	}

	if err := d.fs.codec.Rename(d.inodeID, srcName, dst.inodeID, dstName); err != nil {
		return translateErr(err, "rename")
	}
	return nil
}

func (d *DirInode) ID() uint64   { return d.inodeID }
func (d *DirInode) Name() string { return d.name }
