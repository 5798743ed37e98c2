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
	"context"
	"errors"
	"strings"

	"github.com/mivik/arceos/internal/metrics"
	"github.com/mivik/arceos/vfs"
)

// DirInode is the FAT adapter's directory node. It never stores a
// codec iterator across calls: every method re-enters the codec under
// fs.mu for the duration of the call, per spec.md §4.4's "borrowed
// iterator" rule and the design note in §9 ("do not store codec
// iterators across operation boundaries; re-open on each call").
type DirInode struct {
	fs      *Filesystem
	codecID uint64
	inodeID uint64
	name    string // lower-cased, per spec.md §4.4
	mode    vfs.NodePermission
}

var _ vfs.DirNode = (*DirInode)(nil)

func (d *DirInode) Metadata(ctx context.Context) (vfs.Metadata, error) {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	size, err := d.fs.codec.Size(d.codecID)
	if err != nil {
		return vfs.Metadata{}, translateErr(err, "stat directory")
	}
	times, err := d.fs.codec.StatTimes(d.codecID)
	if err != nil {
		return vfs.Metadata{}, translateErr(err, "stat directory")
	}

	return vfs.Metadata{
		InodeID:   d.inodeID,
		DeviceID:  d.fs.deviceID,
		Nlink:     1,
		Mode:      d.mode,
		NodeType:  vfs.Directory,
		Size:      size,
		BlockSize: 512,
		Blocks:    size / 512,
		ATime:     timeToSpec(times.AccessDay),
		MTime:     timeToSpec(times.ModTime),
		CTime:     timeToSpec(times.ChangeTime),
	}, nil
}

func (d *DirInode) Sync(ctx context.Context, dataOnly bool) error {
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if err := d.fs.codec.Sync(d.codecID); err != nil {
		return translateErr(err, "sync directory")
	}
	return nil
}

// ReadDir implements vfs.DirNode.ReadDir by draining the codec a batch
// at a time and re-exposing each row as a lazily-built DirEntry linked
// under self.
func (d *DirInode) ReadDir(ctx context.Context, self *vfs.DirEntry, offset uint64, visitor vfs.DirVisitor) (count int, err error) {
	cursor := uint32(offset)
	for {
		d.fs.mu.Lock()
		batch, nextCursor, rerr := d.fs.codec.ReadDir(d.codecID, cursor)
		if rerr != nil {
			d.fs.mu.Unlock()
			return count, translateErr(rerr, "read directory")
		}
		d.fs.mu.Unlock()

		for _, raw := range batch {
			row := raw
			lowered := strings.ToLower(row.Name)
			build := func() (*vfs.DirEntry, error) {
				d.fs.mu.Lock()
				inodeID := d.fs.inodeFor(row.ID)
				d.fs.mu.Unlock()
				return wrapCodecEntry(d.fs, self, lowered, row, inodeID), nil
			}
			result := visitor(lowered, uint64(nextCursor), build)
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

func wrapCodecEntry(fs *Filesystem, self *vfs.DirEntry, name string, row DirEntry, inodeID uint64) *vfs.DirEntry {
	var node vfs.NodeOps
	switch row.Kind {
	case KindDir:
		node = &DirInode{fs: fs, codecID: row.ID, inodeID: inodeID, name: name, mode: 0o755}
	default:
		node = &FileInode{fs: fs, codecID: row.ID, inodeID: inodeID, name: name, mode: 0o644}
	}
	return vfs.NewDirEntry(self, name, node)
}

// Lookup implements vfs.DirNode.Lookup. FAT lookups are
// case-insensitive; the returned entry's name is lower-cased per
// spec.md §4.4.
func (d *DirInode) Lookup(ctx context.Context, self *vfs.DirEntry, name string) (*vfs.DirEntry, error) {
	lowered := strings.ToLower(name)

	d.fs.mu.Lock()
	row, err := d.fs.codec.Lookup(d.codecID, lowered)
	if err != nil {
		d.fs.mu.Unlock()
		return nil, translateErr(err, "lookup")
	}
	inodeID := d.fs.inodeFor(row.ID)
	d.fs.mu.Unlock()

	return wrapCodecEntry(d.fs, self, lowered, row, inodeID), nil
}

func (d *DirInode) Create(ctx context.Context, self *vfs.DirEntry, name string, nodeType vfs.NodeType, mode vfs.NodePermission) (*vfs.DirEntry, error) {
	if nodeType != vfs.RegularFile && nodeType != vfs.Directory {
		return nil, vfs.WrapError(vfs.InvalidInput, nil, "create: unsupported node type on FAT")
	}
	lowered := strings.ToLower(name)

	d.fs.mu.Lock()
	var row DirEntry
	var err error
	if nodeType == vfs.Directory {
		row, err = d.fs.codec.CreateDir(d.codecID, lowered)
	} else {
		row, err = d.fs.codec.CreateFile(d.codecID, lowered)
	}
	if err != nil {
		d.fs.mu.Unlock()
		return nil, translateErr(err, "create")
	}
	inodeID := d.fs.inodeFor(row.ID)
	d.fs.mu.Unlock()

	entry := wrapCodecEntry(d.fs, self, lowered, row, inodeID)
	switch n := entry.Node().(type) {
	case *DirInode:
		n.mode = mode
	case *FileInode:
		n.mode = mode
	}
	return entry, nil
}

// Link always fails on FAT: there is no hard-link concept in the
// on-disk format (spec.md §4.4).
func (d *DirInode) Link(ctx context.Context, self *vfs.DirEntry, newName string, existing *vfs.DirEntry) (*vfs.DirEntry, error) {
	return nil, vfs.WrapError(vfs.PermissionDenied, nil, "link: hard links unsupported on FAT")
}

func (d *DirInode) Unlink(ctx context.Context, name string, isDir bool) error {
	lowered := strings.ToLower(name)
	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()
	if err := d.fs.codec.Remove(d.codecID, lowered, isDir); err != nil {
		return translateErr(err, "unlink")
	}
	return nil
}

// Rename implements vfs.DirNode.Rename, including spec.md §4.4's
// self-rename collision handling: an existing destination is removed
// first so the codec's own rename never sees an EEXIST.
func (d *DirInode) Rename(ctx context.Context, srcName string, dstDir vfs.DirNode, dstName string) error {
	dst, ok := dstDir.(*DirInode)
	if !ok || dst.fs != d.fs {
		return vfs.WrapError(vfs.InvalidInput, nil, "rename: cross-filesystem rename")
	}

	loweredSrc := strings.ToLower(srcName)
	loweredDst := strings.ToLower(dstName)

	d.fs.mu.Lock()
	defer d.fs.mu.Unlock()

	if existing, err := d.fs.codec.Lookup(dst.codecID, loweredDst); err == nil {
		isDir := existing.Kind == KindDir
		if rerr := d.fs.codec.Remove(dst.codecID, loweredDst, isDir); rerr != nil && !errors.Is(rerr, ErrCodecNotFound) {
			return translateErr(rerr, "rename: clearing destination")
		}
		metrics.RecordRenameCollision("fat")
	} else if !errors.Is(err, ErrCodecNotFound) {
		return translateErr(err, "rename: checking destination")
	}

	if err := d.fs.codec.Rename(d.codecID, loweredSrc, dst.codecID, loweredDst); err != nil {
		return translateErr(err, "rename")
	}
	return nil
}

func (d *DirInode) ID() uint64   { return d.inodeID }
func (d *DirInode) Name() string { return d.name }
