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

import (
	"strings"
	"sync/atomic"
)

// DirEntry (called Location in spec.md's prose) is a shared handle
// naming a node within a parent directory. It carries a strong
// reference to the node and a weak reference to its parent: the
// parent link does not keep the parent DirEntry alive (mirrors the
// lookup-count bookkeeping in the teacher's fs/inode/lookup_count.go,
// generalized from "lookup count" to "strong reference count").
type DirEntry struct {
	// Name of this entry within its parent. Empty only for a
	// filesystem's root. Never contains '/' or '\0'.
	name string

	// node is the backend object. For directories this additionally
	// satisfies DirNode.
	node NodeOps

	// parent is the weak link described in spec.md §3/§9: reading it
	// requires Upgrade(), which returns ok=false once the parent has
	// been released, at which point callers fall back to root_dir.
	parent *DirEntry

	// refs counts strong holders of this DirEntry (FsContext.current_dir,
	// a resolved Location mid-syscall, other DirEntries that keep it
	// alive transitively). It starts at 1, covering the creator.
	refs int32

	// alive is cleared by Release once refs hits zero. Upgrade()
	// consults it instead of assuming the Go pointer is still valid,
	// since the GC would happily keep a cyclic parent graph around
	// forever otherwise.
	alive atomic.Bool
}

// NewRootDirEntry constructs the anchor DirEntry for a filesystem's
// root; its parent is permanently absent.
func NewRootDirEntry(node NodeOps) *DirEntry {
	e := &DirEntry{node: node, refs: 1}
	e.alive.Store(true)
	return e
}

// NewDirEntry constructs a non-root DirEntry. parent must itself be
// alive; the new entry takes a weak (non-owning) link to it.
func NewDirEntry(parent *DirEntry, name string, node NodeOps) *DirEntry {
	e := &DirEntry{name: name, node: node, parent: parent, refs: 1}
	e.alive.Store(true)
	return e
}

// Name returns the entry's name within its parent ("" for a root).
func (e *DirEntry) Name() string {
	return e.name
}

// Node returns the backend node this entry names.
func (e *DirEntry) Node() NodeOps {
	return e.node
}

// IsDir reports whether the underlying node is a directory.
func (e *DirEntry) IsDir() bool {
	_, ok := e.node.(DirNode)
	return ok
}

// DirNode returns the node as a DirNode, or (nil, false) if this entry
// names a file.
func (e *DirEntry) DirNode() (DirNode, bool) {
	d, ok := e.node.(DirNode)
	return d, ok
}

// Parent resolves the weak parent link. ok is false for a filesystem
// root, or for any entry whose parent has since been Released to zero
// references — in both cases the caller should treat the entry as
// rooted at the filesystem's root_dir, per spec.md §9.
func (e *DirEntry) Parent() (parent *DirEntry, ok bool) {
	if e.parent == nil {
		return nil, false
	}
	if !e.parent.alive.Load() {
		return nil, false
	}
	return e.parent, true
}

// Acquire takes a new strong reference, returning e for chaining.
func (e *DirEntry) Acquire() *DirEntry {
	atomic.AddInt32(&e.refs, 1)
	return e
}

// Release drops a strong reference. When the count reaches zero the
// entry is marked dead: any child still holding a weak Parent link to
// it will see Parent() fail from that point on.
func (e *DirEntry) Release() {
	if atomic.AddInt32(&e.refs, -1) == 0 {
		e.alive.Store(false)
	}
}

// AbsolutePath walks parent links concatenating names with '/', per
// spec.md §4.6's canonicalize. It stops either at a true root (no
// parent) or at a released parent, in which case the path is rooted at
// the point where the chain broke.
func (e *DirEntry) AbsolutePath() string {
	var parts []string
	cur := e
	for {
		if cur.name != "" {
			parts = append(parts, cur.name)
		}
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		cur = parent
	}
	// parts were collected child-to-root; reverse them.
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}
