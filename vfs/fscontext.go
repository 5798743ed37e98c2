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
	"context"
	"io"
)

// FsContext is the per-task view named in spec.md §3: a root and a
// current directory. The process-wide ambient instance is kept behind
// its own mutex by the posix package (§5); FsContext itself does no
// locking of its own beyond what the backend node operations require.
type FsContext struct {
	rootDir    *DirEntry
	currentDir *DirEntry
}

// NewFsContext builds a view rooted and initially positioned at root.
func NewFsContext(root *DirEntry) *FsContext {
	return &FsContext{rootDir: root.Acquire(), currentDir: root.Acquire()}
}

// NewFsContextWithCwd builds a view rooted at root but initially
// positioned at cwd. This backs the POSIX shim's `*at` syscalls, which
// resolve relative paths against an arbitrary directory fd rather than
// the ambient current directory.
func NewFsContextWithCwd(root, cwd *DirEntry) *FsContext {
	return &FsContext{rootDir: root.Acquire(), currentDir: cwd.Acquire()}
}

// Close releases the context's strong references to its root and
// current directory. The ambient, process-wide FsContext is never
// closed; this exists for short-lived contexts such as the ones
// NewFsContextWithCwd builds per `*at` call.
func (fc *FsContext) Close() {
	fc.rootDir.Release()
	fc.currentDir.Release()
}

// Clone produces an independent copy: mutating the clone's current
// directory (via Chdir) never affects fc, satisfying the "independent
// mutation" requirement in spec.md §3.
func (fc *FsContext) Clone() *FsContext {
	return &FsContext{rootDir: fc.rootDir.Acquire(), currentDir: fc.currentDir.Acquire()}
}

// RootDir returns the context's root Location.
func (fc *FsContext) RootDir() *DirEntry { return fc.rootDir }

// CurrentDir returns the context's current-directory Location.
func (fc *FsContext) CurrentDir() *DirEntry { return fc.currentDir }

// Chdir repositions current_dir, releasing the old one.
func (fc *FsContext) Chdir(newDir *DirEntry) {
	old := fc.currentDir
	fc.currentDir = newDir.Acquire()
	old.Release()
}

// resolveInner walks path per spec.md §4.1, returning the directory
// that should contain the final component (parentDir) and that final
// component's name, if the path has one.
func (fc *FsContext) resolveInner(ctx context.Context, p Path) (parentDir *DirEntry, lastName string, hasLast bool, err error) {
	cur := fc.currentDir
	name, hasName := p.FileName()

	components := p.Components()
	walk := components
	if hasName {
		walk = p.WithoutFileName()
	}
	if p.IsAbsolute() {
		cur = fc.rootDir
	}

	for _, c := range walk {
		switch c.Kind {
		case CurDir:
			// no change
		case ParentDir:
			if parent, ok := cur.Parent(); ok {
				cur = parent
			} else {
				cur = fc.rootDir
			}
		case RootDir:
			cur = fc.rootDir
		case Normal:
			dn, ok := cur.DirNode()
			if !ok {
				return nil, "", false, WrapError(NotADirectory, nil, "resolve")
			}
			next, lerr := dn.Lookup(ctx, cur, c.Name)
			if lerr != nil {
				return nil, "", false, lerr
			}
			cur = next
		}
	}

	if _, ok := cur.DirNode(); !ok {
		return nil, "", false, WrapError(NotADirectory, nil, "resolve")
	}

	return cur, name, hasName, nil
}

// Resolve implements spec.md §4.1's resolve(path).
func (fc *FsContext) Resolve(ctx context.Context, p Path) (*DirEntry, error) {
	parent, name, hasName, err := fc.resolveInner(ctx, p)
	if err != nil {
		return nil, err
	}
	if !hasName {
		return parent, nil
	}
	dn, _ := parent.DirNode()
	return dn.Lookup(ctx, parent, name)
}

// ResolveParent implements spec.md §4.1's resolve_parent(path): it
// always returns a (parent, name) pair, synthesising the name from the
// directory's own name when path has no file-name component.
func (fc *FsContext) ResolveParent(ctx context.Context, p Path) (parent *DirEntry, name string, err error) {
	parent, name, hasName, err := fc.resolveInner(ctx, p)
	if err != nil {
		return nil, "", err
	}
	if hasName {
		return parent, name, nil
	}

	gp, ok := parent.Parent()
	if !ok {
		return nil, "", WrapError(InvalidInput, nil, "resolve_parent: escapes root")
	}
	return gp, parent.Name(), nil
}

// ResolveNonexistent implements spec.md §4.1's resolve_nonexistent: it
// requires the path to name something (even if that something does
// not yet exist) and does not itself check for non-existence.
func (fc *FsContext) ResolveNonexistent(ctx context.Context, p Path) (parent *DirEntry, name string, err error) {
	parent, name, hasName, err := fc.resolveInner(ctx, p)
	if err != nil {
		return nil, "", err
	}
	if !hasName {
		return nil, "", WrapError(AlreadyExists, nil, "resolve_nonexistent: path names an existing directory")
	}
	return parent, name, nil
}

// sameNode reports whether a and b name the same underlying backend
// object. Two Lookups of the same path mint distinct *DirEntry
// values, so identity has to be established through the node's own
// (DeviceID, InodeID) pair rather than pointer equality.
func sameNode(ctx context.Context, a, b *DirEntry) (bool, error) {
	if a == b {
		return true, nil
	}
	ma, err := a.Node().Metadata(ctx)
	if err != nil {
		return false, err
	}
	mb, err := b.Node().Metadata(ctx)
	if err != nil {
		return false, err
	}
	return ma.DeviceID == mb.DeviceID && ma.InodeID == mb.InodeID, nil
}

// isAncestor reports whether candidate is dir itself or a (possibly
// indirect) parent of dir, walking weak parent links and comparing
// node identity at each step rather than DirEntry pointer identity.
func isAncestor(ctx context.Context, candidate, dir *DirEntry) (bool, error) {
	cur := dir
	for {
		eq, err := sameNode(ctx, cur, candidate)
		if err != nil {
			return false, err
		}
		if eq {
			return true, nil
		}
		parent, ok := cur.Parent()
		if !ok {
			return false, nil
		}
		cur = parent
	}
}

// Metadata resolves src and returns its attribute snapshot.
func (fc *FsContext) Metadata(ctx context.Context, p Path) (Metadata, error) {
	e, err := fc.Resolve(ctx, p)
	if err != nil {
		return Metadata{}, err
	}
	return e.Node().Metadata(ctx)
}

// CreateDir implements spec.md §4.6's create_dir.
func (fc *FsContext) CreateDir(ctx context.Context, p Path, mode NodePermission) (*DirEntry, error) {
	parent, name, err := fc.ResolveNonexistent(ctx, p)
	if err != nil {
		return nil, err
	}
	dn, ok := parent.DirNode()
	if !ok {
		return nil, WrapError(NotADirectory, nil, "create_dir")
	}
	return dn.Create(ctx, parent, name, Directory, mode)
}

// RemoveFile implements spec.md §4.6's remove_file via unlink(name, false).
func (fc *FsContext) RemoveFile(ctx context.Context, p Path) error {
	parent, name, err := fc.ResolveParent(ctx, p)
	if err != nil {
		return err
	}
	dn, ok := parent.DirNode()
	if !ok {
		return WrapError(NotADirectory, nil, "remove_file")
	}
	return dn.Unlink(ctx, name, false)
}

// RemoveDir implements spec.md §4.6's remove_dir via unlink(name, true).
func (fc *FsContext) RemoveDir(ctx context.Context, p Path) error {
	parent, name, err := fc.ResolveParent(ctx, p)
	if err != nil {
		return err
	}
	dn, ok := parent.DirNode()
	if !ok {
		return WrapError(NotADirectory, nil, "remove_dir")
	}
	return dn.Unlink(ctx, name, true)
}

// Link implements spec.md §4.6's link.
func (fc *FsContext) Link(ctx context.Context, existing, newPath Path) (*DirEntry, error) {
	src, err := fc.Resolve(ctx, existing)
	if err != nil {
		return nil, err
	}
	parent, name, err := fc.ResolveNonexistent(ctx, newPath)
	if err != nil {
		return nil, err
	}
	dn, ok := parent.DirNode()
	if !ok {
		return nil, WrapError(NotADirectory, nil, "link")
	}
	return dn.Link(ctx, parent, name, src)
}

// Rename implements spec.md §4.1's cycle check plus §4.2's rename
// contract, composed at the FsContext level the way spec.md §4.6
// describes.
func (fc *FsContext) Rename(ctx context.Context, oldPath, newPath Path) error {
	srcParent, srcName, err := fc.ResolveParent(ctx, oldPath)
	if err != nil {
		return err
	}
	dstParent, dstName, err := fc.ResolveParent(ctx, newPath)
	if err != nil {
		return err
	}

	srcDn, ok := srcParent.DirNode()
	if !ok {
		return WrapError(NotADirectory, nil, "rename")
	}
	dstDn, ok := dstParent.DirNode()
	if !ok {
		return WrapError(NotADirectory, nil, "rename")
	}

	// Reject moving a directory into its own subtree. The thing that
	// must not be an ancestor of the destination is the entry actually
	// being moved, not its containing directory (srcParent is trivially
	// an ancestor of most of the tree and would reject unrelated moves).
	if srcEntry, lerr := srcDn.Lookup(ctx, srcParent, srcName); lerr == nil {
		isAnc, aerr := isAncestor(ctx, srcEntry, dstParent)
		if aerr != nil {
			return aerr
		}
		if isAnc {
			return WrapError(InvalidInput, nil, "rename: destination is a descendant of source")
		}
	}

	return srcDn.Rename(ctx, srcName, dstDn, dstName)
}

// Canonicalize implements spec.md §4.6's canonicalize.
func (fc *FsContext) Canonicalize(ctx context.Context, p Path) (string, error) {
	e, err := fc.Resolve(ctx, p)
	if err != nil {
		return "", err
	}
	return e.AbsolutePath(), nil
}

// Read implements spec.md §4.6's read: open, read to EOF, close.
func (fc *FsContext) Read(ctx context.Context, p Path) ([]byte, error) {
	e, err := fc.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	fn, ok := e.Node().(FileNode)
	if !ok {
		return nil, WrapError(IsADirectory, nil, "read")
	}
	return readAll(ctx, fn)
}

// ReadToString is Read with a UTF-8 conversion, per spec.md §4.6.
func (fc *FsContext) ReadToString(ctx context.Context, p Path) (string, error) {
	b, err := fc.Read(ctx, p)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Write implements spec.md §4.6's write: create-or-truncate then
// write the full contents.
func (fc *FsContext) Write(ctx context.Context, p Path, data []byte) error {
	parent, name, err := fc.ResolveParent(ctx, p)
	if err != nil {
		return err
	}
	dn, ok := parent.DirNode()
	if !ok {
		return WrapError(NotADirectory, nil, "write")
	}

	entry, lerr := dn.Lookup(ctx, parent, name)
	if lerr != nil {
		if !Is(lerr, NotFound) {
			return lerr
		}
		entry, lerr = dn.Create(ctx, parent, name, RegularFile, 0o644)
		if lerr != nil {
			return lerr
		}
	}

	fn, ok := entry.Node().(FileNode)
	if !ok {
		return WrapError(IsADirectory, nil, "write")
	}
	if err := fn.Truncate(ctx, 0); err != nil {
		return err
	}
	if _, err := fn.Seek(ctx, SeekPos{Whence: SeekStart, Offset: 0}); err != nil {
		return err
	}
	for len(data) > 0 {
		n, werr := fn.Write(ctx, data)
		if werr != nil {
			return werr
		}
		data = data[n:]
	}
	return nil
}

func readAll(ctx context.Context, fn FileNode) ([]byte, error) {
	var out []byte
	buf := make([]byte, 32*1024)
	for {
		n, err := fn.Read(ctx, buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

// ReadDir returns a buffered entry iterator over p, per spec.md §4.6.
func (fc *FsContext) ReadDir(ctx context.Context, p Path) (*ReadDirIterator, error) {
	e, err := fc.Resolve(ctx, p)
	if err != nil {
		return nil, err
	}
	dn, ok := e.DirNode()
	if !ok {
		return nil, WrapError(NotADirectory, nil, "read_dir")
	}
	return newReadDirIterator(ctx, e, dn), nil
}
