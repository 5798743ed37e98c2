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

package posix

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/internal/metrics"
	"github.com/mivik/arceos/vfs"
)

// Dispatcher is the syscall-facing surface of spec.md §4.7: it owns
// the ambient FsContext and the process-wide fd table, and every
// method here corresponds to one named syscall. Every syscall returns
// its integer result directly; failures come back as a negative errno
// (spec.md §4.7's calling convention), so callers never need a second
// error value.
type Dispatcher struct {
	fsMu sync.Mutex // guards resolution against fs, per spec.md §5
	fs   *vfs.FsContext

	fds *Table
}

// NewDispatcher builds a shim over an already-mounted filesystem's
// ambient context and a fresh fd table.
func NewDispatcher(fs *vfs.FsContext) *Dispatcher {
	return &Dispatcher{fs: fs, fds: NewTable()}
}

func (d *Dispatcher) dirFor(fd int32) (*vfs.DirEntry, error) {
	if fd == AtFDCwd {
		return d.fs.CurrentDir(), nil
	}
	fl, err := d.fds.Get(fd)
	if err != nil {
		return nil, err
	}
	if !fl.IsDir() {
		return nil, Errno(unix.ENOTDIR)
	}
	return fl.Entry(), nil
}

// openLocked implements the shared body of Open/OpenAt against an
// already-positioned FsContext. Caller holds d.fsMu.
func (d *Dispatcher) openLocked(ctx context.Context, fs *vfs.FsContext, path string, flags int32, mode vfs.NodePermission) (FileLike, error) {
	p := vfs.NewPath(path)

	entry, err := fs.Resolve(ctx, p)
	exists := err == nil
	if err != nil && !vfs.Is(err, vfs.NotFound) {
		return nil, err
	}

	if exists && flags&OCreat != 0 && flags&OExcl != 0 {
		return nil, Errno(unix.EEXIST)
	}

	if !exists {
		if flags&OCreat == 0 {
			return nil, Errno(unix.ENOENT)
		}
		parent, name, perr := fs.ResolveParent(ctx, p)
		if perr != nil {
			return nil, perr
		}
		dn, ok := parent.DirNode()
		if !ok {
			return nil, Errno(unix.ENOTDIR)
		}
		entry, err = dn.Create(ctx, parent, name, vfs.RegularFile, mode)
		if err != nil {
			return nil, err
		}
	}

	isDir := entry.IsDir()
	if flags&ODirectory != 0 && !isDir {
		return nil, Errno(unix.ENOTDIR)
	}

	if flags&OTrunc != 0 {
		if isDir {
			return nil, Errno(unix.EISDIR)
		}
		fn := entry.Node().(vfs.FileNode)
		if terr := fn.Truncate(ctx, 0); terr != nil {
			return nil, terr
		}
	}

	if isDir {
		return newOpenDir(entry), nil
	}
	fn := entry.Node().(vfs.FileNode)
	return newOpenFile(entry, fn, flags), nil
}

// Open implements spec.md §4.7's open(path, flags, mode).
func (d *Dispatcher) Open(ctx context.Context, path string, flags int32, mode vfs.NodePermission) (rc int32) {
	defer metrics.ObserveSyscall("open", time.Now(), &rc)

	d.fsMu.Lock()
	fl, err := d.openLocked(ctx, d.fs, path, flags, mode)
	d.fsMu.Unlock()
	if err != nil {
		return negErrno(err)
	}

	fd, err := d.fds.Add(fl)
	if err != nil {
		return negErrno(err)
	}
	return fd
}

// OpenAt implements spec.md §4.7's openat(dirfd, name, flags, mode):
// name resolves against dirfd (or the ambient cwd, for AT_FDCWD)
// rather than FS_CONTEXT.current_dir.
func (d *Dispatcher) OpenAt(ctx context.Context, dirfd int32, name string, flags int32, mode vfs.NodePermission) (rc int32) {
	defer metrics.ObserveSyscall("openat", time.Now(), &rc)

	d.fsMu.Lock()
	base, err := d.dirFor(dirfd)
	if err != nil {
		d.fsMu.Unlock()
		return negErrno(err)
	}

	scoped := vfs.NewFsContextWithCwd(d.fs.RootDir(), base)
	fl, err := d.openLocked(ctx, scoped, name, flags, mode)
	scoped.Close()
	d.fsMu.Unlock()
	if err != nil {
		return negErrno(err)
	}

	fd, err := d.fds.Add(fl)
	if err != nil {
		return negErrno(err)
	}
	return fd
}

// Close implements close(fd).
func (d *Dispatcher) Close(fd int32) int32 {
	if err := d.fds.Remove(fd); err != nil {
		return negErrno(err)
	}
	return 0
}

// Shutdown syncs and closes every still-open fd, for use when
// unmounting.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	return d.fds.CloseAll(ctx)
}

// Read implements read(fd, buf).
func (d *Dispatcher) Read(ctx context.Context, fd int32, buf []byte) (rc int32) {
	defer metrics.ObserveSyscall("read", time.Now(), &rc)

	fl, err := d.fds.Get(fd)
	if err != nil {
		return negErrno(err)
	}
	n, err := fl.Read(ctx, buf)
	if err != nil {
		return negErrno(err)
	}
	return int32(n)
}

// Write implements write(fd, buf).
func (d *Dispatcher) Write(ctx context.Context, fd int32, buf []byte) (rc int32) {
	defer metrics.ObserveSyscall("write", time.Now(), &rc)

	fl, err := d.fds.Get(fd)
	if err != nil {
		return negErrno(err)
	}
	n, err := fl.Write(ctx, buf)
	if err != nil {
		return negErrno(err)
	}
	return int32(n)
}

// Lseek implements lseek(fd, off, whence), per spec.md §4.7.
func (d *Dispatcher) Lseek(ctx context.Context, fd int32, off int64, whence int32) (rc int64) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		if rc < 0 {
			outcome = metrics.OutcomeError
		}
		metrics.SyscallsTotal.WithLabelValues("lseek", outcome).Inc()
		metrics.SyscallDuration.WithLabelValues("lseek").Observe(time.Since(start).Seconds())
	}()

	fl, err := d.fds.Get(fd)
	if err != nil {
		return int64(negErrno(err))
	}
	if fl.IsDir() {
		return int64(negErrno(Errno(unix.EBADF)))
	}
	if whence != SeekSet && whence != SeekCur && whence != SeekEnd {
		return int64(negErrno(Errno(unix.EINVAL)))
	}

	of, ok := fl.(*OpenFile)
	if !ok {
		return int64(negErrno(Errno(unix.EBADF)))
	}
	newOff, err := of.Seek(ctx, vfs.SeekPos{Whence: vfs.SeekWhence(whence), Offset: off})
	if err != nil {
		return int64(negErrno(err))
	}
	return int64(newOff)
}

// Stat implements stat(path, buf): populates buf with path's metadata.
func (d *Dispatcher) Stat(ctx context.Context, path string, buf *Stat) (rc int32) {
	defer metrics.ObserveSyscall("stat", time.Now(), &rc)

	d.fsMu.Lock()
	md, err := d.fs.Metadata(ctx, vfs.NewPath(path))
	d.fsMu.Unlock()
	if err != nil {
		return negErrno(err)
	}
	*buf = fillStat(md)
	return 0
}

// Lstat is a stub per spec.md §9's open question: it zero-fills buf
// rather than implementing symlink-aware stat, since symlink
// resolution is explicitly out of scope.
func (d *Dispatcher) Lstat(ctx context.Context, path string, buf *Stat) int32 {
	*buf = Stat{}
	return 0
}

// Fstat implements fstat(fd, buf).
func (d *Dispatcher) Fstat(ctx context.Context, fd int32, buf *Stat) (rc int32) {
	defer metrics.ObserveSyscall("fstat", time.Now(), &rc)

	fl, err := d.fds.Get(fd)
	if err != nil {
		return negErrno(err)
	}
	md, err := fl.Stat(ctx)
	if err != nil {
		return negErrno(err)
	}
	*buf = fillStat(md)
	return 0
}

// Getcwd implements getcwd(buf, size): writes the absolute path of the
// current directory plus a NUL terminator into buf, failing ERANGE if
// buf is too small, per spec.md §4.7/§6.
func (d *Dispatcher) Getcwd(ctx context.Context, buf []byte) (rc int32) {
	defer metrics.ObserveSyscall("getcwd", time.Now(), &rc)

	d.fsMu.Lock()
	path, err := d.fs.Canonicalize(ctx, vfs.NewPath("."))
	d.fsMu.Unlock()
	if err != nil {
		return negErrno(err)
	}

	needed := len(path) + 1
	if needed > len(buf) {
		return negErrno(Errno(unix.ERANGE))
	}
	n := copy(buf, path)
	buf[n] = 0
	return int32(needed)
}

// Rename implements rename(old, new) by delegating to FsContext.
func (d *Dispatcher) Rename(ctx context.Context, oldPath, newPath string) (rc int32) {
	defer metrics.ObserveSyscall("rename", time.Now(), &rc)

	d.fsMu.Lock()
	defer d.fsMu.Unlock()
	if err := d.fs.Rename(ctx, vfs.NewPath(oldPath), vfs.NewPath(newPath)); err != nil {
		return negErrno(err)
	}
	return 0
}
