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

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
)

// maxOpenFiles bounds how many live fds a Table will hand out before
// failing EMFILE, standing in for the process's RLIMIT_NOFILE.
const maxOpenFiles = 1024

// Table is the process-wide fd table of spec.md §3/§4.7: a mapping
// from non-negative i32 to a FileLike, guarded by a single mutex that
// is never held across I/O — Get clones out the FileLike reference and
// releases the lock before the caller touches it (spec.md §5).
type Table struct {
	mu    sync.Mutex
	files map[int32]FileLike
}

// NewTable returns an empty fd table.
func NewTable() *Table {
	return &Table{files: make(map[int32]FileLike)}
}

// Add allocates the lowest available non-negative fd for fl, failing
// EMFILE once maxOpenFiles are live.
func (t *Table) Add(fl FileLike) (int32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for fd := int32(0); fd < maxOpenFiles; fd++ {
		if _, used := t.files[fd]; !used {
			t.files[fd] = fl
			return fd, nil
		}
	}
	return 0, Errno(unix.EMFILE)
}

// Get returns the FileLike behind fd, or EBADF if fd is AT_FDCWD,
// negative, or not currently open.
func (t *Table) Get(fd int32) (FileLike, error) {
	if fd < 0 {
		return nil, Errno(unix.EBADF)
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	fl, ok := t.files[fd]
	if !ok {
		return nil, Errno(unix.EBADF)
	}
	return fl, nil
}

// Remove closes fd, failing EBADF if it was not open.
func (t *Table) Remove(fd int32) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.files[fd]; !ok {
		return Errno(unix.EBADF)
	}
	delete(t.files, fd)
	return nil
}

// CloseAll syncs every currently open handle concurrently and empties
// the table, for use at process teardown. The table is emptied before
// any sync runs, and every handle's sync is started; if any of them
// fail, the first error returned is reported and the others are
// dropped.
func (t *Table) CloseAll(ctx context.Context) error {
	t.mu.Lock()
	handles := make([]FileLike, 0, len(t.files))
	for _, fl := range t.files {
		handles = append(handles, fl)
	}
	t.files = make(map[int32]FileLike)
	t.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, fl := range handles {
		fl := fl
		g.Go(func() error {
			entry := fl.Entry()
			if entry == nil {
				return nil
			}
			return entry.Node().Sync(ctx, false)
		})
	}
	return g.Wait()
}
