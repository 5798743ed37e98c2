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

// Package mm is a thin collaborator stub for the shared physical page
// mapping backend referenced by spec.md §9: it tracks ownership of
// contiguous page ranges and the address-space ranges mapped onto
// them, without touching an actual page table or allocator (those are
// out of scope, per spec.md §1's collaborator list).
package mm

import (
	"errors"
	"sync"
	"sync/atomic"
)

// PageSize is the unit of allocation and mapping throughout this
// package.
const PageSize = 4096

var (
	// ErrHugePageUnmap is returned by Unmap when asked to tear down a
	// huge-page mapping, which spec.md §9 says must be rejected.
	ErrHugePageUnmap = errors.New("mm: huge-page mappings cannot be unmapped")
	// ErrOutOfRange is returned when a mapping's page span falls
	// outside the backing SharedPages region.
	ErrOutOfRange = errors.New("mm: mapping span out of range")
)

// MapFlags mirrors the permission/behaviour bits a caller passes to
// MapShared.
type MapFlags uint32

const (
	MapRead MapFlags = 1 << iota
	MapWrite
	MapExec
	// MapHuge marks the mapping as using huge pages; huge mappings can
	// be created but, per spec.md §9, never unmapped.
	MapHuge
)

// SharedPages is a contiguous run of physical pages owned jointly by
// every PageTable that maps it. It is reference-counted the way
// vfs.DirEntry tracks strong references: the backing pages are freed
// only once the last owner drops its mapping.
type SharedPages struct {
	numPages uint64
	source   []byte // backing bytes; nil once the last owner releases

	refs atomic.Int32
}

// NewShared allocates a fresh shared page run of the given size. If
// source is non-nil its contents seed the pages (truncated or
// zero-padded to numPages*PageSize); a nil source yields zero-filled
// pages, per spec.md §9's `new_shared(page_num, source?)`.
func NewShared(numPages uint64, source []byte) *SharedPages {
	buf := make([]byte, numPages*PageSize)
	if source != nil {
		copy(buf, source)
	}
	sp := &SharedPages{numPages: numPages, source: buf}
	sp.refs.Store(1)
	return sp
}

// NumPages reports the size of the backing run.
func (sp *SharedPages) NumPages() uint64 { return sp.numPages }

// Bytes exposes the backing storage for the given page range, for use
// by a mapping's read/write path. Callers must not retain the slice
// past the owning mapping's lifetime.
func (sp *SharedPages) Bytes(pageOffset, numPages uint64) ([]byte, error) {
	if pageOffset+numPages > sp.numPages {
		return nil, ErrOutOfRange
	}
	start := pageOffset * PageSize
	end := start + numPages*PageSize
	return sp.source[start:end], nil
}

func (sp *SharedPages) acquire() { sp.refs.Add(1) }

// release drops one owner; the pages are dropped once no owner
// remains.
func (sp *SharedPages) release() {
	if sp.refs.Add(-1) == 0 {
		sp.source = nil
	}
}

// Mapping is one address-space range bound onto a SharedPages region,
// recorded in a PageTable.
type Mapping struct {
	pages      *SharedPages
	start      uint64 // virtual page number
	pageOffset uint64 // offset into pages, in pages
	numPages   uint64
	flags      MapFlags
}

func (m *Mapping) End() uint64 { return m.start + m.numPages }

// PageTable is the per-address-space collaborator a mapping is
// installed into. It exists here only as a key to group and look up
// Mappings; the real page-table walk is the memory backend's job and
// is out of scope (spec.md §1).
type PageTable struct {
	mu       sync.Mutex
	mappings map[uint64]*Mapping // keyed by start
}

// NewPageTable returns an empty address-space mapping table.
func NewPageTable() *PageTable {
	return &PageTable{mappings: make(map[uint64]*Mapping)}
}

// MapShared installs a mapping of [pageOffset, pageOffset+numPages)
// of pages at virtual page start, per spec.md §9's
// `map_shared(start, pages, flags, pt)`. It acquires a reference on
// pages for the lifetime of the mapping.
func MapShared(pt *PageTable, start uint64, pages *SharedPages, pageOffset, numPages uint64, flags MapFlags) (*Mapping, error) {
	if pageOffset+numPages > pages.NumPages() {
		return nil, ErrOutOfRange
	}

	pages.acquire()
	m := &Mapping{pages: pages, start: start, pageOffset: pageOffset, numPages: numPages, flags: flags}

	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.mappings[start] = m
	return m, nil
}

// UnmapShared tears down the mapping beginning at start, per spec.md
// §9's `unmap_shared(start, pages, pt)`. Huge-page mappings are
// rejected, matching the collaborator's documented behaviour.
func UnmapShared(pt *PageTable, start uint64) error {
	pt.mu.Lock()
	m, ok := pt.mappings[start]
	if !ok {
		pt.mu.Unlock()
		return ErrOutOfRange
	}
	if m.flags&MapHuge != 0 {
		pt.mu.Unlock()
		return ErrHugePageUnmap
	}
	delete(pt.mappings, start)
	pt.mu.Unlock()

	m.pages.release()
	return nil
}

// Lookup returns the mapping covering virtual page vpn, if any.
func (pt *PageTable) Lookup(vpn uint64) (*Mapping, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	for _, m := range pt.mappings {
		if vpn >= m.start && vpn < m.End() {
			return m, true
		}
	}
	return nil, false
}
