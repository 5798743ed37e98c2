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

import "sync"

// RootInodeID is the reserved id spec.md §4.4 calls out: FAT has no
// native inode concept, so the root gets a fixed id rather than one
// minted by the slab.
const RootInodeID uint64 = 1

// inodeAllocator mints stable u64 ids for the lifetime of the mount,
// the way the teacher's fileSystem.nextInodeID counter does (fs.go),
// generalized into its own type since FAT (unlike ext4) has no native
// inode numbers to reuse.
type inodeAllocator struct {
	mu   sync.Mutex
	next uint64
}

func newInodeAllocator() *inodeAllocator {
	return &inodeAllocator{next: RootInodeID + 1}
}

// Alloc hands out the next unused id.
func (a *inodeAllocator) Alloc() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	return id
}
