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

import "github.com/mivik/arceos/vfs"

// Timespec mirrors the {sec, nsec} pair of spec.md §6's stat layout.
type Timespec struct {
	Sec  int64
	Nsec int64
}

// Stat is the flat structure at the POSIX shim boundary, exact layout
// per spec.md §6.
type Stat struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint32
	UID     uint32
	GID     uint32
	Rdev    uint64
	Size    int64
	Blksize int64
	Blocks  int64
	Atime   Timespec
	Mtime   Timespec
	Ctime   Timespec
}

// fillStat converts a vfs.Metadata snapshot into the wire-shaped Stat.
func fillStat(md vfs.Metadata) Stat {
	return Stat{
		Dev:     md.DeviceID,
		Ino:     md.InodeID,
		Mode:    uint32(md.NodeType)<<12 | uint32(md.Mode)&0o7777,
		Nlink:   uint32(md.Nlink),
		UID:     md.UID,
		GID:     md.GID,
		Rdev:    0,
		Size:    int64(md.Size),
		Blksize: int64(md.BlockSize),
		Blocks:  int64(md.Blocks),
		Atime:   Timespec{Sec: md.ATime.Sec, Nsec: md.ATime.Nsec},
		Mtime:   Timespec{Sec: md.MTime.Sec, Nsec: md.MTime.Nsec},
		Ctime:   Timespec{Sec: md.CTime.Sec, Nsec: md.CTime.Nsec},
	}
}
