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

package ext4_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/mivik/arceos/vfs"
	"github.com/mivik/arceos/vfs/ext4"
)

func mustMount(t *testing.T) *vfs.FsContext {
	t.Helper()
	codec := newFakeCodec()
	fs, err := ext4.Mount(codec, fakeRootID)
	require.NoError(t, err)
	return vfs.NewFsContext(fs.RootDir())
}

func TestLookup_IsCaseSensitive(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/README.txt"), []byte("hi")))

	_, err := fc.Metadata(ctx, vfs.NewPath("/readme.txt"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.NotFound))

	_, err = fc.Metadata(ctx, vfs.NewPath("/README.txt"))
	require.NoError(t, err)
}

func TestCreate_SupportsFullNodeTypeSet(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	entry, err := fc.Resolve(ctx, vfs.NewPath("/"))
	require.NoError(t, err)
	dn, ok := entry.DirNode()
	require.True(t, ok)

	_, err = dn.Create(ctx, entry, "dev0", vfs.CharacterDevice, 0o600)
	require.NoError(t, err)

	md, err := fc.Metadata(ctx, vfs.NewPath("/dev0"))
	require.NoError(t, err)
	assert.Equal(t, vfs.CharacterDevice, md.NodeType)
}

func TestLink_SharesDataAndIncrementsNlink(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/a.txt"), []byte("shared")))

	_, err := fc.Link(ctx, vfs.NewPath("/a.txt"), vfs.NewPath("/b.txt"))
	require.NoError(t, err)

	got, err := fc.Read(ctx, vfs.NewPath("/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "shared", string(got))

	md, err := fc.Metadata(ctx, vfs.NewPath("/a.txt"))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), md.Nlink)
}

func TestUnlink_DropsNlinkNotData(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/a.txt"), []byte("shared")))
	_, err := fc.Link(ctx, vfs.NewPath("/a.txt"), vfs.NewPath("/b.txt"))
	require.NoError(t, err)

	require.NoError(t, fc.RemoveFile(ctx, vfs.NewPath("/a.txt")))

	got, err := fc.Read(ctx, vfs.NewPath("/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "shared", string(got))
}

func TestRename_ReplacesExistingDestinationAtomically(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/a.txt"), []byte("AAAA")))
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/b.txt"), []byte("BBBB")))

	require.NoError(t, fc.Rename(ctx, vfs.NewPath("/a.txt"), vfs.NewPath("/b.txt")))

	got, err := fc.Read(ctx, vfs.NewPath("/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "AAAA", string(got))
}

func TestRemoveDir_RejectsNonEmpty(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/docs"), 0o755)
	require.NoError(t, err)
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/docs/a.txt"), []byte("x")))

	err = fc.RemoveDir(ctx, vfs.NewPath("/docs"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.DirectoryNotEmpty))
}

type weirdErrnoCodec struct{ *fakeCodec }

func (c weirdErrnoCodec) Lookup(dirID uint64, name string) (ext4.DirEntry, error) {
	if name == "weird" {
		return ext4.DirEntry{}, ext4.CodecError(unix.ENXIO)
	}
	return c.fakeCodec.Lookup(dirID, name)
}

func TestUnrecognisedCodecErrno_CollapsesToIo(t *testing.T) {
	codec := weirdErrnoCodec{newFakeCodec()}
	fs, err := ext4.Mount(codec, fakeRootID)
	require.NoError(t, err)
	fc := vfs.NewFsContext(fs.RootDir())

	_, err = fc.Metadata(context.Background(), vfs.NewPath("/weird"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.Io))
	assert.False(t, vfs.Is(err, vfs.NotFound))
}

func TestNamesPreserveCaseInReadDir(t *testing.T) {
	fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/MixedCase.TXT"), []byte("x")))

	it, err := fc.ReadDir(ctx, vfs.NewPath("/"))
	require.NoError(t, err)

	entry, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "MixedCase.TXT", entry.Name)
}
