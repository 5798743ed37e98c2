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

package fat_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mivik/arceos/vfs"
	"github.com/mivik/arceos/vfs/fat"
)

func mustMount(t *testing.T) (*fat.Filesystem, *vfs.FsContext) {
	t.Helper()
	codec := newFakeCodec()
	fs, err := fat.Mount(codec, fakeRootID)
	require.NoError(t, err)
	return fs, vfs.NewFsContext(fs.RootDir())
}

func TestMount_RootIsStatable(t *testing.T) {
	_, fc := mustMount(t)

	md, err := fc.Metadata(context.Background(), vfs.NewPath("/"))
	require.NoError(t, err)
	assert.Equal(t, vfs.Directory, md.NodeType)
	assert.Equal(t, fat.RootInodeID, md.InodeID)
}

func TestCreateDir_ThenStat(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/docs"), 0o755)
	require.NoError(t, err)

	md, err := fc.Metadata(ctx, vfs.NewPath("/docs"))
	require.NoError(t, err)
	assert.Equal(t, vfs.Directory, md.NodeType)
}

func TestCreateDir_Duplicate(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/docs"), 0o755)
	require.NoError(t, err)

	_, err = fc.CreateDir(ctx, vfs.NewPath("/docs"), 0o755)
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.AlreadyExists))
}

func TestWriteThenRead_RoundTrips(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	payload := []byte("the quick brown fox")
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/note.txt"), payload))

	got, err := fc.Read(ctx, vfs.NewPath("/note.txt"))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestWrite_TruncatesExisting(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/note.txt"), []byte("a much longer first write")))
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/note.txt"), []byte("short")))

	got, err := fc.Read(ctx, vfs.NewPath("/note.txt"))
	require.NoError(t, err)
	assert.Equal(t, "short", string(got))
}

func TestLookup_IsCaseInsensitive(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/README.TXT"), []byte("hi")))

	got, err := fc.Read(ctx, vfs.NewPath("/readme.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestRemoveDir_RejectsNonEmpty(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/docs"), 0o755)
	require.NoError(t, err)
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/docs/a.txt"), []byte("x")))

	err = fc.RemoveDir(ctx, vfs.NewPath("/docs"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.DirectoryNotEmpty))

	require.NoError(t, fc.RemoveFile(ctx, vfs.NewPath("/docs/a.txt")))
	require.NoError(t, fc.RemoveDir(ctx, vfs.NewPath("/docs")))
}

func TestRename_ReplacesExistingDestination(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/a.txt"), []byte("AAAA")))
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/b.txt"), []byte("BBBB")))

	require.NoError(t, fc.Rename(ctx, vfs.NewPath("/a.txt"), vfs.NewPath("/b.txt")))

	got, err := fc.Read(ctx, vfs.NewPath("/b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "AAAA", string(got))

	_, err = fc.Metadata(ctx, vfs.NewPath("/a.txt"))
	assert.True(t, vfs.Is(err, vfs.NotFound))
}

func TestLink_AlwaysDeniedOnFAT(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/a.txt"), []byte("AAAA")))

	_, err := fc.Link(ctx, vfs.NewPath("/a.txt"), vfs.NewPath("/b.txt"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.PermissionDenied))
}

func TestReadDir_ListsCreatedEntries(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/one.txt"), []byte("1")))
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/two.txt"), []byte("2")))
	_, err := fc.CreateDir(ctx, vfs.NewPath("/sub"), 0o755)
	require.NoError(t, err)

	it, err := fc.ReadDir(ctx, vfs.NewPath("/"))
	require.NoError(t, err)

	names := map[string]bool{}
	for {
		entry, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		names[entry.Name] = true
	}
	assert.True(t, names["one.txt"])
	assert.True(t, names["two.txt"])
	assert.True(t, names["sub"])
}

func TestSeekAndReadWrite_FileCursor(t *testing.T) {
	fs, fc := mustMount(t)
	ctx := context.Background()
	_ = fs

	require.NoError(t, fc.Write(ctx, vfs.NewPath("/cursor.bin"), []byte("0123456789")))

	entry, err := fc.Resolve(ctx, vfs.NewPath("/cursor.bin"))
	require.NoError(t, err)
	fn, ok := entry.Node().(vfs.FileNode)
	require.True(t, ok)

	off, err := fn.Seek(ctx, vfs.SeekPos{Whence: vfs.SeekStart, Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), off)

	buf := make([]byte, 3)
	n, err := fn.Read(ctx, buf)
	require.NoError(t, err)
	assert.Equal(t, "456", string(buf[:n]))
}

func TestChildSurvivesParentRelease_WeakParentFallsBackToRoot(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/sub"), 0o755)
	require.NoError(t, err)

	subDir, err := fc.Resolve(ctx, vfs.NewPath("/sub"))
	require.NoError(t, err)

	dn, ok := subDir.DirNode()
	require.True(t, ok)
	child, err := dn.Create(ctx, subDir, "leaf.txt", vfs.RegularFile, 0o644)
	require.NoError(t, err)

	subDir.Release()

	_, ok = child.Parent()
	assert.False(t, ok, "weak parent link should fail once the parent entry has been released")
}

func TestRename_CycleIntoOwnDescendantRejected(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/parent"), 0o755)
	require.NoError(t, err)
	_, err = fc.CreateDir(ctx, vfs.NewPath("/parent/child"), 0o755)
	require.NoError(t, err)

	err = fc.Rename(ctx, vfs.NewPath("/parent"), vfs.NewPath("/parent/child/parent"))
	require.Error(t, err)
	assert.True(t, vfs.Is(err, vfs.InvalidInput))
}

func TestCanonicalize_NestedPath(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/a"), 0o755)
	require.NoError(t, err)
	_, err = fc.CreateDir(ctx, vfs.NewPath("/a/b"), 0o755)
	require.NoError(t, err)

	got, err := fc.Canonicalize(ctx, vfs.NewPath("/a/b"))
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got)
}

func TestCanonicalize_Root(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	got, err := fc.Canonicalize(ctx, vfs.NewPath("/"))
	require.NoError(t, err)
	assert.Equal(t, "/", got)
}

func TestAbsolutePath_TracksRenameAcrossDirectories(t *testing.T) {
	_, fc := mustMount(t)
	ctx := context.Background()

	_, err := fc.CreateDir(ctx, vfs.NewPath("/from"), 0o755)
	require.NoError(t, err)
	_, err = fc.CreateDir(ctx, vfs.NewPath("/to"), 0o755)
	require.NoError(t, err)
	require.NoError(t, fc.Write(ctx, vfs.NewPath("/from/note.txt"), []byte("hi")))

	require.NoError(t, fc.Rename(ctx, vfs.NewPath("/from/note.txt"), vfs.NewPath("/to/note.txt")))

	moved, err := fc.Resolve(ctx, vfs.NewPath("/to/note.txt"))
	require.NoError(t, err)
	defer moved.Release()

	assert.Equal(t, "/to/note.txt", moved.AbsolutePath())
}
