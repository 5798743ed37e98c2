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

	"golang.org/x/sync/errgroup"

	"github.com/mivik/arceos/vfs"
)

// WarmupSubtrees mints stable inode ids for a known set of top-level
// names up front, so the first real lookup of each one does not pay
// the id-allocation cost under FS_CONTEXT's lock. Names that do not
// exist (NotFound) are skipped; any other lookup error fails the
// warmup, and the first such error is returned.
func WarmupSubtrees(ctx context.Context, root *vfs.DirEntry, names []string) error {
	dn, ok := root.DirNode()
	if !ok {
		return vfs.WrapError(vfs.NotADirectory, nil, "warmup")
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			entry, err := dn.Lookup(ctx, root, name)
			if err != nil {
				if vfs.Is(err, vfs.NotFound) {
					return nil
				}
				return err
			}
			entry.Release()
			return nil
		})
	}
	return g.Wait()
}
