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

import "strings"

// ComponentKind distinguishes the four kinds of path component.
type ComponentKind int

const (
	RootDir ComponentKind = iota
	CurDir
	ParentDir
	Normal
)

// Component is a single parsed element of a Path.
type Component struct {
	Kind ComponentKind
	Name string // only meaningful when Kind == Normal
}

func (c Component) String() string {
	switch c.Kind {
	case RootDir:
		return "/"
	case CurDir:
		return "."
	case ParentDir:
		return ".."
	default:
		return c.Name
	}
}

// Path is an immutable, parsed byte path. It never retains the raw
// string; all structure is captured by Components.
type Path struct {
	absolute   bool
	components []Component
}

// NewPath parses raw into a Path. Empty components produced by
// repeated slashes are dropped, matching POSIX path normalisation.
func NewPath(raw string) Path {
	p := Path{absolute: strings.HasPrefix(raw, "/")}
	for _, part := range strings.Split(raw, "/") {
		switch part {
		case "":
			continue
		case ".":
			p.components = append(p.components, Component{Kind: CurDir})
		case "..":
			p.components = append(p.components, Component{Kind: ParentDir})
		default:
			p.components = append(p.components, Component{Kind: Normal, Name: part})
		}
	}
	return p
}

// IsAbsolute reports whether the path started with RootDir.
func (p Path) IsAbsolute() bool {
	return p.absolute
}

// Components returns the parsed components in order. The RootDir
// component, if any, is implicit in IsAbsolute and never appears here
// (it has no name and callers distinguish it via IsAbsolute).
func (p Path) Components() []Component {
	return p.components
}

// FileName returns the final component if it is a Normal one; a path
// ending in "." or ".." has no file name.
func (p Path) FileName() (string, bool) {
	if n := len(p.components); n > 0 && p.components[n-1].Kind == Normal {
		return p.components[n-1].Name, true
	}
	return "", false
}

// WithoutFileName returns the components preceding the final Normal
// component (or all components, if there is no final Normal one).
func (p Path) WithoutFileName() []Component {
	if _, ok := p.FileName(); !ok {
		return p.components
	}
	return p.components[:len(p.components)-1]
}

// String reconstructs a normalised slash-separated representation.
func (p Path) String() string {
	var b strings.Builder
	if p.absolute {
		b.WriteByte('/')
	}
	for i, c := range p.components {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

// Join appends name as a new Normal component and returns the result;
// it does not mutate p.
func (p Path) Join(name string) Path {
	np := Path{absolute: p.absolute}
	np.components = append(np.components, p.components...)
	np.components = append(np.components, Component{Kind: Normal, Name: name})
	return np
}
