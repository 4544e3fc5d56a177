package importer

import (
	"bytes"
	"context"
	"io/fs"
	"time"
)

// memFS serves decoded archive entries as an fs.FS so the GLTF decoder can
// resolve sibling resources (binary buffers, textures) referenced from
// inside an archive.
type memFS struct {
	files map[string][]byte
}

// Open implements fs.FS.
func (m memFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	data, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return &memFile{name: name, Reader: bytes.NewReader(data)}, nil
}

type memFile struct {
	name string
	*bytes.Reader
}

func (f *memFile) Stat() (fs.FileInfo, error) {
	return memFileInfo{name: f.name, size: f.Size()}, nil
}

func (f *memFile) Close() error { return nil }

type memFileInfo struct {
	name string
	size int64
}

func (fi memFileInfo) Name() string       { return fi.name }
func (fi memFileInfo) Size() int64        { return fi.size }
func (fi memFileInfo) Mode() fs.FileMode  { return 0 }
func (fi memFileInfo) ModTime() time.Time { return time.Time{} }
func (fi memFileInfo) IsDir() bool        { return false }
func (fi memFileInfo) Sys() any           { return nil }

// fetchFS resolves names relative to a base URL through the importer's
// loader, letting GLTF files fetched over HTTP pull their sibling buffer and
// texture files. The context is captured because fs.FS has no room for one;
// the fs lives only for the duration of a single import.
type fetchFS struct {
	ctx     context.Context
	im      *Importer
	baseURL string
}

// Open implements fs.FS by fetching base/name.
func (f fetchFS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	data, err := f.im.loader.Fetch(f.ctx, f.baseURL+"/"+name)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &memFile{name: name, Reader: bytes.NewReader(data)}, nil
}
