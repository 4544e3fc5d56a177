package importer

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"golang.org/x/sync/errgroup"
)

// archiveExt is the only archive wrapper the pipeline understands.
const archiveExt = ".zip"

// resolveBytes obtains the raw bytes for a request, fetching remote sources
// through the loader. Returns the bytes and the source file name.
func (im *Importer) resolveBytes(ctx context.Context, req Request) ([]byte, string, error) {
	name, err := sourceName(req)
	if err != nil {
		return nil, "", err
	}
	if req.URL != "" {
		data, err := im.loader.Fetch(ctx, req.URL)
		if err != nil {
			return nil, "", fmt.Errorf("fetching %s: %w", req.URL, err)
		}
		return data, name, nil
	}
	return req.Data, name, nil
}

// entryFunc processes one logical file: its name without extension and its
// raw bytes. It may return several results (multi-scene formats).
type entryFunc func(name string, data []byte) ([]Result, error)

// resolveSource invokes process once per logical file found in the request.
// A zip source has every entry processed concurrently; results are collected
// flat in entry-iteration order. One failed entry fails the whole operation.
// Any other source is processed exactly once under its own logical name.
func (im *Importer) resolveSource(ctx context.Context, req Request, process entryFunc) ([]Result, error) {
	data, name, err := im.resolveBytes(ctx, req)
	if err != nil {
		return nil, err
	}

	if strings.ToLower(path.Ext(name)) != archiveExt {
		return process(logicalName(name), data)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", name, err)
	}

	im.log.Debugw("processing archive", "name", name, "entries", len(zr.File))

	perEntry := make([][]Result, len(zr.File))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range zr.File {
		if resourceExts[strings.ToLower(path.Ext(f.Name))] {
			continue
		}
		i, f := i, f
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			entryData, err := readEntry(f)
			if err != nil {
				return fmt.Errorf("entry %s: %w", f.Name, err)
			}
			results, err := process(logicalName(f.Name), entryData)
			if err != nil {
				return fmt.Errorf("entry %s: %w", f.Name, err)
			}
			perEntry[i] = results
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("archive %s: %w", name, err)
	}

	var flat []Result
	for _, results := range perEntry {
		flat = append(flat, results...)
	}
	return flat, nil
}

// readEntry decodes one archive entry into memory.
func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// resourceExts are sidecar files an archive may carry alongside its geometry
// entries (GLTF buffers and textures, OBJ material libraries). They do not
// count toward the archive's format.
var resourceExts = map[string]bool{
	".bin":  true,
	".mtl":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".ktx2": true,
}

// archiveFormat inspects a zip and returns the single file extension its
// geometry entries share. Mixed-format archives are rejected since each
// importer treats every entry as its own format.
func archiveFormat(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening archive: %w", err)
	}
	format := ""
	for _, f := range zr.File {
		ext := strings.ToLower(path.Ext(f.Name))
		if ext == "" || resourceExts[ext] {
			continue
		}
		if format == "" {
			format = ext
			continue
		}
		if ext != format {
			return "", fmt.Errorf("%w: %s and %s", ErrMixedArchive, format, ext)
		}
	}
	if format == "" {
		return "", fmt.Errorf("%w: empty archive", ErrUnsupportedFormat)
	}
	return format, nil
}

// archiveEntries returns the decoded contents of a zip keyed by entry name.
// Used to resolve sibling resources referenced from GLTF files.
func archiveEntries(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	entries := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		entryData, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", f.Name, err)
		}
		entries[f.Name] = entryData
	}
	return entries, nil
}
