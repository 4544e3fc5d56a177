// Package importer loads detector geometry and event data for the display:
// OBJ, GLTF/GLB and JSON scene files, plain or zip-wrapped, from memory or
// over HTTP. Parsed trees are normalized (uniform clipped material, name
// propagation, size annotations) and returned together with UI menu metadata.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/g3n/engine/math32"
	"go.uber.org/zap"

	"github.com/Mayank77maruti/phoenix/internal/assets"
	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

// Importer errors.
var (
	ErrNoSource          = errors.New("request has no source: set URL, Data or JSON")
	ErrMultipleSources   = errors.New("request has more than one source")
	ErrUnsupportedFormat = errors.New("unsupported geometry format")
	ErrMixedArchive      = errors.New("archive mixes multiple geometry formats")
	ErrDracoUnsupported  = errors.New("draco-compressed glTF requires a configured decoder")
)

// Config holds pipeline-wide settings, fixed at construction.
type Config struct {
	// ClipPlanes is shared by reference with every material the pipeline
	// produces. The slice is read-only from the pipeline's perspective.
	ClipPlanes []*math32.Plane

	// EventDataRoot and GeometriesRoot name the conventional top-level
	// groups inside a combined scene file.
	EventDataRoot  string
	GeometriesRoot string

	// DracoDecoderPath locates a Draco decoder resource. Resolved once at
	// startup; empty means Draco-compressed primitives are rejected.
	DracoDecoderPath string
}

// Request describes one import. Exactly one of URL, Data or JSON must be set.
// The request is not modified by the importer.
type Request struct {
	URL      string // remote source, fetched with the importer's loader
	Data     []byte // in-memory source; FileName supplies the format
	FileName string
	JSON     []byte // inline JSON scene value

	// BaseDir optionally roots resolution of sibling resources (GLTF
	// buffers, textures) for in-memory sources read from disk.
	BaseDir string

	Name        string // display name; defaults to the logical file name
	Scale       float32
	DoubleSided *bool  // overrides per-material sidedness when set
	MenuRoot    string // optional menu placement prefix
}

// Result is one normalized import: the root node plus its menu placement.
// Multi-scene GLTF files produce one Result per scene, in file order.
type Result struct {
	Node     *scene.Node
	MenuPath string
}

// Importer runs the import pipeline. Safe for concurrent use; all mutable
// state lives in per-call values.
type Importer struct {
	cfg    Config
	loader *assets.Loader
	log    *zap.SugaredLogger
}

// New creates an importer with the given configuration.
func New(cfg Config, loader *assets.Loader, log *zap.SugaredLogger) *Importer {
	if loader == nil {
		loader = assets.NewLoader()
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Importer{cfg: cfg, loader: loader, log: log}
}

// ClipPlanes returns the configured clip-plane set.
func (im *Importer) ClipPlanes() []*math32.Plane {
	return im.cfg.ClipPlanes
}

// Import dispatches on the source's file extension. Zip archives are
// dispatched on the single format their entries share.
func (im *Importer) Import(ctx context.Context, req Request) ([]Result, error) {
	if len(req.JSON) > 0 {
		res, err := im.ImportScene(ctx, req)
		if err != nil {
			return nil, err
		}
		return []Result{*res}, nil
	}

	name, err := sourceName(req)
	if err != nil {
		return nil, err
	}

	format := strings.ToLower(path.Ext(name))
	if format == ".zip" {
		data, _, err := im.resolveBytes(ctx, req)
		if err != nil {
			return nil, err
		}
		format, err = archiveFormat(data)
		if err != nil {
			return nil, err
		}
	}

	switch format {
	case ".obj":
		return im.ImportOBJ(ctx, req)
	case ".gltf", ".glb":
		return im.ImportGLTF(ctx, req)
	case ".json":
		return im.ImportScenes(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// sourceName returns the file name a request's format is derived from.
func sourceName(req Request) (string, error) {
	set := 0
	if req.URL != "" {
		set++
	}
	if len(req.Data) > 0 {
		set++
	}
	if len(req.JSON) > 0 {
		set++
	}
	if set == 0 {
		return "", ErrNoSource
	}
	if set > 1 {
		return "", ErrMultipleSources
	}
	if req.URL != "" {
		return path.Base(req.URL), nil
	}
	if req.FileName == "" {
		return "", fmt.Errorf("%w: in-memory data needs FileName", ErrUnsupportedFormat)
	}
	return path.Base(req.FileName), nil
}

// logicalName strips the extension from a file name, giving the default
// display name for the imported object.
func logicalName(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// displayName picks the caller-supplied name or falls back to the logical
// file name.
func displayName(req Request, logical string) string {
	if req.Name != "" {
		return req.Name
	}
	return logical
}
