// phoenix-import is a CLI utility for inspecting event-display geometry
// imports: OBJ, GLTF/GLB and JSON scene files, plain or zip-wrapped, from
// disk or over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/g3n/engine/math32"

	"github.com/Mayank77maruti/phoenix/internal/assets"
	"github.com/Mayank77maruti/phoenix/internal/config"
	"github.com/Mayank77maruti/phoenix/internal/logger"
	"github.com/Mayank77maruti/phoenix/pkg/importer"
	"github.com/Mayank77maruti/phoenix/pkg/scene"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "tree":
		cmdTree(args)
	case "combined":
		cmdCombined(args)
	case "config":
		cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`phoenix-import - event display geometry import utility

Usage:
  phoenix-import <command> [options]

Commands:
  info <source>      Import and summarize (name, menu path, meshes, size)
  tree <source>      Import and print the node hierarchy
  combined <source>  Extract event-data and geometries from a combined scene
  config init        Write a default config file
  config show        Print the resolved configuration path and values

A source is a local file or an http(s) URL; .obj, .gltf, .glb, .json and
zip archives of those are accepted.

Examples:
  phoenix-import info detector.zip
  phoenix-import tree -scale 0.01 https://host/geometry/tracker.gltf
  phoenix-import combined event-dump.json`)
}

// setup resolves configuration and builds the shared import pipeline.
func setup() (*config.Config, *importer.Importer) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	loader := assets.NewLoaderWithClient(&http.Client{Timeout: cfg.Fetch.Timeout})
	im := importer.New(importer.Config{
		ClipPlanes:       cfg.ClipPlanes(),
		EventDataRoot:    cfg.Importer.EventDataRoot,
		GeometriesRoot:   cfg.Importer.GeometriesRoot,
		DracoDecoderPath: cfg.Importer.DracoDecoderPath,
	}, loader, logger.Named("importer"))
	return cfg, im
}

// importFlags registers the request options shared by the import commands.
func importFlags(fs *flag.FlagSet) (name, menuRoot *string, scale *float64, doubleSided *bool) {
	name = fs.String("name", "", "Display name (default: file name)")
	menuRoot = fs.String("menu-root", "", "Menu path prefix")
	scale = fs.Float64("scale", 0, "Scale factor")
	doubleSided = fs.Bool("double-sided", false, "Force double-sided materials")
	return
}

// buildRequest turns a CLI source argument into an import request: URLs are
// fetched, anything else is read from disk.
func buildRequest(source string, name, menuRoot string, scale float64, doubleSided bool) (importer.Request, error) {
	req := importer.Request{
		Name:     name,
		MenuRoot: menuRoot,
		Scale:    float32(scale),
	}
	if doubleSided {
		v := true
		req.DoubleSided = &v
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req.URL = source
		return req, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return req, err
	}
	req.Data = data
	req.FileName = filepath.Base(source)
	if abs, err := filepath.Abs(source); err == nil {
		req.BaseDir = filepath.Dir(abs)
	}
	return req, nil
}

func runImport(fs *flag.FlagSet, args []string, usage string) []importer.Result {
	name, menuRoot, scale, doubleSided := importFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	cfg, im := setup()
	defer logger.Sync()

	menu := *menuRoot
	if menu == "" {
		menu = cfg.Importer.MenuRoot
	}
	sc := *scale
	if sc == 0 {
		sc = float64(cfg.Importer.Scale)
	}

	req, err := buildRequest(fs.Arg(0), *name, menu, sc, *doubleSided)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	results, err := im.Import(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return results
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	results := runImport(fs, args, "Usage: phoenix-import info [options] <source>")

	for _, res := range results {
		meshes := res.Node.Meshes()
		var vertices int
		for _, m := range meshes {
			vertices += m.Geometry.VertexCount()
		}
		fmt.Printf("Name:     %s\n", res.Node.Name)
		if res.MenuPath != "" {
			fmt.Printf("Menu:     %s\n", res.MenuPath)
		}
		fmt.Printf("Nodes:    %d\n", res.Node.Count())
		fmt.Printf("Meshes:   %d\n", len(meshes))
		fmt.Printf("Vertices: %d\n", vertices)
		if box, ok := res.Node.BoundingBox(); ok {
			var size math32.Vector3
			box.Size(&size)
			fmt.Printf("Size:     %.2f x %.2f x %.2f\n", size.X, size.Y, size.Z)
		}
		fmt.Println()
	}
}

func cmdTree(args []string) {
	fs := flag.NewFlagSet("tree", flag.ExitOnError)
	results := runImport(fs, args, "Usage: phoenix-import tree [options] <source>")

	for _, res := range results {
		printTree(res.Node, 0)
	}
}

func printTree(n *scene.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	label := n.Name
	if label == "" {
		label = "(unnamed)"
	}
	switch n.Kind {
	case scene.KindGroup:
		fmt.Printf("%s%s/\n", indent, label)
	default:
		detail := ""
		if size, ok := n.UserData[scene.UserDataSize]; ok {
			detail = "  " + size
		}
		fmt.Printf("%s%s [%s]%s\n", indent, label, n.Kind, detail)
	}
	for _, child := range n.Children {
		printTree(child, depth+1)
	}
}

func cmdCombined(args []string) {
	fs := flag.NewFlagSet("combined", flag.ExitOnError)
	name, menuRoot, scale, doubleSided := importFlags(fs)
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: phoenix-import combined [options] <source>")
		os.Exit(1)
	}

	_, im := setup()
	defer logger.Sync()

	req, err := buildRequest(fs.Arg(0), *name, *menuRoot, *scale, *doubleSided)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	combined, err := im.ImportCombined(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printSubtree := func(title string, n *scene.Node) {
		if n == nil {
			fmt.Printf("%s: (absent)\n", title)
			return
		}
		fmt.Printf("%s: %d nodes, %d meshes\n", title, n.Count(), len(n.Meshes()))
	}
	printSubtree("Event data", combined.EventData)
	printSubtree("Geometries", combined.Geometries)
}

func cmdConfig(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: phoenix-import config <init|show>")
		os.Exit(1)
	}

	switch args[0] {
	case "init":
		cfg := config.Default()
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", filepath.Join(config.ConfigDir(), "phoenix.yaml"))
	case "show":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config dir:     %s\n", config.ConfigDir())
		fmt.Printf("Event data:     %s\n", cfg.Importer.EventDataRoot)
		fmt.Printf("Geometries:     %s\n", cfg.Importer.GeometriesRoot)
		fmt.Printf("Menu root:      %s\n", cfg.Importer.MenuRoot)
		fmt.Printf("Scale:          %g\n", cfg.Importer.Scale)
		fmt.Printf("Draco decoder:  %s\n", cfg.Importer.DracoDecoderPath)
		fmt.Printf("Fetch timeout:  %s\n", cfg.Fetch.Timeout)
		fmt.Printf("Clip planes:    %d\n", len(cfg.Clipping.Planes))
		fmt.Printf("Log level:      %s\n", cfg.Logging.Level)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		os.Exit(1)
	}
}
