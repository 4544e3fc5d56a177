package config

import "flag"

var (
	flagConfig   = flag.String("config", "", "Path to config file")
	flagDebug    = flag.Bool("debug", false, "Enable debug logging")
	flagMenuRoot = flag.String("menu-root", "", "Menu path prefix for imported geometries")
	flagScale    = flag.Float64("scale", 0, "Scale factor applied to imported geometry")
	flagDraco    = flag.String("draco-decoder", "", "Path to the Draco decoder resource")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagMenuRoot != "" {
		cfg.Importer.MenuRoot = *flagMenuRoot
	}
	if *flagScale > 0 {
		cfg.Importer.Scale = float32(*flagScale)
	}
	if *flagDraco != "" {
		cfg.Importer.DracoDecoderPath = *flagDraco
	}
}
