package restserver

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed all:assets
var assetsFS embed.FS

// GetAssets returns the status page assets, either from disk or embedded
func GetAssets() fs.FS {
	// AQIMONITOR_ASSETS_DIR serves assets straight from disk so the page can
	// be edited without rebuilding.
	if dir := os.Getenv("AQIMONITOR_ASSETS_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to create assets sub-filesystem: " + err.Error())
	}
	return assets
}
