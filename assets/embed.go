package assets

import (
	"embed"
	"io/fs"
)

//go:embed catalog.yaml web
var FS embed.FS

// DefaultCatalog returns the embedded catalog YAML.
func DefaultCatalog() ([]byte, error) {
	return FS.ReadFile("catalog.yaml")
}

// Web returns the browser client rooted at web/.
func Web() fs.FS {
	sub, err := fs.Sub(FS, "web")
	if err != nil {
		// web/ is embedded at build time; a failure here is a build mistake.
		panic(err)
	}
	return sub
}
