// internal/catalog/load.go
//
// Loading a catalog from disk or from the embedded default.
//
// Two file formats are accepted:
//   - YAML (.yaml/.yml): a mapping with "version" and "phrases".
//   - Plain text: one phrase per line; blank lines and lines starting with
//     "#" are skipped. The version is derived from the fingerprint.
//
// Environment:
//   CATALOG_FILE=/path/to/catalog.yaml   (empty → embedded default)

package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robalobadob/bingo/assets"
)

// fileFormat is the YAML shape of a catalog file.
type fileFormat struct {
	Version string   `yaml:"version"`
	Phrases []string `yaml:"phrases"`
}

// Default builds the catalog embedded in the binary.
func Default() (*Catalog, error) {
	raw, err := assets.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog: %w", err)
	}
	return ParseYAML(raw)
}

// Load reads a catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c, err := ParseYAML(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return c, nil
	}
	c, err := ParseText(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ParseYAML builds a catalog from the YAML file format.
func ParseYAML(raw []byte) (*Catalog, error) {
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}
	return New(f.Version, f.Phrases)
}

// ParseText builds an unversioned catalog from one phrase per line.
func ParseText(raw []byte) (*Catalog, error) {
	var phrases []string
	sc := bufio.NewScanner(bytes.NewReader(raw))
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		phrases = append(phrases, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return New("", phrases)
}
