// Package manifest reads bundle manifests written in TOML (Bundle.toml) or
// YAML (bundle.yaml, bundle.yml).
package manifest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-appbundle/bundle"
	"github.com/nvr-ai/go-appbundle/util"
)

// ErrInvalid is returned for manifests that do not parse or lack required keys.
var ErrInvalid = errors.New("invalid manifest")

// Names are the file names Find looks for, in order.
var Names = []string{"Bundle.toml", "bundle.toml", "bundle.yaml", "bundle.yml"}

// Format is a manifest encoding.
type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, true
	case ".yaml", ".yml":
		return YAML, true
	default:
		return "", false
	}
}

// Manifest describes one bundle. Relative paths and globs resolve against Dir.
type Manifest struct {
	Name                 string   `toml:"name" yaml:"name"`
	Identifier           string   `toml:"identifier" yaml:"identifier"`
	Version              string   `toml:"version" yaml:"version"`
	Copyright            string   `toml:"copyright" yaml:"copyright"`
	Binary               string   `toml:"binary" yaml:"binary"`
	BinaryName           string   `toml:"binary_name" yaml:"binary_name"`
	Icon                 []string `toml:"icon" yaml:"icon"`
	Resources            []string `toml:"resources" yaml:"resources"`
	Category             string   `toml:"category" yaml:"category"`
	MinimumSystemVersion string   `toml:"minimum_system_version" yaml:"minimum_system_version"`

	// Dir is the directory the manifest was loaded from.
	Dir string `toml:"-" yaml:"-"`
}

// Find returns the first manifest present in dir.
func Find(dir string) (string, error) {
	for _, name := range Names {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", errors.Errorf("no manifest (%s) in %s", strings.Join(Names, ", "), dir)
}

// Load reads and validates the manifest at path.
//
// Arguments:
//   - path: A .toml, .yaml or .yml file.
//
// Returns:
//   - *Manifest: The manifest with Dir set to path's directory.
//   - error: ErrInvalid for bad content, or the read error.
func Load(path string) (*Manifest, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.Wrapf(ErrInvalid, "%s: unknown manifest extension", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	m.Dir = abs
	return m, nil
}

// Parse decodes and validates a manifest. Unknown keys are rejected so typos
// do not silently drop settings.
//
// Arguments:
//   - data: The manifest text.
//   - format: TOML or YAML.
//
// Returns:
//   - *Manifest: The manifest; Dir is left empty.
//   - error: ErrInvalid with the decoder's message.
func Parse(data []byte, format Format) (*Manifest, error) {
	var m Manifest
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(&m)
	case YAML:
		err = yaml.UnmarshalWithOptions(data, &m, yaml.Strict())
	default:
		return nil, errors.Wrapf(ErrInvalid, "unknown format %q", format)
	}
	if err != nil {
		return nil, errors.Wrapf(ErrInvalid, "%s: %v", format, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	var missing []string
	for _, f := range []struct{ key, value string }{
		{"name", m.Name},
		{"identifier", m.Identifier},
		{"version", m.Version},
		{"binary", m.Binary},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.key)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrInvalid, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// Descriptor returns the bundle identity.
func (m *Manifest) Descriptor() bundle.Descriptor {
	return bundle.Descriptor{
		Name:                 m.Name,
		BinaryName:           m.BinaryName,
		Identifier:           m.Identifier,
		Version:              m.Version,
		Copyright:            m.Copyright,
		MinimumSystemVersion: m.MinimumSystemVersion,
		Category:             m.Category,
	}
}

// Inputs expands the manifest's paths and globs into assembler inputs.
// Resources keep their layout relative to the manifest directory.
func (m *Manifest) Inputs(ctx context.Context) (bundle.Inputs, error) {
	icons, err := util.ExpandIcons(m.Dir, m.Icon)
	if err != nil {
		return bundle.Inputs{}, errors.Wrap(err, "icon")
	}
	resources, err := util.CollectResources(ctx, m.Dir, m.Resources)
	if err != nil {
		return bundle.Inputs{}, errors.Wrap(err, "resources")
	}
	return bundle.Inputs{
		Binary:       m.path(m.Binary),
		Icons:        icons,
		Resources:    resources,
		ResourceRoot: m.Dir,
	}, nil
}

func (m *Manifest) path(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}
