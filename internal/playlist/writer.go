package playlist

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Encode writes p as YAML with two-space indentation
func Encode(w io.Writer, p *Playlist) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

// Decode reads one playlist document. Unknown keys are rejected so a
// misspelt field does not silently drop a slide setting.
func Decode(r io.Reader) (*Playlist, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Playlist
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	if p.Version == "" {
		p.Version = Version
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Write stores p at path, creating parent directories
func Write(p *Playlist, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, p); err != nil {
		f.Close()
		return fmt.Errorf("playlist %s: %w", path, err)
	}
	return f.Close()
}

// Read loads and validates the playlist at path
func Read(path string) (*Playlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("playlist %s: %w", path, err)
	}
	return p, nil
}
