package file

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// NetworkFile is the YAML description of a network snapshot.
type NetworkFile struct {
	ID            string                `yaml:"id"`
	Lines         []domain.Line         `yaml:"lines"`
	DanglingLines []domain.DanglingLine `yaml:"dangling_lines"`
}

// ParseNetwork decodes a network YAML document. Unknown fields are rejected.
func ParseNetwork(data []byte) (*domain.Network, error) {
	var nf NetworkFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&nf); err != nil {
		return nil, fmt.Errorf("parse network yaml: %w", err)
	}
	if nf.ID == "" {
		return nil, fmt.Errorf("network yaml: id is required")
	}

	n := domain.NewNetwork(nf.ID)
	for _, l := range nf.Lines {
		if err := n.AddLine(l); err != nil {
			return nil, err
		}
	}
	for _, dl := range nf.DanglingLines {
		if err := n.AddDanglingLine(dl); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// NetworkRepo serves a single network snapshot from a YAML file.
type NetworkRepo struct {
	path string
}

// NewNetworkRepo creates a NetworkRepo reading path.
func NewNetworkRepo(path string) *NetworkRepo {
	return &NetworkRepo{path: path}
}

// LoadNetwork reads the file on every call so each import works on a fresh snapshot.
// An empty networkID accepts whatever network the file holds.
func (r *NetworkRepo) LoadNetwork(ctx context.Context, networkID string) (*domain.Network, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}
	n, err := ParseNetwork(data)
	if err != nil {
		return nil, err
	}
	if networkID != "" && n.ID != networkID {
		return nil, fmt.Errorf("network %s in %s: %w", networkID, r.path, domain.ErrNetworkNotFound)
	}
	return n, nil
}
