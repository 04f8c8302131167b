package registry

import (
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed classes.yaml
var classTable []byte

// ClassTable returns the embedded class table document.
func ClassTable() []byte {
	return classTable
}

type yamlTable struct {
	Classes []struct {
		ID     uint32 `yaml:"id"`
		Name   string `yaml:"name"`
		Parent uint32 `yaml:"parent"`
	} `yaml:"classes"`
	Remaps []struct {
		From uint32 `yaml:"from"`
		To   uint32 `yaml:"to"`
	} `yaml:"remaps"`
}

// LoadYAML registers the classes and remaps of a YAML class table.
func (b *Builder) LoadYAML(r io.Reader) error {
	var table yamlTable
	if err := yaml.NewDecoder(r).Decode(&table); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse class table: %w", err)
	}

	for _, c := range table.Classes {
		if err := b.RegisterClass(c.ID, c.Name, c.Parent); err != nil {
			return err
		}
	}
	for _, m := range table.Remaps {
		if err := b.RegisterRemap(m.From, m.To); err != nil {
			return err
		}
	}

	return nil
}
