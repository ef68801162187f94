package sheetcalc

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// FunctionPack is a declarative set of user-defined functions, loaded
// from YAML:
//
//	functions:
//	  - name: DOUBLE
//	    params: [x]
//	    body: x * 2
type FunctionPack struct {
	Functions []PackFunction `yaml:"functions"`
}

// PackFunction declares one function of a pack.
type PackFunction struct {
	Name   string   `yaml:"name"`
	Params []string `yaml:"params"`
	Body   string   `yaml:"body"`
}

// LoadFunctionPack reads a pack definition from r.
func LoadFunctionPack(r io.Reader) (*FunctionPack, error) {
	var pack FunctionPack
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&pack); err != nil {
		return nil, fmt.Errorf("decode function pack: %w", err)
	}
	for i, f := range pack.Functions {
		if f.Name == "" {
			return nil, fmt.Errorf("function pack entry %d: missing name", i)
		}
		if f.Body == "" {
			return nil, fmt.Errorf("function pack %q: missing body", f.Name)
		}
	}
	return &pack, nil
}

// LoadFunctionPackFile reads a pack definition from a YAML file.
func LoadFunctionPackFile(path string) (*FunctionPack, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open function pack: %w", err)
	}
	defer f.Close()
	return LoadFunctionPack(f)
}
