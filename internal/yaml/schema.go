package yaml

import (
	"github.com/vk/jigsaw/internal/nodeid"
	"gopkg.in/yaml.v3"
)

type document struct {
	Nodes      []nodeDoc      `yaml:"nodes"`
	Edges      []edgeDoc      `yaml:"edges"`
	Inputs     yaml.Node      `yaml:"inputs"`
	Outputs    []string       `yaml:"outputs"`
	Composites []compositeDoc `yaml:"composites"`
}

type nodeDoc struct {
	ID    string    `yaml:"id"`
	Piece string    `yaml:"piece"`
	Args  yaml.Node `yaml:"args"`
	// Inputs maps one of the node's input ports to the upstream port feeding it.
	Inputs map[string]nodeid.Port `yaml:"inputs"`
}

type edgeDoc struct {
	From nodeid.Port `yaml:"from"`
	To   nodeid.Port `yaml:"to"`
}

type compositeDoc struct {
	Name    string       `yaml:"name"`
	Inputs  []bindingDoc `yaml:"inputs"`
	Outputs []bindingDoc `yaml:"outputs"`
	Nodes   []nodeDoc    `yaml:"nodes"`
	Edges   []edgeDoc    `yaml:"edges"`
}

type bindingDoc struct {
	Name string `yaml:"name"`
	Port string `yaml:"port"`
}
