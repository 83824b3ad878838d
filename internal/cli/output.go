package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// Printer writes records in the configured output format. JSON records are written
// one per line when streaming; YAML records are separate documents.
type Printer struct {
	format string
	out    io.Writer
	yaml   *yaml.Encoder
}

// NewPrinter creates a printer for format, json or yaml
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	p := &Printer{format: strings.ToLower(format), out: out}
	switch p.format {
	case "", "json":
		p.format = "json"
	case "yaml":
		p.yaml = yaml.NewEncoder(out)
		p.yaml.SetIndent(2)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
	return p, nil
}

// Print writes a single result, indented
func (p *Printer) Print(data interface{}) error {
	if p.format == "json" {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}
	return p.encodeYAML(data)
}

// Stream writes one record of a sequence
func (p *Printer) Stream(data interface{}) error {
	if p.format == "json" {
		return json.NewEncoder(p.out).Encode(data)
	}
	return p.encodeYAML(data)
}

// Close flushes pending YAML documents
func (p *Printer) Close() error {
	if p.yaml != nil {
		return p.yaml.Close()
	}
	return nil
}

// encodeYAML goes through JSON so that the json tags of the records name the keys
func (p *Printer) encodeYAML(data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return err
	}
	blockStyle(&node)
	return p.yaml.Encode(&node)
}

// blockStyle drops the flow and quoting styles that JSON input leaves on the nodes
func blockStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		blockStyle(child)
	}
}
