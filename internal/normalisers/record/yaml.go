package record

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// flattenYAML walks the node tree of every document in the stream.
func flattenYAML(content []byte) ([]string, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))

	var out []string
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		walkYAML(&doc, "", &out)
	}
}

func walkYAML(n *yaml.Node, path string, out *[]string) {
	switch n.Kind {
	case yaml.DocumentNode:
		for _, c := range n.Content {
			walkYAML(c, path, out)
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			walkYAML(n.Content[i+1], joinKey(path, n.Content[i].Value), out)
		}
	case yaml.SequenceNode:
		for i, c := range n.Content {
			walkYAML(c, fmt.Sprintf("%s[%d]", path, i), out)
		}
	case yaml.AliasNode:
		if n.Alias != nil {
			walkYAML(n.Alias, path, out)
		}
	case yaml.ScalarNode:
		*out = append(*out, line(path, n.Value))
	}
}
