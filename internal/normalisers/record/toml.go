package record

import (
	"fmt"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// flattenTOML decodes into generic tables and walks them with sorted keys.
func flattenTOML(content []byte) ([]string, error) {
	var doc map[string]any
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, err
	}

	var out []string
	walkValue(doc, "", &out)
	return out, nil
}

func walkValue(v any, path string, out *[]string) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			walkValue(val[k], joinKey(path, k), out)
		}
	case []any:
		for i, item := range val {
			walkValue(item, fmt.Sprintf("%s[%d]", path, i), out)
		}
	case []map[string]any:
		for i, item := range val {
			walkValue(item, fmt.Sprintf("%s[%d]", path, i), out)
		}
	default:
		*out = append(*out, line(path, fmt.Sprint(val)))
	}
}
