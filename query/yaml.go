package query

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// MarshalYAML reuses the JSON discriminated-union encoding: Query's wire
// shape is defined once, in MarshalJSON/UnmarshalJSON, and YAML support
// round-trips through it rather than duplicating the tag table.
func (q Query) MarshalYAML() (any, error) {
	data, err := q.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil, err
	}
	return generic, nil
}

// UnmarshalYAML decodes a Query from a YAML node by round-tripping it
// through the JSON tag table.
func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	var generic any
	if err := node.Decode(&generic); err != nil {
		return err
	}
	data, err := yamlNodeToJSON(generic)
	if err != nil {
		return err
	}
	return q.UnmarshalJSON(data)
}

func yamlNodeToJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}
