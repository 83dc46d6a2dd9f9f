package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/quiver/pkg/schema"
)

func TestFieldJSON(t *testing.T) {
	data, err := schema.FieldJSON()
	require.NoError(t, err)

	var doc struct {
		ID         string `json:"$id"`
		Properties map[string]struct {
			Type  string   `json:"type"`
			Enum  []string `json:"enum"`
			Items struct {
				Properties map[string]struct {
					Type string   `json:"type"`
					Enum []string `json:"enum"`
				} `json:"properties"`
			} `json:"items"`
		} `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, schema.ID, doc.ID)
	assert.Contains(t, doc.Properties, "grid")
	assert.Contains(t, doc.Properties, "caption")
	assert.ElementsMatch(t, []string{"root-linear", "root-quadratic", "unit"}, doc.Properties["scaling"].Enum)

	sample := doc.Properties["samples"].Items.Properties
	for _, key := range []string{"x", "y", "dx", "dy"} {
		assert.Equal(t, "number", sample[key].Type, key)
	}
	assert.Equal(t, "string", sample["status"].Type)
	assert.Equal(t, []string{"ok", "domain_error", "non_finite", "degenerate"}, sample["status"].Enum)
}
