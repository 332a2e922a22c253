//go:build unit || e2e

package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type Mutator func(map[string]any)

// DtoMap turns a request DTO into its JSON map so tests can send malformed variants.
func DtoMap(t *testing.T, v any, muts ...Mutator) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	for _, f := range muts {
		f(m)
	}
	return m
}

// Field sets key, or deletes it when value is nil.
func Field(key string, value any) Mutator {
	return func(m map[string]any) {
		if value == nil {
			delete(m, key)
		} else {
			m[key] = value
		}
	}
}

// Item applies mut to element i of the array under key, e.g. one slot of a hold request.
func Item(key string, i int, mut Mutator) Mutator {
	return func(m map[string]any) {
		items, ok := m[key].([]any)
		if !ok || i >= len(items) {
			return
		}
		if obj, ok := items[i].(map[string]any); ok {
			mut(obj)
		}
	}
}
