package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBareNumber(t *testing.T) {
	r := Normalize([]byte("42.5"))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 42.5, *r.Distance)
	assert.Empty(t, r.Status)
}

func TestNormalizeNumericString(t *testing.T) {
	r := Normalize([]byte(`"17"`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 17.0, *r.Distance)
}

func TestNormalizeObject(t *testing.T) {
	r := Normalize([]byte(`{"distance": 120, "status": "online", "timestamp": "2026-01-02T03:04:05Z"}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 120.0, *r.Distance)
	assert.Equal(t, "online", r.Status)
	assert.Equal(t, "2026-01-02T03:04:05Z", r.Timestamp)
}

func TestNormalizeFieldAliases(t *testing.T) {
	english := Normalize([]byte(`{"distance": 30}`))
	portuguese := Normalize([]byte(`{"distancia": 30}`))

	require.NotNil(t, english.Distance)
	require.NotNil(t, portuguese.Distance)
	assert.Equal(t, *english.Distance, *portuguese.Distance)
}

func TestNormalizeEnvelopeObject(t *testing.T) {
	r := Normalize([]byte(`{"payload": {"distancia": 75.5, "status": "em uso"}}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 75.5, *r.Distance)
	assert.Equal(t, "em uso", r.Status)
}

func TestNormalizeEnvelopeEncodedString(t *testing.T) {
	// The broker sometimes double-encodes: the payload field carries a
	// JSON document as a string.
	r := Normalize([]byte(`{"payload": "{\"distance\":12.5,\"status\":\"imprimindo\"}"}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 12.5, *r.Distance)
	assert.Equal(t, "imprimindo", r.Status)
}

func TestNormalizeEnvelopeUnwrapFailureFallsBackToOuter(t *testing.T) {
	r := Normalize([]byte(`{"payload": "not json", "distance": 9}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 9.0, *r.Distance)
}

func TestNormalizeEnvelopeNonObjectPayload(t *testing.T) {
	// A payload that parses to a non-object carries no fields.
	r := Normalize([]byte(`{"payload": "123", "distance": 9}`))
	assert.Nil(t, r.Distance)
	assert.Empty(t, r.Status)
}

func TestNormalizeStringDistanceField(t *testing.T) {
	r := Normalize([]byte(`{"distance": "12.5"}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 12.5, *r.Distance)
}

func TestNormalizeInvalidDistance(t *testing.T) {
	cases := map[string]string{
		"non-numeric string": `{"distance": "abc"}`,
		"null":               `{"distance": null}`,
		"boolean":            `{"distance": true}`,
		"object":             `{"distance": {}}`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			r := Normalize([]byte(payload))
			assert.Nil(t, r.Distance)
		})
	}
}

func TestNormalizeNonFiniteRejected(t *testing.T) {
	for _, s := range []string{"NaN", "Inf", "-Inf"} {
		r := Normalize([]byte(s))
		assert.Nil(t, r.Distance, "input %q", s)
	}
}

func TestNormalizeMalformedInputNeverErrors(t *testing.T) {
	for _, s := range []string{"", "   ", "not json", "{broken", "[1,2", `{"status": 7}`} {
		r := Normalize([]byte(s))
		assert.Nil(t, r.Distance, "input %q", s)
		assert.Empty(t, r.Status, "input %q", s)
	}
}

func TestNormalizeZeroDistance(t *testing.T) {
	r := Normalize([]byte(`{"distance": 0}`))
	require.NotNil(t, r.Distance)
	assert.Equal(t, 0.0, *r.Distance)
}

func TestNormalizePassthroughFields(t *testing.T) {
	r := Normalize([]byte(`{"distance": 40, "name": "Impressora Alpha", "progress": 62.5}`))
	assert.Equal(t, "Impressora Alpha", r.Name)
	require.NotNil(t, r.Progress)
	assert.Equal(t, 62.5, *r.Progress)
}

func TestNormalizeValueMap(t *testing.T) {
	r := NormalizeValue(map[string]any{"distance": 55.0, "status": "funcionando"})
	require.NotNil(t, r.Distance)
	assert.Equal(t, 55.0, *r.Distance)
	assert.Equal(t, "funcionando", r.Status)
}
