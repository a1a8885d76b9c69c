package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONMetadata_ValueAndScan(t *testing.T) {
	in := JSONMetadata{"fields": []interface{}{"name", "age"}, "ready": false}

	v, err := in.Value()
	require.NoError(t, err)

	var out JSONMetadata
	require.NoError(t, out.Scan(v))
	assert.Equal(t, false, out["ready"])
	assert.Equal(t, []interface{}{"name", "age"}, out["fields"])

	require.NoError(t, out.Scan([]byte(`{"a":1}`)))
	assert.Equal(t, float64(1), out["a"])

	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)

	assert.Error(t, out.Scan(42))
}

func TestJSONMetadata_NilValue(t *testing.T) {
	var jm JSONMetadata
	v, err := jm.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
