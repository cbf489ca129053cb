package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSecurableType(t *testing.T) {
	tests := []struct {
		input   string
		want    SecurableType
		wantErr bool
	}{
		{"TABLE", SecurableTable, false},
		{"table", SecurableTable, false},
		{" Column ", SecurableColumn, false},
		{"CATALOG", SecurableCatalog, false},
		{"SCHEMA", SecurableSchema, false},
		{"VOLUME", SecurableVolume, false},
		{"WIDGET", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := ParseSecurableType(tc.input)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.input)
			continue
		}
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got)
	}
}

func TestSecurableString(t *testing.T) {
	s := Securable{Type: SecurableTable, Name: "cat.sch.t1"}
	assert.Equal(t, "TABLE cat.sch.t1", s.String())
}
