package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNamespaceChain_Prefix(t *testing.T) {
	tests := []struct {
		name  string
		chain NamespaceChain
		want  string
	}{
		{"global scope", nil, ""},
		{"single", NamespaceChain{"demo"}, "demo::"},
		{"nested", NamespaceChain{"a", "b"}, "a::b::"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.chain.Prefix())
			assert.Equal(t, tt.want+"Foo", tt.chain.Qualify("Foo"))
		})
	}
}

func TestStatus_TextRoundTrip(t *testing.T) {
	for status := Converted; status <= Skipped; status++ {
		text, err := status.MarshalText()
		require.NoError(t, err)

		var decoded Status
		require.NoError(t, decoded.UnmarshalText(text))
		assert.Equal(t, status, decoded)
	}

	var s Status
	err := s.UnmarshalText([]byte("bogus"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.Equal(t, "unknown", Status(99).String())
}

func TestOutcome_Changed(t *testing.T) {
	assert.True(t, Outcome{Status: Converted}.Changed())
	assert.False(t, Outcome{Status: AlreadyConverted}.Changed())
	assert.False(t, Outcome{Status: NotFound}.Changed())
}
