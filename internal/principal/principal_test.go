package principal_test

import (
	"testing"

	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    principal.Identity
		wantErr error
	}{
		{
			name:  "simple chain and account",
			input: "chain:acct1",
			want:  principal.New("chain", "acct1"),
		},
		{
			name:  "namespaced chain reference",
			input: "eip155:1:0xabc",
			want:  principal.New("eip155:1", "0xabc"),
		},
		{
			name:    "missing separator",
			input:   "acct1",
			wantErr: principal.ErrMalformed,
		},
		{
			name:    "empty chain",
			input:   ":acct1",
			wantErr: principal.ErrEmptyChain,
		},
		{
			name:    "empty account",
			input:   "chain:",
			wantErr: principal.ErrEmptyAccount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := principal.Parse(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.input, got.String())
		})
	}
}

func TestSaltIsDeterministic(t *testing.T) {
	a := principal.New("chain", "acct1")
	b := principal.New("chain", "acct1")

	assert.Equal(t, a.Salt(), b.Salt())
	assert.NotEqual(t, a.Salt(), principal.New("chain", "acct2").Salt())
	assert.NotEqual(t, a.Salt(), principal.New("chain2", "acct1").Salt())
	// The encoding is length prefixed, so shifting the separator changes the salt.
	assert.NotEqual(t, principal.New("ab", "c").Salt(), principal.New("a", "bc").Salt())
}
