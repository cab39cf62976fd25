package codec_test

import (
	"math/big"
	"testing"

	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	txID     = common.HexToHash("0x01")
	expected = common.HexToAddress("0xaa")
)

func TestSelectors(t *testing.T) {
	sel := codec.KindProvideAccount.Selector()
	assert.Equal(t, crypto.Keccak256([]byte("provideAccount(bytes32,address,bytes)"))[:4], sel[:])
	sel = codec.KindUpdateOwner.Selector()
	assert.Equal(t, crypto.Keccak256([]byte("updateOwner(bytes32,address,bytes)"))[:4], sel[:])
}

func TestEncodeDecode(t *testing.T) {
	tests := []struct {
		name string
		in   codec.Instruction
	}{
		{
			name: "provide account",
			in:   codec.ProvideAccount(txID, expected),
		},
		{
			name: "execute on account",
			in: codec.ExecuteOnAccount(txID, expected,
				ledger.Call{Target: common.HexToAddress("0xbb"), Data: []byte{1, 2, 3}, Value: big.NewInt(5)},
				ledger.Call{Target: common.HexToAddress("0xcc"), Data: []byte{}, Value: big.NewInt(1)},
			),
		},
		{
			name: "deposit with permit",
			in: codec.DepositInto(txID, expected, codec.Deposit{
				Token:     common.HexToAddress("0x70"),
				Amount:    big.NewInt(1000),
				Nonce:     big.NewInt(7),
				Deadline:  big.NewInt(1_900_000_000),
				Owner:     common.HexToAddress("0x0e"),
				Witness:   common.HexToHash("0xfeed"),
				Signature: []byte{9, 9, 9},
			}),
		},
		{
			name: "update owner",
			in:   codec.UpdateOwner(txID, expected, common.HexToAddress("0x02")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := codec.Encode(tt.in)
			require.NoError(t, err)
			sel := tt.in.Kind.Selector()
			assert.Equal(t, sel[:], payload[:4])

			decoded, err := codec.Decode(payload)
			require.NoError(t, err)
			require.Len(t, decoded, 1)
			assert.Equal(t, tt.in, decoded[0])
		})
	}
}

func TestDepositWithoutPermit(t *testing.T) {
	payload, err := codec.Encode(codec.DepositInto(txID, expected, codec.Deposit{}))
	require.NoError(t, err)
	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.False(t, decoded[0].Deposit.HasPermit())
}

func TestBatch(t *testing.T) {
	first := codec.ProvideAccount(txID, expected)
	second := codec.UpdateOwner(common.HexToHash("0x02"), expected, common.HexToAddress("0x03"))

	payload, err := codec.EncodeBatch(first, second)
	require.NoError(t, err)
	assert.Equal(t, codec.BatchSelector[:], payload[:4])

	decoded, err := codec.Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, []codec.Instruction{first, second}, decoded)
}

func TestDecodeErrors(t *testing.T) {
	valid, err := codec.Encode(codec.UpdateOwner(txID, expected, common.HexToAddress("0x03")))
	require.NoError(t, err)
	nested, err := codec.EncodeBatch(codec.ProvideAccount(txID, expected))
	require.NoError(t, err)
	emptyBatch, err := codec.EncodeBatch()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload []byte
		wantErr error
	}{
		{
			name:    "too short",
			payload: []byte{1, 2},
			wantErr: codec.ErrMalformedPayload,
		},
		{
			name:    "unknown selector",
			payload: append([]byte{0xde, 0xad, 0xbe, 0xef}, valid[4:]...),
			wantErr: codec.ErrInvalidInstructionSelector,
		},
		{
			name:    "truncated envelope",
			payload: valid[:len(valid)-40],
			wantErr: codec.ErrMalformedPayload,
		},
		{
			name:    "trailing bytes",
			payload: append(append([]byte{}, valid...), make([]byte, 32)...),
			wantErr: codec.ErrMalformedPayload,
		},
		{
			name:    "empty batch",
			payload: emptyBatch,
			wantErr: codec.ErrMalformedPayload,
		},
		{
			name:    "body of the wrong kind",
			payload: append(sel(codec.KindProvideAccount), valid[4:]...),
			wantErr: codec.ErrMalformedPayload,
		},
		{
			name:    "nested batch",
			payload: mustBatchOfRaw(t, nested),
			wantErr: codec.ErrMalformedPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Decode(tt.payload)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestKindText(t *testing.T) {
	text, err := codec.KindDeposit.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "deposit", string(text))

	var k codec.Kind
	require.NoError(t, k.UnmarshalText([]byte("execute_on_account")))
	assert.Equal(t, codec.KindExecuteOnAccount, k)
	assert.Error(t, k.UnmarshalText([]byte("nope")))
}

func TestKindTextUnnamed(t *testing.T) {
	tests := []struct {
		name string
		kind codec.Kind
		text string
	}{
		{"zero", codec.Kind(0), "kind(0)"},
		{"unassigned", codec.Kind(42), "kind(42)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := tt.kind.MarshalText()
			require.NoError(t, err)
			assert.Equal(t, tt.text, string(text))

			k := codec.KindDeposit
			require.NoError(t, k.UnmarshalText(text))
			assert.Equal(t, tt.kind, k)
		})
	}

	var k codec.Kind
	for _, bad := range []string{"kind()", "kind(256)", "kind(-1)", "kind(1"} {
		assert.Error(t, k.UnmarshalText([]byte(bad)), bad)
	}
}

func sel(k codec.Kind) []byte {
	s := k.Selector()
	return s[:]
}

// mustBatchOfRaw wraps already encoded payloads in a batch envelope.
func mustBatchOfRaw(t *testing.T, items ...[]byte) []byte {
	t.Helper()
	packed, err := ledger.Arguments("bytes[]").Pack(items)
	require.NoError(t, err)
	return append(append([]byte{}, codec.BatchSelector[:]...), packed...)
}
