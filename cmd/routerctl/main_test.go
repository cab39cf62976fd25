package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/helpers"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddress(t *testing.T) {
	factoryAddr := common.HexToAddress("0x00000000000000000000000000000000000fac01")
	var out bytes.Buffer
	require.NoError(t, run([]string{"address", "--factory", factoryAddr.Hex(), "--principal", "eip155:1:0xabc"}, nil, &out))

	want := factory.AddressFor(factoryAddr, principal.New("eip155:1", "0xabc"))
	assert.Equal(t, want.Hex(), strings.TrimSpace(out.String()))
}

func TestAddressErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "bad factory", args: []string{"address", "--factory", "nope", "--principal", "c:a"}},
		{name: "bad principal", args: []string{"address", "--factory", "0x00000000000000000000000000000000000fac01", "--principal", "nochain"}},
		{name: "unknown flag", args: []string{"address", "--owner", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, run(tt.args, nil, &bytes.Buffer{}))
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	id := common.BigToHash(common.Big1)
	expected := common.HexToAddress("0x00000000000000000000000000000000000d0001")
	owner := common.HexToAddress("0x00000000000000000000000000000000000b0002")

	input, err := json.Marshal([]codec.Instruction{
		codec.ProvideAccount(id, expected),
		codec.UpdateOwner(id, expected, owner),
	})
	require.NoError(t, err)

	var encoded bytes.Buffer
	require.NoError(t, run([]string{"encode"}, bytes.NewReader(input), &encoded))

	want, err := codec.EncodeBatch(codec.ProvideAccount(id, expected), codec.UpdateOwner(id, expected, owner))
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(want), strings.TrimSpace(encoded.String()))

	var decoded bytes.Buffer
	require.NoError(t, run([]string{"decode", strings.TrimSpace(encoded.String())}, nil, &decoded))
	var got []codec.Instruction
	require.NoError(t, json.Unmarshal(decoded.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, codec.KindUpdateOwner, got[1].Kind)
	assert.Equal(t, owner, got[1].NewOwner)
}

func TestEncodeSingleInstruction(t *testing.T) {
	id := common.BigToHash(common.Big2)
	expected := common.HexToAddress("0x00000000000000000000000000000000000d0001")
	input, err := json.Marshal(codec.ProvideAccount(id, expected))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run([]string{"encode"}, bytes.NewReader(input), &out))

	want, err := codec.Encode(codec.ProvideAccount(id, expected))
	require.NoError(t, err)
	assert.Equal(t, hexutil.Encode(want), strings.TrimSpace(out.String()))
}

func TestEncodeDecodeErrors(t *testing.T) {
	assert.Error(t, run([]string{"encode"}, strings.NewReader("[]"), &bytes.Buffer{}))
	assert.Error(t, run([]string{"encode"}, strings.NewReader("{"), &bytes.Buffer{}))
	assert.Error(t, run([]string{"decode"}, nil, &bytes.Buffer{}))
	assert.Error(t, run([]string{"decode", "0x01"}, nil, &bytes.Buffer{}))
	assert.Error(t, run([]string{"decode", "zz"}, nil, &bytes.Buffer{}))
}

func TestHashKey(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"hash-key", "--key", "rak_known"}, nil, &out))
	hash := strings.TrimSpace(strings.TrimPrefix(out.String(), "hash:"))
	assert.NoError(t, helpers.CompareAPIKeyHash("rak_known", hash))

	out.Reset()
	require.NoError(t, run([]string{"hash-key"}, nil, &out))
	assert.Contains(t, out.String(), "key:  rak_")
}

func TestUsage(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(nil, nil, &out))
	assert.Contains(t, out.String(), "Usage: routerctl")
	assert.Error(t, run([]string{"frobnicate"}, nil, &bytes.Buffer{}))
}
