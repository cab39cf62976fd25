package ownable_test

import (
	"testing"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type owned struct{}

func (owned) Construct(f *ledger.Frame) error {
	ownable.Init(f, f.Caller)
	return nil
}

func (owned) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	if err := ownable.RequireOwner(f); err != nil {
		return nil, err
	}
	ownable.Transfer(f, common.BytesToAddress(input))
	return nil, nil
}

var ownedCode = &ledger.Code{Name: "Owned", Version: "1"}

func TestOwnership(t *testing.T) {
	deployer := common.HexToAddress("0x01")
	stranger := common.HexToAddress("0x02")
	next := common.HexToAddress("0x03")
	target := common.HexToAddress("0xc0de")

	l := ledger.New()
	require.NoError(t, l.Install(deployer, target, ownedCode, owned{}))

	readOwner := func() common.Address {
		var owner common.Address
		require.NoError(t, l.View(target, func(f *ledger.Frame) error {
			owner = ownable.Owner(f)
			return nil
		}))
		return owner
	}
	assert.Equal(t, deployer, readOwner())

	receipt := l.Transact(stranger, func(f *ledger.Frame) error {
		_, err := f.Call(target, next.Bytes(), nil)
		return err
	})
	assert.ErrorIs(t, receipt.Err, ownable.ErrUnauthorizedCaller)
	assert.Equal(t, deployer, readOwner())

	receipt = l.Transact(deployer, func(f *ledger.Frame) error {
		_, err := f.Call(target, next.Bytes(), nil)
		return err
	})
	require.NoError(t, receipt.Err)
	assert.Equal(t, next, readOwner())
	require.Len(t, receipt.Logs, 1)
	assert.Equal(t, ownable.OwnershipTransferredEvent, receipt.Logs[0].Name)
	assert.Equal(t, ownable.OwnershipTransferred{Previous: deployer, New: next}, receipt.Logs[0].Data)
}
