// Package ledgertest provides small contracts and helpers for tests that run
// against a ledger.
package ledgertest

import (
	"math/big"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	CounterCode  = &ledger.Code{Name: "Counter", Version: "1", New: func() ledger.Contract { return &Counter{} }}
	RevertCode   = &ledger.Code{Name: "Reverter", Version: "1", New: func() ledger.Contract { return &Reverter{} }}
	ErrReverted  = ledger.NewError("Reverted()")
	countSlot    = common.Hash{}
	lastCallSlot = common.BigToHash(big.NewInt(1))
)

// Counter counts calls and remembers the last caller.
type Counter struct{}

func (Counter) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	count := new(big.Int).SetBytes(f.GetState(countSlot).Bytes())
	count.Add(count, big.NewInt(1))
	f.SetState(countSlot, common.BigToHash(count))
	f.SetState(lastCallSlot, common.BytesToHash(f.Caller.Bytes()))
	f.Emit("Counted", count.Uint64())
	return common.BigToHash(count).Bytes(), nil
}

// Reverter fails every call with ErrReverted.
type Reverter struct{}

func (Reverter) Run(*ledger.Frame, []byte) ([]byte, error) {
	return nil, ErrReverted
}

// Count reads the counter at addr.
func Count(l *ledger.Ledger, addr common.Address) uint64 {
	var n uint64
	_ = l.View(addr, func(f *ledger.Frame) error {
		n = new(big.Int).SetBytes(f.GetState(countSlot).Bytes()).Uint64()
		return nil
	})
	return n
}

// LastCaller reads the last caller recorded by the counter at addr.
func LastCaller(l *ledger.Ledger, addr common.Address) common.Address {
	var caller common.Address
	_ = l.View(addr, func(f *ledger.Frame) error {
		caller = common.BytesToAddress(f.GetState(lastCallSlot).Bytes())
		return nil
	})
	return caller
}

// Address returns a stable address for a test label.
func Address(label string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte(label))[12:])
}

// Deploy installs a fresh instance of code at the address derived from label.
func Deploy(l *ledger.Ledger, label string, code *ledger.Code) common.Address {
	addr := Address(label)
	if err := l.Install(Address("deployer"), addr, code, code.New()); err != nil {
		panic(err)
	}
	return addr
}
