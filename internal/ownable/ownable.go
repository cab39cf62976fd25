// Package ownable implements the single-owner capability shared by the
// factory, delegate accounts and anything else that can be migrated.
package ownable

import (
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// OwnerSlot is the storage slot holding the owner address.
var OwnerSlot = crypto.Keccak256Hash([]byte("remote-accounts.ownable.owner"))

var ErrUnauthorizedCaller = ledger.NewError("UnauthorizedCaller()")

// OwnershipTransferredEvent is the log name emitted on every owner change.
const OwnershipTransferredEvent = "OwnershipTransferred"

// OwnershipTransferred is the payload of OwnershipTransferredEvent.
type OwnershipTransferred struct {
	Previous common.Address `json:"previous"`
	New      common.Address `json:"new"`
}

// Ownable is implemented by contracts whose ownership can be reassigned.
type Ownable interface {
	Owner(f *ledger.Frame) common.Address
	TransferOwnership(f *ledger.Frame, newOwner common.Address) error
}

// Owner reads the owner of the executing contract.
func Owner(f *ledger.Frame) common.Address {
	return common.BytesToAddress(f.GetState(OwnerSlot).Bytes())
}

// Init sets the first owner. It is only meant for constructors.
func Init(f *ledger.Frame, owner common.Address) {
	set(f, common.Address{}, owner)
}

// RequireOwner fails unless the frame was entered by the current owner.
func RequireOwner(f *ledger.Frame) error {
	if f.Caller != Owner(f) {
		return ErrUnauthorizedCaller
	}
	return nil
}

// Transfer moves ownership to newOwner without any authorization check.
// Callers enforce who may trigger it.
func Transfer(f *ledger.Frame, newOwner common.Address) {
	set(f, Owner(f), newOwner)
}

func set(f *ledger.Frame, prev, next common.Address) {
	f.SetState(OwnerSlot, common.BytesToHash(next.Bytes()))
	f.Emit(OwnershipTransferredEvent, OwnershipTransferred{Previous: prev, New: next})
}

var errorsABI = ledger.MustABI(`[
	{"type":"error","name":"UnauthorizedCaller","inputs":[]},
	{"type":"error","name":"SuccessorMismatch","inputs":[
		{"name":"expected","type":"address"},
		{"name":"actual","type":"address"}
	]}
]`)

var successorSelector = crypto.Keccak256([]byte("successor()"))[:4]

// SuccessorMismatchError reports a transfer to an owner that was not the
// designated successor.
type SuccessorMismatchError struct {
	Expected common.Address
	Actual   common.Address
}

func (e *SuccessorMismatchError) Error() string {
	return "successor mismatch: expected " + e.Expected.Hex() + ", got " + e.Actual.Hex()
}

func (e *SuccessorMismatchError) RevertData() []byte {
	return ledger.EncodeError(errorsABI, "SuccessorMismatch", e.Expected, e.Actual)
}

// QuerySuccessor asks the contract at owner for its designated successor.
// Owners without code, or without a successor() view, report the zero address.
func QuerySuccessor(f *ledger.Frame, owner common.Address) common.Address {
	if !f.HasCode(owner) {
		return common.Address{}
	}
	out, err := f.Call(owner, successorSelector, nil)
	if err != nil || len(out) < 32 {
		return common.Address{}
	}
	return common.BytesToAddress(out[:32])
}
