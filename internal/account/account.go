// Package account implements the delegate account: a minimal owned contract
// that executes outbound call batches for its owner.
package account

import (
	"fmt"
	"math/big"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// CallExecutedEvent is emitted once per call of a successful batch.
const CallExecutedEvent = "CallExecuted"

// CallExecuted is the payload of CallExecutedEvent.
type CallExecuted struct {
	Index  int            `json:"index"`
	Target common.Address `json:"target"`
	Value  *big.Int       `json:"value"`
}

// ABI is the generic call surface shared by accounts and the factory.
var ABI = ledger.MustABI(`[
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"transferOwnership","stateMutability":"nonpayable",
	 "inputs":[{"name":"newOwner","type":"address"}],"outputs":[]},
	{"type":"function","name":"executeCalls","stateMutability":"payable",
	 "inputs":[{"name":"calls","type":"tuple[]","components":[
		{"name":"target","type":"address"},
		{"name":"data","type":"bytes"},
		{"name":"value","type":"uint256"}]}],
	 "outputs":[{"name":"results","type":"bytes[]"}]},
	{"type":"error","name":"CallFailed","inputs":[
		{"name":"index","type":"uint256"},
		{"name":"target","type":"address"},
		{"name":"data","type":"bytes"}]}
]`)

// Code is the code identity every genuine delegate account carries.
var Code = &ledger.Code{
	Name:    "DelegateAccount",
	Version: "1",
	New:     func() ledger.Contract { return &Account{} },
}

// CallFailedError aborts a batch. Data is the raw revert payload of the
// failing call.
type CallFailedError struct {
	Index  int
	Target common.Address
	Data   []byte
	err    error
}

func (e *CallFailedError) Error() string {
	return fmt.Sprintf("call %d to %s failed: %s", e.Index, e.Target.Hex(), ledger.DescribeRevert(e.Data))
}

func (e *CallFailedError) Unwrap() error { return e.err }

func (e *CallFailedError) RevertData() []byte {
	return ledger.EncodeError(ABI, "CallFailed", big.NewInt(int64(e.Index)), e.Target, e.Data)
}

// Executor runs call batches. Accounts and the factory both implement it.
type Executor interface {
	ownable.Ownable
	ExecuteCalls(f *ledger.Frame, calls []ledger.Call) ([][]byte, error)
}

// Account is a delegate account. All of its state lives in ledger storage.
type Account struct{}

var _ Executor = (*Account)(nil)

// Construct makes the deployer the first owner.
func (a *Account) Construct(f *ledger.Frame) error {
	ownable.Init(f, f.Caller)
	return nil
}

func (a *Account) Owner(f *ledger.Frame) common.Address {
	return ownable.Owner(f)
}

// ExecuteCalls runs calls in order on behalf of the owner.
func (a *Account) ExecuteCalls(f *ledger.Frame, calls []ledger.Call) ([][]byte, error) {
	if err := ownable.RequireOwner(f); err != nil {
		return nil, err
	}
	return Execute(f, calls)
}

// TransferOwnership hands the account to newOwner. The current owner may do
// so directly. The account itself may do so only towards the successor its
// current owner has designated.
func (a *Account) TransferOwnership(f *ledger.Frame, newOwner common.Address) error {
	return TransferOwnership(f, newOwner)
}

// Run dispatches ABI encoded calls. Empty input accepts native value.
func (a *Account) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	return Dispatch(a, f, input)
}

// Execute runs calls from the executing contract. The first failure reverts
// every earlier call and is reported as *CallFailedError.
func Execute(f *ledger.Frame, calls []ledger.Call) ([][]byte, error) {
	snap := f.Snapshot()
	results := make([][]byte, len(calls))
	for i, call := range calls {
		out, err := f.Call(call.Target, call.Data, call.Value)
		if err != nil {
			f.RevertToSnapshot(snap)
			f.Logger().Debug("Call batch aborted",
				zap.Int("index", i),
				zap.String("target", call.Target.Hex()),
				zap.Error(err),
			)
			return nil, &CallFailedError{Index: i, Target: call.Target, Data: ledger.RevertData(err), err: err}
		}
		if out == nil {
			out = []byte{}
		}
		results[i] = out
		value := call.Value
		if value == nil {
			value = new(big.Int)
		}
		f.Emit(CallExecutedEvent, CallExecuted{Index: i, Target: call.Target, Value: value})
	}
	return results, nil
}

// TransferOwnership applies the owner-or-successor rule to the executing
// contract.
func TransferOwnership(f *ledger.Frame, newOwner common.Address) error {
	owner := ownable.Owner(f)
	switch {
	case f.Caller == owner:
	case f.IsSelfCall():
		successor := ownable.QuerySuccessor(f, owner)
		if successor == (common.Address{}) {
			return ownable.ErrUnauthorizedCaller
		}
		if successor != newOwner {
			return &ownable.SuccessorMismatchError{Expected: successor, Actual: newOwner}
		}
	default:
		return ownable.ErrUnauthorizedCaller
	}
	ownable.Transfer(f, newOwner)
	return nil
}

// Dispatch serves the account ABI for any Executor.
func Dispatch(e Executor, f *ledger.Frame, input []byte) ([]byte, error) {
	method, args, err := ledger.Dispatch(ABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "owner":
		return method.Outputs.Pack(e.Owner(f))
	case "transferOwnership":
		return nil, e.TransferOwnership(f, args[0].(common.Address))
	case "executeCalls":
		calls, err := ledger.ToCalls(args[0])
		if err != nil {
			return nil, err
		}
		results, err := e.ExecuteCalls(f, calls)
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(results)
	}
	return nil, ledger.ErrUnknownSelector
}

// EncodeExecuteCalls packs an executeCalls invocation.
func EncodeExecuteCalls(calls []ledger.Call) ([]byte, error) {
	return ABI.Pack("executeCalls", ledger.NormalizeCalls(calls))
}

// EncodeTransferOwnership packs a transferOwnership invocation.
func EncodeTransferOwnership(newOwner common.Address) ([]byte, error) {
	return ABI.Pack("transferOwnership", newOwner)
}
