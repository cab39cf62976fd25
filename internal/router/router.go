// Package router is the single authenticated entry point for relayed
// instructions. It checks message provenance, decodes instructions and
// drives the factory, accounts and the signature transfer service.
package router

import (
	"fmt"
	"strings"

	"github.com/cyphera/remote-accounts/internal/account"
	"github.com/cyphera/remote-accounts/internal/codec"
	"github.com/cyphera/remote-accounts/internal/factory"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/cyphera/remote-accounts/internal/permit2"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

const (
	OperationResultEvent = "OperationResult"
	SuccessorSetEvent    = "SuccessorSet"
)

// Code is the router code identity.
var Code = &ledger.Code{Name: "Router", Version: "1"}

var ABI = ledger.MustABI(`[
	{"type":"function","name":"execute","stateMutability":"nonpayable","inputs":[
		{"name":"sourceChain","type":"string"},
		{"name":"sourceAddress","type":"string"},
		{"name":"payload","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"setSuccessor","stateMutability":"nonpayable",
	 "inputs":[{"name":"newSuccessor","type":"address"}],"outputs":[]},
	{"type":"function","name":"successor","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"factory","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"gateway","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"sourceChain","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"string"}]},
	{"type":"error","name":"InvalidSourceChain","inputs":[{"name":"sourceChain","type":"string"}]}
]`)

var (
	ErrNotGateway            = ledger.NewError("NotGateway()")
	ErrInvalidSourceAddress  = ledger.NewError("InvalidSourceAddress()")
	ErrUnauthorizedPrincipal = ledger.NewError("UnauthorizedPrincipal()")
	ErrUnauthorizedRouter    = ledger.NewError("UnauthorizedRouter()")
	ErrSuccessorNotSet       = ledger.NewError("SuccessorNotSet()")
	ErrBatchAborted          = ledger.NewError("BatchAborted()")
	ErrInvalidWitness        = ledger.NewError("InvalidWitness()")
)

// InvalidSourceChainError rejects messages from an unexpected chain.
type InvalidSourceChainError struct {
	SourceChain string
}

func (e *InvalidSourceChainError) Error() string {
	return fmt.Sprintf("invalid source chain %q", e.SourceChain)
}

func (e *InvalidSourceChainError) RevertData() []byte {
	return ledger.EncodeError(ABI, "InvalidSourceChain", e.SourceChain)
}

// DepositWitnessTypeString is the witness type every deposit permit is signed
// with.
const DepositWitnessTypeString = "DepositWitness witness)DepositWitness(bytes32 principal,address account)TokenPermissions(address token,uint256 amount)"

var (
	successorSlot          = crypto.Keccak256Hash([]byte("remote-accounts.router.successor"))
	depositWitnessTypeHash = crypto.Keccak256Hash([]byte("DepositWitness(bytes32 principal,address account)"))
	depositWitnessArgs     = ledger.Arguments("bytes32", "bytes32", "address")

	createdResult = ledger.Arguments("bool")
	executeResult = ledger.Arguments("bool", "bytes[]")
	ownerResult   = ledger.Arguments("address")
)

// DepositWitness binds a permit to the principal and the account it funds.
func DepositWitness(p principal.Identity, account common.Address) common.Hash {
	packed, err := depositWitnessArgs.Pack([32]byte(depositWitnessTypeHash), [32]byte(p.Hash()), account)
	if err != nil {
		panic(fmt.Sprintf("router: pack deposit witness: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// Isolation selects how failures inside a batch message propagate.
type Isolation int

const (
	// IsolationPerInstruction reverts only the failing instruction.
	IsolationPerInstruction Isolation = iota
	// IsolationAtomic reverts every instruction of the message when one fails.
	IsolationAtomic
)

func (i Isolation) String() string {
	if i == IsolationAtomic {
		return "atomic"
	}
	return "per_instruction"
}

// ParseIsolation reads "per_instruction" (or "") and "atomic".
func ParseIsolation(s string) (Isolation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "per_instruction", "per-instruction":
		return IsolationPerInstruction, nil
	case "atomic":
		return IsolationAtomic, nil
	}
	return 0, fmt.Errorf("unknown isolation mode %q", s)
}

// OperationResult is the audit record emitted for every decoded instruction.
type OperationResult struct {
	ID              common.Hash    `json:"id"`
	Kind            codec.Kind     `json:"kind"`
	SourceChain     string         `json:"source_chain"`
	SourceAddress   string         `json:"source_address"`
	ExpectedAddress common.Address `json:"expected_address"`
	Success         bool           `json:"success"`
	Result          hexutil.Bytes  `json:"result"`
	Reason          string         `json:"reason,omitempty"`
}

// SuccessorSet is the payload of SuccessorSetEvent.
type SuccessorSet struct {
	Previous common.Address `json:"previous"`
	New      common.Address `json:"new"`
}

// Config holds the router immutables.
type Config struct {
	SourceChain       string
	Authority         common.Address
	Gateway           common.Address
	Factory           common.Address
	SignatureTransfer common.Address
	Isolation         Isolation
}

// Router is deployed once per bridge route. Only the successor is mutable.
type Router struct {
	cfg Config
}

func New(cfg Config) *Router {
	return &Router{cfg: cfg}
}

func (r *Router) SourceChain() string                  { return r.cfg.SourceChain }
func (r *Router) Authority() common.Address            { return r.cfg.Authority }
func (r *Router) Gateway() common.Address              { return r.cfg.Gateway }
func (r *Router) Factory() common.Address              { return r.cfg.Factory }
func (r *Router) SignatureTransfer() common.Address    { return r.cfg.SignatureTransfer }
func (r *Router) Isolation() Isolation                 { return r.cfg.Isolation }
func (r *Router) Owner(f *ledger.Frame) common.Address { return r.cfg.Authority }

// Successor returns the address designated by the authority, if any.
func (r *Router) Successor(f *ledger.Frame) common.Address {
	return common.BytesToAddress(f.GetState(successorSlot).Bytes())
}

// SetSuccessor designates the router that accounts may migrate to. Only the
// local authority may call it.
func (r *Router) SetSuccessor(f *ledger.Frame, successor common.Address) error {
	if f.Caller != r.cfg.Authority {
		return ownable.ErrUnauthorizedCaller
	}
	prev := r.Successor(f)
	f.SetState(successorSlot, common.BytesToHash(successor.Bytes()))
	f.Emit(SuccessorSetEvent, SuccessorSet{Previous: prev, New: successor})
	f.Logger().Info("Successor set",
		zap.String("previous", prev.Hex()),
		zap.String("successor", successor.Hex()),
	)
	return nil
}

// Execute processes one relayed message. Provenance and decoding errors fail
// the whole message. Otherwise every instruction yields one OperationResult,
// emitted as a log, whether it succeeded or not.
func (r *Router) Execute(f *ledger.Frame, sourceChain, sourceAddress string, payload []byte) ([]OperationResult, error) {
	if f.Caller != r.cfg.Gateway {
		return nil, ErrNotGateway
	}
	if sourceChain != r.cfg.SourceChain {
		return nil, &InvalidSourceChainError{SourceChain: sourceChain}
	}
	p := principal.New(sourceChain, sourceAddress)
	if p.Validate() != nil {
		return nil, ErrInvalidSourceAddress
	}
	instructions, err := codec.Decode(payload)
	if err != nil {
		return nil, err
	}

	log := f.Logger().With(logger.Principal(p))
	snap := f.Snapshot()
	results := make([]OperationResult, len(instructions))
	failed := -1
	for i, in := range instructions {
		results[i] = OperationResult{
			ID:              in.TransactionID,
			Kind:            in.Kind,
			SourceChain:     sourceChain,
			SourceAddress:   sourceAddress,
			ExpectedAddress: in.ExpectedAddress,
		}
		if failed >= 0 {
			abort(&results[i])
			continue
		}

		out, err := r.dispatch(f, p, in)
		if err != nil {
			data := ledger.RevertData(err)
			results[i].Result = data
			results[i].Reason = ledger.DescribeRevert(data)
			log.Warn("Instruction failed",
				zap.String("id", in.TransactionID.Hex()),
				logger.Kind(in.Kind),
				zap.String("expected_address", in.ExpectedAddress.Hex()),
				zap.Error(err),
			)
			if r.cfg.Isolation == IsolationAtomic {
				failed = i
			}
			continue
		}
		results[i].Success = true
		results[i].Result = out
		log.Debug("Instruction succeeded",
			zap.String("id", in.TransactionID.Hex()),
			logger.Kind(in.Kind),
		)
	}

	if failed >= 0 {
		f.RevertToSnapshot(snap)
		for i := 0; i < failed; i++ {
			abort(&results[i])
		}
	}
	for _, res := range results {
		f.Emit(OperationResultEvent, res)
	}
	return results, nil
}

func abort(res *OperationResult) {
	res.Success = false
	res.Result = ErrBatchAborted.RevertData()
	res.Reason = ErrBatchAborted.Error()
}

// dispatch runs one instruction as a call from the router to itself so that a
// failure reverts exactly what the instruction did.
func (r *Router) dispatch(f *ledger.Frame, p principal.Identity, in codec.Instruction) ([]byte, error) {
	var out []byte
	err := ledger.Invoke(f, f.Self, func(self *Router, inner *ledger.Frame) error {
		var err error
		out, err = self.handle(inner, p, in)
		return err
	})
	return out, err
}

func (r *Router) handle(f *ledger.Frame, p principal.Identity, in codec.Instruction) ([]byte, error) {
	if !f.IsSelfCall() {
		return nil, ledger.ErrSelfCallRequired
	}
	switch in.Kind {
	case codec.KindProvideAccount:
		created, err := r.resolveAccount(f, p, in.ExpectedAddress)
		if err != nil {
			return nil, err
		}
		return createdResult.Pack(created)
	case codec.KindExecuteOnAccount:
		return r.handleExecute(f, p, in)
	case codec.KindDeposit:
		return r.handleDeposit(f, p, in)
	case codec.KindUpdateOwner:
		return r.handleUpdateOwner(f, p, in)
	}
	return nil, codec.ErrInvalidInstructionSelector
}

func (r *Router) handleExecute(f *ledger.Frame, p principal.Identity, in codec.Instruction) ([]byte, error) {
	created, err := r.resolveAccount(f, p, in.ExpectedAddress)
	if err != nil {
		return nil, err
	}
	outputs := [][]byte{}
	if len(in.Calls) > 0 {
		err = ledger.Invoke(f, in.ExpectedAddress, func(acc account.Executor, callee *ledger.Frame) error {
			var err error
			outputs, err = acc.ExecuteCalls(callee, in.Calls)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	return executeResult.Pack(created, outputs)
}

func (r *Router) handleDeposit(f *ledger.Frame, p principal.Identity, in codec.Instruction) ([]byte, error) {
	fp, err := r.factoryPrincipal(f)
	if err != nil {
		return nil, err
	}
	if fp != p {
		return nil, ErrUnauthorizedPrincipal
	}

	if d := in.Deposit; d.HasPermit() {
		if d.Witness != DepositWitness(p, in.ExpectedAddress) {
			return nil, ErrInvalidWitness
		}
		permit := permit2.PermitTransferFrom{
			Permitted: permit2.TokenPermissions{Token: d.Token, Amount: d.Amount},
			Nonce:     d.Nonce,
			Deadline:  d.Deadline,
		}
		details := permit2.SignatureTransferDetails{To: in.ExpectedAddress, RequestedAmount: d.Amount}
		err := ledger.Invoke(f, r.cfg.SignatureTransfer, func(st permit2.SignatureTransfer, callee *ledger.Frame) error {
			return st.PermitWitnessTransferFrom(callee, permit, details, d.Owner, d.Witness, DepositWitnessTypeString, d.Signature)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to redeem deposit permit: %w", err)
		}
	}

	created, err := r.resolveAccount(f, p, in.ExpectedAddress)
	if err != nil {
		return nil, err
	}
	return createdResult.Pack(created)
}

func (r *Router) handleUpdateOwner(f *ledger.Frame, p principal.Identity, in codec.Instruction) ([]byte, error) {
	successor := r.Successor(f)
	if successor == (common.Address{}) {
		return nil, ErrSuccessorNotSet
	}
	if in.NewOwner != successor {
		return nil, &ownable.SuccessorMismatchError{Expected: successor, Actual: in.NewOwner}
	}

	if in.ExpectedAddress == r.cfg.Factory {
		fp, err := r.factoryPrincipal(f)
		if err != nil {
			return nil, err
		}
		if fp != p {
			return nil, ErrUnauthorizedPrincipal
		}
	} else {
		var owned bool
		err := ledger.Invoke(f, r.cfg.Factory, func(fa *factory.Factory, callee *ledger.Frame) error {
			owned = fa.Verify(callee, p, f.Self, in.ExpectedAddress)
			return nil
		})
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, &factory.InvalidAccountAtAddressError{Address: in.ExpectedAddress}
		}
	}

	err := ledger.Invoke(f, in.ExpectedAddress, func(target ownable.Ownable, callee *ledger.Frame) error {
		return target.TransferOwnership(callee, in.NewOwner)
	})
	if err != nil {
		return nil, err
	}
	return ownerResult.Pack(in.NewOwner)
}

// resolveAccount makes sure expected is the principal's account (or the
// factory itself) and that this router controls it.
func (r *Router) resolveAccount(f *ledger.Frame, p principal.Identity, expected common.Address) (bool, error) {
	var created bool
	err := ledger.Invoke(f, r.cfg.Factory, func(fa *factory.Factory, callee *ledger.Frame) error {
		if expected == callee.Self {
			if fa.Principal() != p {
				return ErrUnauthorizedPrincipal
			}
			if fa.Owner(callee) != f.Self {
				return ErrUnauthorizedRouter
			}
			return nil
		}
		var err error
		created, err = fa.Provide(callee, p, f.Self, expected)
		return err
	})
	return created, err
}

func (r *Router) factoryPrincipal(f *ledger.Frame) (principal.Identity, error) {
	var p principal.Identity
	err := ledger.Invoke(f, r.cfg.Factory, func(fa *factory.Factory, _ *ledger.Frame) error {
		p = fa.Principal()
		return nil
	})
	return p, err
}

func (r *Router) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	method, args, err := ledger.Dispatch(ABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "execute":
		_, err := r.Execute(f, args[0].(string), args[1].(string), args[2].([]byte))
		return nil, err
	case "setSuccessor":
		return nil, r.SetSuccessor(f, args[0].(common.Address))
	case "successor":
		return method.Outputs.Pack(r.Successor(f))
	case "owner":
		return method.Outputs.Pack(r.cfg.Authority)
	case "factory":
		return method.Outputs.Pack(r.cfg.Factory)
	case "gateway":
		return method.Outputs.Pack(r.cfg.Gateway)
	case "sourceChain":
		return method.Outputs.Pack(r.cfg.SourceChain)
	}
	return nil, ledger.ErrUnknownSelector
}

// ResultsFromLogs extracts the OperationResult logs of a receipt.
func ResultsFromLogs(logs []ledger.Log) []OperationResult {
	var out []OperationResult
	for _, log := range logs {
		if res, ok := log.Data.(OperationResult); ok && log.Name == OperationResultEvent {
			out = append(out, res)
		}
	}
	return out
}
