// Package factory deploys and validates delegate accounts at addresses
// derived only from a principal identity.
package factory

import (
	"errors"
	"fmt"

	"github.com/cyphera/remote-accounts/internal/account"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/cyphera/remote-accounts/internal/ownable"
	"github.com/cyphera/remote-accounts/internal/principal"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// AccountProvidedEvent is emitted by every successful provide.
const AccountProvidedEvent = "AccountProvided"

// AccountProvided is the payload of AccountProvidedEvent.
type AccountProvided struct {
	Principal principal.Identity `json:"principal"`
	Account   common.Address     `json:"account"`
	Owner     common.Address     `json:"owner"`
	Created   bool               `json:"created"`
}

// ABI is the factory-specific call surface. The account surface (owner,
// transferOwnership, executeCalls) is served as well.
var ABI = ledger.MustABI(`[
	{"type":"function","name":"provide","stateMutability":"nonpayable","inputs":[
		{"name":"chainRef","type":"string"},
		{"name":"account","type":"string"},
		{"name":"expectedOwner","type":"address"},
		{"name":"expectedAddress","type":"address"}],
	 "outputs":[{"name":"created","type":"bool"}]},
	{"type":"function","name":"provideFor","stateMutability":"nonpayable","inputs":[
		{"name":"chainRef","type":"string"},
		{"name":"account","type":"string"},
		{"name":"owner","type":"address"},
		{"name":"expectedAddress","type":"address"}],
	 "outputs":[{"name":"created","type":"bool"}]},
	{"type":"function","name":"verify","stateMutability":"view","inputs":[
		{"name":"chainRef","type":"string"},
		{"name":"account","type":"string"},
		{"name":"expectedOwner","type":"address"},
		{"name":"target","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"addressOf","stateMutability":"view","inputs":[
		{"name":"chainRef","type":"string"},
		{"name":"account","type":"string"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"principal","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"chainRef","type":"string"},{"name":"account","type":"string"}]},
	{"type":"function","name":"accountCodeHash","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"error","name":"AddressMismatch","inputs":[
		{"name":"expected","type":"address"},
		{"name":"actual","type":"address"}]},
	{"type":"error","name":"InvalidAccountAtAddress","inputs":[
		{"name":"account","type":"address"}]}
]`)

// Code is the code identity of the factory itself.
var Code = &ledger.Code{Name: "AccountFactory", Version: "1"}

// AddressMismatchError is returned when the derived address differs from the
// one the caller expected.
type AddressMismatchError struct {
	Expected common.Address
	Actual   common.Address
}

func (e *AddressMismatchError) Error() string {
	return fmt.Sprintf("address mismatch: expected %s, derived %s", e.Expected.Hex(), e.Actual.Hex())
}

func (e *AddressMismatchError) RevertData() []byte {
	return ledger.EncodeError(ABI, "AddressMismatch", e.Expected, e.Actual)
}

// InvalidAccountAtAddressError is returned when the derived address is held
// by something other than a genuine account with the expected owner.
type InvalidAccountAtAddressError struct {
	Address common.Address
}

func (e *InvalidAccountAtAddressError) Error() string {
	return "invalid account at " + e.Address.Hex()
}

func (e *InvalidAccountAtAddressError) RevertData() []byte {
	return ledger.EncodeError(ABI, "InvalidAccountAtAddress", e.Address)
}

// Factory provisions delegate accounts. It is an account itself, owned by the
// router and bound to the principal it was deployed for.
type Factory struct {
	principal   principal.Identity
	accountCode *ledger.Code
}

var _ account.Executor = (*Factory)(nil)

// New returns a factory for the given principal deploying account.Code.
func New(p principal.Identity) *Factory {
	return NewWithCode(p, account.Code)
}

// NewWithCode returns a factory deploying a custom account code.
func NewWithCode(p principal.Identity, code *ledger.Code) *Factory {
	return &Factory{principal: p, accountCode: code}
}

// Construct makes the deployer the first owner.
func (fa *Factory) Construct(f *ledger.Frame) error {
	ownable.Init(f, f.Caller)
	return nil
}

// Principal returns the identity the factory belongs to.
func (fa *Factory) Principal() principal.Identity { return fa.principal }

// AccountCodeHash returns the code identity accepted as a genuine account.
func (fa *Factory) AccountCodeHash() common.Hash { return fa.accountCode.Hash() }

// AddressOf derives the account address of p for the factory at f.Self.
func (fa *Factory) AddressOf(f *ledger.Frame, p principal.Identity) common.Address {
	return ledger.DeriveAddress(f.Self, p.Salt(), fa.accountCode)
}

// AddressFor derives the address of p's account under the factory at
// factoryAddr, using the default account code.
func AddressFor(factoryAddr common.Address, p principal.Identity) common.Address {
	return ledger.DeriveAddress(factoryAddr, p.Salt(), account.Code)
}

func (fa *Factory) Owner(f *ledger.Frame) common.Address {
	return ownable.Owner(f)
}

func (fa *Factory) ExecuteCalls(f *ledger.Frame, calls []ledger.Call) ([][]byte, error) {
	if err := ownable.RequireOwner(f); err != nil {
		return nil, err
	}
	return account.Execute(f, calls)
}

func (fa *Factory) TransferOwnership(f *ledger.Frame, newOwner common.Address) error {
	return account.TransferOwnership(f, newOwner)
}

// Provide ensures p's account exists at expectedAddress and is owned by
// expectedOwner. It reports whether the account was created by this call.
// Only the factory owner may call it.
func (fa *Factory) Provide(f *ledger.Frame, p principal.Identity, expectedOwner, expectedAddress common.Address) (bool, error) {
	if err := ownable.RequireOwner(f); err != nil {
		return false, err
	}
	return fa.provide(f, p, expectedOwner, expectedAddress)
}

// ProvideFor is Provide for an arbitrary owner. It is reachable only through
// the factory calling itself, which the factory owner can trigger on behalf of
// the factory principal with executeCalls.
func (fa *Factory) ProvideFor(f *ledger.Frame, p principal.Identity, owner, expectedAddress common.Address) (bool, error) {
	if !f.IsSelfCall() {
		return false, ledger.ErrSelfCallRequired
	}
	return fa.provide(f, p, owner, expectedAddress)
}

// provide leaves no trace when it fails.
func (fa *Factory) provide(f *ledger.Frame, p principal.Identity, owner, expectedAddress common.Address) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}
	var created bool
	err := ledger.Isolate(f, func() (err error) {
		created, err = fa.create(f, p, owner, expectedAddress)
		return err
	})
	return created, err
}

func (fa *Factory) create(f *ledger.Frame, p principal.Identity, owner, expectedAddress common.Address) (bool, error) {
	created := true
	addr, err := f.Create2(fa.accountCode, p.Salt())
	var collision *ledger.CollisionError
	switch {
	case errors.As(err, &collision):
		created = false
		addr = collision.Address
	case err != nil:
		return false, fmt.Errorf("failed to create account: %w", err)
	}

	if addr != expectedAddress {
		return false, &AddressMismatchError{Expected: expectedAddress, Actual: addr}
	}

	if created {
		err = ledger.Invoke(f, addr, func(acc ownable.Ownable, callee *ledger.Frame) error {
			return acc.TransferOwnership(callee, owner)
		})
		if err != nil {
			return false, fmt.Errorf("failed to hand over account: %w", err)
		}
	} else if !fa.valid(f, addr, owner) {
		return false, &InvalidAccountAtAddressError{Address: addr}
	}

	f.Emit(AccountProvidedEvent, AccountProvided{Principal: p, Account: addr, Owner: owner, Created: created})
	f.Logger().Debug("Account provided",
		logger.Principal(p),
		logger.Account(addr),
		zap.Bool("created", created),
	)
	return created, nil
}

// Verify reports whether address is p's genuine account owned by
// expectedOwner. It changes nothing.
func (fa *Factory) Verify(f *ledger.Frame, p principal.Identity, expectedOwner, address common.Address) bool {
	if p.Validate() != nil || fa.AddressOf(f, p) != address {
		return false
	}
	return fa.valid(f, address, expectedOwner)
}

// valid checks the occupant at addr carries the account code and reports
// expectedOwner as its owner.
func (fa *Factory) valid(f *ledger.Frame, addr, expectedOwner common.Address) bool {
	if f.CodeHash(addr) != fa.accountCode.Hash() {
		return false
	}
	var owner common.Address
	err := ledger.Invoke(f, addr, func(acc ownable.Ownable, callee *ledger.Frame) error {
		owner = acc.Owner(callee)
		return nil
	})
	return err == nil && owner == expectedOwner
}

// Run serves the factory and account ABIs.
func (fa *Factory) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, nil
	}
	method, args, err := ledger.Dispatch(ABI, input)
	if errors.Is(err, ledger.ErrUnknownSelector) {
		return account.Dispatch(fa, f, input)
	}
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "provide", "provideFor":
		p := principal.New(args[0].(string), args[1].(string))
		owner := args[2].(common.Address)
		expected := args[3].(common.Address)
		var created bool
		if method.Name == "provide" {
			created, err = fa.Provide(f, p, owner, expected)
		} else {
			created, err = fa.ProvideFor(f, p, owner, expected)
		}
		if err != nil {
			return nil, err
		}
		return method.Outputs.Pack(created)
	case "verify":
		p := principal.New(args[0].(string), args[1].(string))
		return method.Outputs.Pack(fa.Verify(f, p, args[2].(common.Address), args[3].(common.Address)))
	case "addressOf":
		return method.Outputs.Pack(fa.AddressOf(f, principal.New(args[0].(string), args[1].(string))))
	case "principal":
		return method.Outputs.Pack(fa.principal.ChainRef, fa.principal.Account)
	case "accountCodeHash":
		return method.Outputs.Pack([32]byte(fa.AccountCodeHash()))
	}
	return nil, ledger.ErrUnknownSelector
}

// EncodeProvideFor packs a provideFor invocation, used by the factory
// principal to provision accounts under a custom owner.
func EncodeProvideFor(p principal.Identity, owner, expectedAddress common.Address) ([]byte, error) {
	return ABI.Pack("provideFor", p.ChainRef, p.Account, owner, expectedAddress)
}
