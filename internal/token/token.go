// Package token is a minimal fungible token used as the asset moved by
// deposits.
package token

import (
	"fmt"
	"math/big"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	TransferEvent = "Transfer"
	ApprovalEvent = "Approval"
)

// Transfer is the payload of TransferEvent.
type Transfer struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *big.Int       `json:"value"`
}

// Approval is the payload of ApprovalEvent.
type Approval struct {
	Owner   common.Address `json:"owner"`
	Spender common.Address `json:"spender"`
	Value   *big.Int       `json:"value"`
}

var ABI = ledger.MustABI(`[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable",
	 "inputs":[{"name":"spender","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable",
	 "inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"value","type":"uint256"}],
	 "outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"mint","stateMutability":"nonpayable",
	 "inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[]},
	{"type":"error","name":"ERC20InsufficientBalance","inputs":[
		{"name":"sender","type":"address"},{"name":"balance","type":"uint256"},{"name":"needed","type":"uint256"}]},
	{"type":"error","name":"ERC20InsufficientAllowance","inputs":[
		{"name":"spender","type":"address"},{"name":"allowance","type":"uint256"},{"name":"needed","type":"uint256"}]}
]`)

var (
	ErrInvalidReceiver = ledger.NewError("ERC20InvalidReceiver()")
	ErrNotMinter       = ledger.NewError("NotMinter()")
)

// Code is the token code identity.
var Code = &ledger.Code{Name: "ERC20", Version: "1"}

var (
	minterSlot = crypto.Keccak256Hash([]byte("remote-accounts.token.minter"))
	supplySlot = crypto.Keccak256Hash([]byte("remote-accounts.token.supply"))
	slotArgs   = ledger.Arguments("address", "uint256")
	pairArgs   = ledger.Arguments("address", "address", "uint256")
)

// InsufficientBalanceError mirrors ERC20InsufficientBalance.
type InsufficientBalanceError struct {
	Sender  common.Address
	Balance *big.Int
	Needed  *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: have %s, need %s", e.Sender.Hex(), e.Balance, e.Needed)
}

func (e *InsufficientBalanceError) RevertData() []byte {
	return ledger.EncodeError(ABI, "ERC20InsufficientBalance", e.Sender, e.Balance, e.Needed)
}

// InsufficientAllowanceError mirrors ERC20InsufficientAllowance.
type InsufficientAllowanceError struct {
	Spender   common.Address
	Allowance *big.Int
	Needed    *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance for %s: have %s, need %s", e.Spender.Hex(), e.Allowance, e.Needed)
}

func (e *InsufficientAllowanceError) RevertData() []byte {
	return ledger.EncodeError(ABI, "ERC20InsufficientAllowance", e.Spender, e.Allowance, e.Needed)
}

// Token keeps balances and allowances in ledger storage. The deployer is the
// only minter.
type Token struct {
	name     string
	symbol   string
	decimals uint8
}

func New(name, symbol string, decimals uint8) *Token {
	return &Token{name: name, symbol: symbol, decimals: decimals}
}

func (t *Token) Construct(f *ledger.Frame) error {
	f.SetState(minterSlot, common.BytesToHash(f.Caller.Bytes()))
	return nil
}

func (t *Token) BalanceOf(f *ledger.Frame, account common.Address) *big.Int {
	return f.GetState(balanceSlot(account)).Big()
}

func (t *Token) Allowance(f *ledger.Frame, owner, spender common.Address) *big.Int {
	return f.GetState(allowanceSlot(owner, spender)).Big()
}

func (t *Token) TotalSupply(f *ledger.Frame) *big.Int {
	return f.GetState(supplySlot).Big()
}

func (t *Token) Transfer(f *ledger.Frame, to common.Address, value *big.Int) error {
	return t.move(f, f.Caller, to, value)
}

func (t *Token) Approve(f *ledger.Frame, spender common.Address, value *big.Int) error {
	f.SetState(allowanceSlot(f.Caller, spender), common.BigToHash(value))
	f.Emit(ApprovalEvent, Approval{Owner: f.Caller, Spender: spender, Value: new(big.Int).Set(value)})
	return nil
}

// TransferFrom moves value from owner using the caller's allowance.
func (t *Token) TransferFrom(f *ledger.Frame, from, to common.Address, value *big.Int) error {
	allowance := t.Allowance(f, from, f.Caller)
	if allowance.Cmp(value) < 0 {
		return &InsufficientAllowanceError{Spender: f.Caller, Allowance: allowance, Needed: value}
	}
	f.SetState(allowanceSlot(from, f.Caller), common.BigToHash(allowance.Sub(allowance, value)))
	return t.move(f, from, to, value)
}

func (t *Token) Mint(f *ledger.Frame, to common.Address, value *big.Int) error {
	if common.BytesToAddress(f.GetState(minterSlot).Bytes()) != f.Caller {
		return ErrNotMinter
	}
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	f.SetState(supplySlot, common.BigToHash(new(big.Int).Add(t.TotalSupply(f), value)))
	f.SetState(balanceSlot(to), common.BigToHash(new(big.Int).Add(t.BalanceOf(f, to), value)))
	f.Emit(TransferEvent, Transfer{To: to, Value: new(big.Int).Set(value)})
	return nil
}

func (t *Token) move(f *ledger.Frame, from, to common.Address, value *big.Int) error {
	if to == (common.Address{}) {
		return ErrInvalidReceiver
	}
	balance := t.BalanceOf(f, from)
	if balance.Cmp(value) < 0 {
		return &InsufficientBalanceError{Sender: from, Balance: balance, Needed: value}
	}
	f.SetState(balanceSlot(from), common.BigToHash(balance.Sub(balance, value)))
	f.SetState(balanceSlot(to), common.BigToHash(new(big.Int).Add(t.BalanceOf(f, to), value)))
	f.Emit(TransferEvent, Transfer{From: from, To: to, Value: new(big.Int).Set(value)})
	return nil
}

func (t *Token) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	method, args, err := ledger.Dispatch(ABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "name":
		return method.Outputs.Pack(t.name)
	case "symbol":
		return method.Outputs.Pack(t.symbol)
	case "decimals":
		return method.Outputs.Pack(t.decimals)
	case "totalSupply":
		return method.Outputs.Pack(t.TotalSupply(f))
	case "balanceOf":
		return method.Outputs.Pack(t.BalanceOf(f, args[0].(common.Address)))
	case "allowance":
		return method.Outputs.Pack(t.Allowance(f, args[0].(common.Address), args[1].(common.Address)))
	case "transfer":
		err = t.Transfer(f, args[0].(common.Address), args[1].(*big.Int))
	case "approve":
		err = t.Approve(f, args[0].(common.Address), args[1].(*big.Int))
	case "transferFrom":
		err = t.TransferFrom(f, args[0].(common.Address), args[1].(common.Address), args[2].(*big.Int))
	case "mint":
		return nil, t.Mint(f, args[0].(common.Address), args[1].(*big.Int))
	default:
		return nil, ledger.ErrUnknownSelector
	}
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(true)
}

func balanceSlot(account common.Address) common.Hash {
	packed, _ := slotArgs.Pack(account, big.NewInt(0))
	return crypto.Keccak256Hash(packed)
}

func allowanceSlot(owner, spender common.Address) common.Hash {
	packed, _ := pairArgs.Pack(owner, spender, big.NewInt(1))
	return crypto.Keccak256Hash(packed)
}

// EncodeTransfer packs a transfer call, handy for executeCalls batches.
func EncodeTransfer(to common.Address, value *big.Int) ([]byte, error) {
	return ABI.Pack("transfer", to, value)
}

// EncodeApprove packs an approve call.
func EncodeApprove(spender common.Address, value *big.Int) ([]byte, error) {
	return ABI.Pack("approve", spender, value)
}

// EncodeTransferFrom packs a transferFrom call.
func EncodeTransferFrom(from, to common.Address, value *big.Int) ([]byte, error) {
	return ABI.Pack("transferFrom", from, to, value)
}

// BalanceOf reads a balance outside of any transaction.
func BalanceOf(l *ledger.Ledger, token, account common.Address) (*big.Int, error) {
	var balance *big.Int
	err := l.View(account, func(f *ledger.Frame) error {
		return ledger.Invoke(f, token, func(t *Token, callee *ledger.Frame) error {
			balance = t.BalanceOf(callee, account)
			return nil
		})
	})
	return balance, err
}
