// Package codec encodes and decodes the instruction payloads relayed to the
// router.
//
// A payload is a 4 byte selector followed by
// abi.encode(bytes32 transactionId, address expectedAddress, bytes body).
// Several instructions may travel together inside the batch(bytes[])
// envelope.
package codec

import (
	"bytes"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/cyphera/remote-accounts/internal/constants"
	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidInstructionSelector = ledger.NewError("InvalidInstructionSelector()")
	ErrMalformedPayload           = ledger.NewError("MalformedPayload()")
)

// Kind discriminates instructions.
type Kind uint8

const (
	KindProvideAccount Kind = iota + 1
	KindExecuteOnAccount
	KindDeposit
	KindUpdateOwner
)

var kindNames = map[Kind]string{
	KindProvideAccount:   constants.KindProvideAccount,
	KindExecuteOnAccount: constants.KindExecuteOnAccount,
	KindDeposit:          constants.KindDeposit,
	KindUpdateOwner:      constants.KindUpdateOwner,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind maps a kind name back to its value. It also accepts the
// "kind(N)" form String produces for unnamed kinds.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	if raw, ok := strings.CutPrefix(name, "kind("); ok {
		if raw, ok = strings.CutSuffix(raw, ")"); ok {
			if n, err := strconv.ParseUint(raw, 10, 8); err == nil {
				return Kind(n), nil
			}
		}
	}
	return 0, fmt.Errorf("unknown instruction kind %q", name)
}

// Selector returns the 4 byte discriminator of the kind.
func (k Kind) Selector() [4]byte {
	return selectors[k]
}

var (
	selectors = map[Kind][4]byte{
		KindProvideAccount:   selectorOf("provideAccount(bytes32,address,bytes)"),
		KindExecuteOnAccount: selectorOf("executeOnAccount(bytes32,address,bytes)"),
		KindDeposit:          selectorOf("deposit(bytes32,address,bytes)"),
		KindUpdateOwner:      selectorOf("updateOwner(bytes32,address,bytes)"),
	}
	BatchSelector = selectorOf("batch(bytes[])")

	envelopeArgs = ledger.Arguments("bytes32", "address", "bytes")
	batchArgs    = ledger.Arguments("bytes[]")
	callsArgs    = abi.Arguments{{Type: ledger.CallsType}}
	depositArgs  = ledger.Arguments("address", "uint256", "uint256", "uint256", "address", "bytes32", "bytes")
	ownerArgs    = ledger.Arguments("address")
)

func selectorOf(sig string) [4]byte {
	var s [4]byte
	copy(s[:], crypto.Keccak256([]byte(sig))[:4])
	return s
}

// Deposit is the body of a deposit instruction. A deposit without a
// signature carries no permit.
type Deposit struct {
	Token     common.Address `json:"token"`
	Amount    *big.Int       `json:"amount"`
	Nonce     *big.Int       `json:"nonce"`
	Deadline  *big.Int       `json:"deadline"`
	Owner     common.Address `json:"owner"`
	Witness   common.Hash    `json:"witness"`
	Signature []byte         `json:"signature"`
}

// HasPermit reports whether the deposit carries a signed permit.
func (d *Deposit) HasPermit() bool {
	return d != nil && len(d.Signature) > 0
}

// Instruction is one decoded instruction.
type Instruction struct {
	Kind            Kind           `json:"kind"`
	TransactionID   common.Hash    `json:"transaction_id"`
	ExpectedAddress common.Address `json:"expected_address"`
	Calls           []ledger.Call  `json:"calls,omitempty"`
	Deposit         *Deposit       `json:"deposit,omitempty"`
	NewOwner        common.Address `json:"new_owner,omitempty"`
}

// ProvideAccount builds a provisioning instruction.
func ProvideAccount(id common.Hash, expected common.Address) Instruction {
	return Instruction{Kind: KindProvideAccount, TransactionID: id, ExpectedAddress: expected}
}

// ExecuteOnAccount builds an instruction running calls on the account.
func ExecuteOnAccount(id common.Hash, expected common.Address, calls ...ledger.Call) Instruction {
	return Instruction{Kind: KindExecuteOnAccount, TransactionID: id, ExpectedAddress: expected, Calls: calls}
}

// DepositInto builds a deposit instruction.
func DepositInto(id common.Hash, expected common.Address, d Deposit) Instruction {
	return Instruction{Kind: KindDeposit, TransactionID: id, ExpectedAddress: expected, Deposit: &d}
}

// UpdateOwner builds an ownership migration instruction.
func UpdateOwner(id common.Hash, expected, newOwner common.Address) Instruction {
	return Instruction{Kind: KindUpdateOwner, TransactionID: id, ExpectedAddress: expected, NewOwner: newOwner}
}

// Encode packs a single instruction.
func Encode(in Instruction) ([]byte, error) {
	sel, ok := selectors[in.Kind]
	if !ok {
		return nil, ErrInvalidInstructionSelector
	}
	body, err := encodeBody(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s body: %w", in.Kind, err)
	}
	packed, err := envelopeArgs.Pack([32]byte(in.TransactionID), in.ExpectedAddress, body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", in.Kind, err)
	}
	return append(sel[:], packed...), nil
}

// EncodeBatch packs several instructions into one batch payload.
func EncodeBatch(ins ...Instruction) ([]byte, error) {
	items := make([][]byte, len(ins))
	for i, in := range ins {
		item, err := Encode(in)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		items[i] = item
	}
	packed, err := batchArgs.Pack(items)
	if err != nil {
		return nil, err
	}
	return append(BatchSelector[:], packed...), nil
}

func encodeBody(in Instruction) ([]byte, error) {
	switch in.Kind {
	case KindProvideAccount:
		return []byte{}, nil
	case KindExecuteOnAccount:
		return callsArgs.Pack(ledger.NormalizeCalls(in.Calls))
	case KindDeposit:
		d := in.Deposit
		if d == nil {
			d = &Deposit{}
		}
		sig := d.Signature
		if sig == nil {
			sig = []byte{}
		}
		return depositArgs.Pack(d.Token, orZero(d.Amount), orZero(d.Nonce), orZero(d.Deadline), d.Owner, [32]byte(d.Witness), sig)
	case KindUpdateOwner:
		return ownerArgs.Pack(in.NewOwner)
	}
	return nil, ErrInvalidInstructionSelector
}

// Decode parses a single or batch payload. Any error means the whole payload
// is rejected.
func Decode(payload []byte) ([]Instruction, error) {
	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: payload shorter than a selector", ErrMalformedPayload)
	}
	if !bytes.Equal(payload[:4], BatchSelector[:]) {
		in, err := DecodeInstruction(payload)
		if err != nil {
			return nil, err
		}
		return []Instruction{in}, nil
	}

	values, err := unpackStrict(batchArgs, payload[4:])
	if err != nil {
		return nil, fmt.Errorf("%w: batch: %v", ErrMalformedPayload, err)
	}
	items := values[0].([][]byte)
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty batch", ErrMalformedPayload)
	}
	out := make([]Instruction, len(items))
	for i, item := range items {
		if len(item) >= 4 && bytes.Equal(item[:4], BatchSelector[:]) {
			return nil, fmt.Errorf("%w: nested batch at %d", ErrMalformedPayload, i)
		}
		in, err := DecodeInstruction(item)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		out[i] = in
	}
	return out, nil
}

// DecodeInstruction parses one selector-prefixed instruction.
func DecodeInstruction(payload []byte) (Instruction, error) {
	if len(payload) < 4 {
		return Instruction{}, fmt.Errorf("%w: payload shorter than a selector", ErrMalformedPayload)
	}
	var sel [4]byte
	copy(sel[:], payload[:4])
	kind, ok := kindOf(sel)
	if !ok {
		return Instruction{}, fmt.Errorf("%w: %x", ErrInvalidInstructionSelector, sel)
	}

	values, err := unpackStrict(envelopeArgs, payload[4:])
	if err != nil {
		return Instruction{}, fmt.Errorf("%w: %s envelope: %v", ErrMalformedPayload, kind, err)
	}
	in := Instruction{
		Kind:            kind,
		TransactionID:   common.Hash(values[0].([32]byte)),
		ExpectedAddress: values[1].(common.Address),
	}
	if err := decodeBody(&in, values[2].([]byte)); err != nil {
		return Instruction{}, fmt.Errorf("%w: %s body: %v", ErrMalformedPayload, kind, err)
	}
	return in, nil
}

func decodeBody(in *Instruction, body []byte) error {
	switch in.Kind {
	case KindProvideAccount:
		if len(body) != 0 {
			return fmt.Errorf("unexpected %d byte body", len(body))
		}
	case KindExecuteOnAccount:
		values, err := unpackStrict(callsArgs, body)
		if err != nil {
			return err
		}
		calls, err := ledger.ToCalls(values[0])
		if err != nil {
			return err
		}
		in.Calls = calls
	case KindDeposit:
		values, err := unpackStrict(depositArgs, body)
		if err != nil {
			return err
		}
		in.Deposit = &Deposit{
			Token:     values[0].(common.Address),
			Amount:    values[1].(*big.Int),
			Nonce:     values[2].(*big.Int),
			Deadline:  values[3].(*big.Int),
			Owner:     values[4].(common.Address),
			Witness:   common.Hash(values[5].([32]byte)),
			Signature: values[6].([]byte),
		}
	case KindUpdateOwner:
		values, err := unpackStrict(ownerArgs, body)
		if err != nil {
			return err
		}
		in.NewOwner = values[0].(common.Address)
	}
	return nil
}

// unpackStrict accepts only the canonical encoding: the data must re-encode
// to exactly the same bytes.
func unpackStrict(args abi.Arguments, data []byte) ([]interface{}, error) {
	values, err := args.Unpack(data)
	if err != nil {
		return nil, err
	}
	if len(values) != len(args) {
		return nil, fmt.Errorf("expected %d fields, got %d", len(args), len(values))
	}
	repacked, err := args.Pack(values...)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(repacked, data) {
		return nil, fmt.Errorf("non-canonical encoding")
	}
	return values, nil
}

func kindOf(sel [4]byte) (Kind, bool) {
	for k, s := range selectors {
		if s == sel {
			return k, true
		}
	}
	return 0, false
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
