// Package permit2 is a reference signature transfer service with the
// semantics of Uniswap's Permit2 SignatureTransfer: EIP-712 signed permits
// with a witness, unordered nonces and deadlines.
package permit2

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Address is the canonical Permit2 deployment address.
var Address = common.HexToAddress("0x000000000022D473030F116dDEE9F6B43aC78BA3")

// Code is the code identity of the service.
var Code = &ledger.Code{Name: "Permit2", Version: "1"}

const witnessTypeHashStub = "PermitWitnessTransferFrom(TokenPermissions permitted,address spender,uint256 nonce,uint256 deadline,"

var (
	domainTypeHash           = crypto.Keccak256Hash([]byte("EIP712Domain(string name,uint256 chainId,address verifyingContract)"))
	nameHash                 = crypto.Keccak256Hash([]byte("Permit2"))
	tokenPermissionsTypeHash = crypto.Keccak256Hash([]byte("TokenPermissions(address token,uint256 amount)"))

	domainArgs      = ledger.Arguments("bytes32", "bytes32", "uint256", "address")
	permissionsArgs = ledger.Arguments("bytes32", "address", "uint256")
	witnessArgs     = ledger.Arguments("bytes32", "bytes32", "address", "uint256", "uint256", "bytes32")
	nonceSlotArgs   = ledger.Arguments("address", "uint256", "bytes32")
	nonceSlotTag    = crypto.Keccak256Hash([]byte("remote-accounts.permit2.nonceBitmap"))

	transferFromSelector = crypto.Keccak256([]byte("transferFrom(address,address,uint256)"))[:4]
	transferFromArgs     = ledger.Arguments("address", "address", "uint256")
)

var ABI = ledger.MustABI(`[
	{"type":"function","name":"DOMAIN_SEPARATOR","stateMutability":"view","inputs":[],
	 "outputs":[{"name":"","type":"bytes32"}]},
	{"type":"function","name":"nonceBitmap","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"},{"name":"wordPos","type":"uint256"}],
	 "outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"invalidateUnorderedNonces","stateMutability":"nonpayable",
	 "inputs":[{"name":"wordPos","type":"uint256"},{"name":"mask","type":"uint256"}],"outputs":[]},
	{"type":"error","name":"SignatureExpired","inputs":[{"name":"signatureDeadline","type":"uint256"}]},
	{"type":"error","name":"InvalidAmount","inputs":[{"name":"maxAmount","type":"uint256"}]}
]`)

var (
	ErrInvalidNonce           = ledger.NewError("InvalidNonce()")
	ErrInvalidSigner          = ledger.NewError("InvalidSigner()")
	ErrInvalidSignatureLength = ledger.NewError("InvalidSignatureLength()")
	ErrInvalidSignature       = ledger.NewError("InvalidSignature()")
)

// SignatureExpiredError is returned for permits past their deadline.
type SignatureExpiredError struct {
	Deadline *big.Int
}

func (e *SignatureExpiredError) Error() string {
	return fmt.Sprintf("signature expired at %s", e.Deadline)
}

func (e *SignatureExpiredError) RevertData() []byte {
	return ledger.EncodeError(ABI, "SignatureExpired", e.Deadline)
}

// InvalidAmountError is returned when more than the permitted amount is
// requested.
type InvalidAmountError struct {
	MaxAmount *big.Int
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("requested amount exceeds permitted %s", e.MaxAmount)
}

func (e *InvalidAmountError) RevertData() []byte {
	return ledger.EncodeError(ABI, "InvalidAmount", e.MaxAmount)
}

type TokenPermissions struct {
	Token  common.Address `json:"token"`
	Amount *big.Int       `json:"amount"`
}

type PermitTransferFrom struct {
	Permitted TokenPermissions `json:"permitted"`
	Nonce     *big.Int         `json:"nonce"`
	Deadline  *big.Int         `json:"deadline"`
}

type SignatureTransferDetails struct {
	To              common.Address `json:"to"`
	RequestedAmount *big.Int       `json:"requested_amount"`
}

// SignatureTransfer redeems signed permits. The spender bound into the
// signature is the caller of the frame.
type SignatureTransfer interface {
	PermitWitnessTransferFrom(f *ledger.Frame, permit PermitTransferFrom, details SignatureTransferDetails,
		owner common.Address, witness common.Hash, witnessTypeString string, signature []byte) error
}

// Permit2 is the reference SignatureTransfer deployed on the ledger.
type Permit2 struct {
	chainID *big.Int
}

var _ SignatureTransfer = (*Permit2)(nil)

func New(chainID *big.Int) *Permit2 {
	return &Permit2{chainID: new(big.Int).Set(chainID)}
}

// DomainSeparator returns the EIP-712 domain of the instance at f.Self.
func (p *Permit2) DomainSeparator(f *ledger.Frame) common.Hash {
	return DomainSeparator(p.chainID, f.Self)
}

func (p *Permit2) PermitWitnessTransferFrom(f *ledger.Frame, permit PermitTransferFrom, details SignatureTransferDetails,
	owner common.Address, witness common.Hash, witnessTypeString string, signature []byte) error {
	if permit.Deadline == nil || new(big.Int).SetUint64(f.Time()).Cmp(permit.Deadline) > 0 {
		return &SignatureExpiredError{Deadline: orZero(permit.Deadline)}
	}
	if details.RequestedAmount == nil || permit.Permitted.Amount == nil || details.RequestedAmount.Cmp(permit.Permitted.Amount) > 0 {
		return &InvalidAmountError{MaxAmount: orZero(permit.Permitted.Amount)}
	}
	if err := p.useUnorderedNonce(f, owner, permit.Nonce); err != nil {
		return err
	}

	structHash := HashPermitWitnessTransferFrom(permit, f.Caller, witness, witnessTypeString)
	digest := TypedDataHash(p.DomainSeparator(f), structHash)
	signer, err := Recover(digest, signature)
	if err != nil {
		return err
	}
	if signer != owner {
		return ErrInvalidSigner
	}

	input, err := transferFromArgs.Pack(owner, details.To, details.RequestedAmount)
	if err != nil {
		return err
	}
	if _, err := f.Call(permit.Permitted.Token, append(common.CopyBytes(transferFromSelector), input...), nil); err != nil {
		return err
	}
	f.Logger().Debug("Permit redeemed",
		zap.String("owner", owner.Hex()),
		zap.String("token", permit.Permitted.Token.Hex()),
		zap.String("to", details.To.Hex()),
		zap.String("amount", details.RequestedAmount.String()),
	)
	return nil
}

// NonceBitmap returns the used-nonce word of owner at wordPos.
func (p *Permit2) NonceBitmap(f *ledger.Frame, owner common.Address, wordPos *big.Int) *big.Int {
	return f.GetState(nonceSlot(owner, wordPos)).Big()
}

// InvalidateUnorderedNonces marks the bits in mask as used for the caller.
func (p *Permit2) InvalidateUnorderedNonces(f *ledger.Frame, wordPos, mask *big.Int) {
	slot := nonceSlot(f.Caller, wordPos)
	word := f.GetState(slot).Big()
	f.SetState(slot, common.BigToHash(word.Or(word, mask)))
}

func (p *Permit2) useUnorderedNonce(f *ledger.Frame, owner common.Address, nonce *big.Int) error {
	if nonce == nil || nonce.Sign() < 0 || nonce.BitLen() > 256 {
		return ErrInvalidNonce
	}
	wordPos := new(big.Int).Rsh(nonce, 8)
	bit := uint(new(big.Int).And(nonce, big.NewInt(0xff)).Uint64())

	slot := nonceSlot(owner, wordPos)
	word := f.GetState(slot).Big()
	if word.Bit(int(bit)) == 1 {
		return ErrInvalidNonce
	}
	f.SetState(slot, common.BigToHash(word.SetBit(word, int(bit), 1)))
	return nil
}

func (p *Permit2) Run(f *ledger.Frame, input []byte) ([]byte, error) {
	method, args, err := ledger.Dispatch(ABI, input)
	if err != nil {
		return nil, err
	}
	switch method.Name {
	case "DOMAIN_SEPARATOR":
		return method.Outputs.Pack([32]byte(p.DomainSeparator(f)))
	case "nonceBitmap":
		return method.Outputs.Pack(p.NonceBitmap(f, args[0].(common.Address), args[1].(*big.Int)))
	case "invalidateUnorderedNonces":
		p.InvalidateUnorderedNonces(f, args[0].(*big.Int), args[1].(*big.Int))
		return nil, nil
	}
	return nil, ledger.ErrUnknownSelector
}

// DomainSeparator is the EIP-712 domain hash of a Permit2 deployment.
func DomainSeparator(chainID *big.Int, verifyingContract common.Address) common.Hash {
	packed, err := domainArgs.Pack([32]byte(domainTypeHash), [32]byte(nameHash), chainID, verifyingContract)
	if err != nil {
		panic(fmt.Sprintf("permit2: pack domain: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// HashPermitWitnessTransferFrom is the EIP-712 struct hash of a witness
// permit for spender.
func HashPermitWitnessTransferFrom(permit PermitTransferFrom, spender common.Address, witness common.Hash, witnessTypeString string) common.Hash {
	typeHash := crypto.Keccak256Hash([]byte(witnessTypeHashStub + witnessTypeString))
	permissions, err := permissionsArgs.Pack([32]byte(tokenPermissionsTypeHash), permit.Permitted.Token, orZero(permit.Permitted.Amount))
	if err != nil {
		panic(fmt.Sprintf("permit2: pack token permissions: %v", err))
	}
	packed, err := witnessArgs.Pack([32]byte(typeHash), [32]byte(crypto.Keccak256Hash(permissions)), spender,
		orZero(permit.Nonce), orZero(permit.Deadline), [32]byte(witness))
	if err != nil {
		panic(fmt.Sprintf("permit2: pack permit: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// TypedDataHash combines a domain separator and a struct hash.
func TypedDataHash(domainSeparator, structHash common.Hash) common.Hash {
	return crypto.Keccak256Hash([]byte{0x19, 0x01}, domainSeparator.Bytes(), structHash.Bytes())
}

// Recover returns the signer of digest. Signatures use the 65 byte r||s||v
// layout with v in {27, 28}; v in {0, 1} is accepted too.
func Recover(digest common.Hash, signature []byte) (common.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignatureLength
	}
	sig := common.CopyBytes(signature)
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(digest.Bytes(), sig)
	if err != nil {
		return common.Address{}, ErrInvalidSignature
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces the owner signature for a witness permit redeemed by spender
// at the Permit2 deployment verifyingContract.
func Sign(key *ecdsa.PrivateKey, chainID *big.Int, verifyingContract common.Address, permit PermitTransferFrom,
	spender common.Address, witness common.Hash, witnessTypeString string) ([]byte, error) {
	structHash := HashPermitWitnessTransferFrom(permit, spender, witness, witnessTypeString)
	digest := TypedDataHash(DomainSeparator(chainID, verifyingContract), structHash)
	sig, err := crypto.Sign(digest.Bytes(), key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign permit: %w", err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}

func nonceSlot(owner common.Address, wordPos *big.Int) common.Hash {
	packed, _ := nonceSlotArgs.Pack(owner, wordPos, [32]byte(nonceSlotTag))
	return crypto.Keccak256Hash(packed)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
