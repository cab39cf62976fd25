package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrDepth               = NewError("CallDepthExceeded()")
	ErrNoCode              = NewError("NoCode()")
	ErrCodeMismatch        = NewError("CodeMismatch()")
	ErrInsufficientBalance = NewError("InsufficientBalance()")
	ErrShortInput          = NewError("ShortInput()")
	ErrUnknownSelector     = NewError("UnknownSelector()")
	ErrSelfCallRequired    = NewError("SelfCallRequired()")
)

// revertSelector is the selector of the Error(string) revert encoding.
var revertSelector = crypto.Keccak256([]byte("Error(string)"))[:4]

var stringArgs = abi.Arguments{{Type: MustType("string")}}

// RevertDataError is implemented by errors that carry an ABI encoded revert
// payload.
type RevertDataError interface {
	error
	RevertData() []byte
}

// CustomError is an argument-less custom error identified by its signature.
// Instances are compared by identity so they work with errors.Is.
type CustomError struct {
	sig string
	id  [4]byte
}

// NewError declares an argument-less custom error, e.g. NewError("Unauthorized()").
func NewError(sig string) *CustomError {
	e := &CustomError{sig: sig}
	copy(e.id[:], crypto.Keccak256([]byte(sig))[:4])
	registerErrorSig(sig)
	return e
}

func (e *CustomError) Error() string      { return e.sig }
func (e *CustomError) RevertData() []byte { return common.CopyBytes(e.id[:]) }

// RevertError is returned when a call frame reverts. Data holds the raw revert
// payload that a caller would observe; Err keeps the Go error for errors.Is/As.
type RevertError struct {
	Data []byte
	Err  error
}

func (e *RevertError) Error() string {
	if e.Err == nil {
		return "execution reverted"
	}
	return "execution reverted: " + e.Err.Error()
}

func (e *RevertError) Unwrap() error { return e.Err }

func (e *RevertError) RevertData() []byte { return e.Data }

// Revert converts err into a *RevertError, keeping an existing revert payload.
func Revert(err error) *RevertError {
	if err == nil {
		return nil
	}
	if re, ok := err.(*RevertError); ok {
		return re
	}
	return &RevertError{Data: RevertData(err), Err: err}
}

// RevertData returns the ABI payload describing err. Errors without a custom
// encoding are reported as Error(string).
func RevertData(err error) []byte {
	if err == nil {
		return nil
	}
	var rd RevertDataError
	if errors.As(err, &rd) {
		return rd.RevertData()
	}
	packed, perr := stringArgs.Pack(err.Error())
	if perr != nil {
		return common.CopyBytes(revertSelector)
	}
	return append(common.CopyBytes(revertSelector), packed...)
}

// EncodeError packs a custom error declared in contractABI.
func EncodeError(contractABI abi.ABI, name string, args ...interface{}) []byte {
	e, ok := contractABI.Errors[name]
	if !ok {
		panic(fmt.Sprintf("ledger: error %q not declared in ABI", name))
	}
	packed, err := e.Inputs.Pack(args...)
	if err != nil {
		panic(fmt.Sprintf("ledger: packing error %q: %v", name, err))
	}
	return append(common.CopyBytes(e.ID[:4]), packed...)
}

var (
	errorSigsMu sync.RWMutex
	errorSigs   = map[[4]byte]string{}
)

func registerErrorSig(sig string) {
	var id [4]byte
	copy(id[:], crypto.Keccak256([]byte(sig))[:4])
	errorSigsMu.Lock()
	errorSigs[id] = sig
	errorSigsMu.Unlock()
}

// RegisterErrors records the custom errors of contractABI so that
// DescribeRevert can name them.
func RegisterErrors(contractABI abi.ABI) {
	for _, e := range contractABI.Errors {
		registerErrorSig(e.Sig)
	}
}

// DescribeRevert renders revert data for logs and API responses.
func DescribeRevert(data []byte) string {
	if len(data) == 0 {
		return "execution reverted"
	}
	if reason, err := abi.UnpackRevert(data); err == nil {
		return reason
	}
	if len(data) >= 4 {
		var id [4]byte
		copy(id[:], data[:4])
		errorSigsMu.RLock()
		sig, ok := errorSigs[id]
		errorSigsMu.RUnlock()
		if ok {
			if len(data) == 4 {
				return sig
			}
			return sig + " " + hexutil.Encode(data[4:])
		}
	}
	return "custom error " + hexutil.Encode(data)
}
