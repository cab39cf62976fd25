package ledger

import (
	"bytes"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Call is one outbound call issued on behalf of an account.
type Call struct {
	Target common.Address `json:"target"`
	Data   []byte         `json:"data"`
	Value  *big.Int       `json:"value"`
}

// CallsType is the ABI type of a call batch: (address,bytes,uint256)[].
var CallsType = MustTupleType("tuple[]",
	abi.ArgumentMarshaling{Name: "target", Type: "address"},
	abi.ArgumentMarshaling{Name: "data", Type: "bytes"},
	abi.ArgumentMarshaling{Name: "value", Type: "uint256"},
)

// NormalizeCalls replaces nil values with zero so batches can be packed.
func NormalizeCalls(calls []Call) []Call {
	out := make([]Call, len(calls))
	for i, c := range calls {
		out[i] = c
		if out[i].Value == nil {
			out[i].Value = new(big.Int)
		}
		if out[i].Data == nil {
			out[i].Data = []byte{}
		}
	}
	return out
}

// ToCalls converts an unpacked (address,bytes,uint256)[] value.
func ToCalls(v interface{}) (calls []Call, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("convert calls: %v", r)
		}
	}()
	return *abi.ConvertType(v, new([]Call)).(*[]Call), nil
}

// MustABI parses a JSON ABI definition and registers its custom errors.
func MustABI(definition string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(definition))
	if err != nil {
		panic(fmt.Sprintf("ledger: invalid ABI: %v", err))
	}
	RegisterErrors(parsed)
	return parsed
}

// MustType builds an elementary ABI type.
func MustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(fmt.Sprintf("ledger: invalid type %q: %v", t, err))
	}
	return typ
}

// MustTupleType builds a tuple (or tuple array) ABI type.
func MustTupleType(t string, components ...abi.ArgumentMarshaling) abi.Type {
	typ, err := abi.NewType(t, "", components)
	if err != nil {
		panic(fmt.Sprintf("ledger: invalid tuple type %q: %v", t, err))
	}
	return typ
}

// Arguments builds an argument list from elementary type names.
func Arguments(types ...string) abi.Arguments {
	args := make(abi.Arguments, len(types))
	for i, t := range types {
		args[i] = abi.Argument{Type: MustType(t)}
	}
	return args
}

// Dispatch resolves the method addressed by input and unpacks its arguments.
func Dispatch(contractABI abi.ABI, input []byte) (*abi.Method, []interface{}, error) {
	if len(input) < 4 {
		return nil, nil, ErrShortInput
	}
	method, err := contractABI.MethodById(input[:4])
	if err != nil {
		return nil, nil, ErrUnknownSelector
	}
	args, err := method.Inputs.Unpack(input[4:])
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s arguments: %w", method.Name, err)
	}
	return method, args, nil
}

// HasSelector reports whether input starts with the selector of method.
func HasSelector(contractABI abi.ABI, method string, input []byte) bool {
	m, ok := contractABI.Methods[method]
	return ok && len(input) >= 4 && bytes.Equal(m.ID[:4], input[:4])
}

// ReturnAddress unpacks a single address return value.
func ReturnAddress(contractABI abi.ABI, method string, out []byte) (common.Address, error) {
	values, err := contractABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, err
	}
	if len(values) != 1 {
		return common.Address{}, fmt.Errorf("%s: expected 1 return value, got %d", method, len(values))
	}
	addr, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: unexpected return type %T", method, values[0])
	}
	return addr, nil
}
