// Package principal defines the cross-chain identity that owns the intent
// behind relayed instructions.
package principal

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cyphera/remote-accounts/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyChain   = errors.New("principal chain reference is empty")
	ErrEmptyAccount = errors.New("principal account is empty")
	ErrMalformed    = errors.New("principal must be formatted as <chain>:<account>")
)

var saltArgs = ledger.Arguments("string", "string")

// Identity is an account reference on a remote chain. It determines the
// address of its delegate account but never the account's owner.
type Identity struct {
	ChainRef string `json:"chain_ref" yaml:"chain_ref"`
	Account  string `json:"account" yaml:"account"`
}

// New builds an identity from its parts.
func New(chainRef, account string) Identity {
	return Identity{ChainRef: chainRef, Account: account}
}

// Parse reads "<chain>:<account>". The last colon separates the parts so that
// chain references such as "eip155:1" survive.
func Parse(s string) (Identity, error) {
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Identity{}, ErrMalformed
	}
	id := Identity{ChainRef: s[:i], Account: s[i+1:]}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// Validate checks both parts are present.
func (id Identity) Validate() error {
	if id.ChainRef == "" {
		return ErrEmptyChain
	}
	if id.Account == "" {
		return ErrEmptyAccount
	}
	return nil
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id.ChainRef == "" && id.Account == ""
}

func (id Identity) String() string {
	return id.ChainRef + ":" + id.Account
}

// Salt is keccak256(abi.encode(chainRef, account)).
func (id Identity) Salt() common.Hash {
	packed, err := saltArgs.Pack(id.ChainRef, id.Account)
	if err != nil {
		// Packing two strings cannot fail.
		panic(fmt.Sprintf("principal: pack salt: %v", err))
	}
	return crypto.Keccak256Hash(packed)
}

// Hash is the bytes32 form used in signed witnesses.
func (id Identity) Hash() common.Hash {
	return id.Salt()
}
