package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Contract is a component living at a ledger address. Run handles ABI encoded
// calls arriving through Frame.Call; typed callers use Invoke instead.
type Contract interface {
	Run(f *Frame, input []byte) ([]byte, error)
}

// Constructor is implemented by contracts that initialise state when they are
// placed on the ledger. The frame's caller is the deployer.
type Constructor interface {
	Construct(f *Frame) error
}

// Code describes a deployable contract. Its hash plays the role of the init
// code hash: two contracts created from the same Code share the same identity.
type Code struct {
	Name    string
	Version string

	// New returns a fresh instance. Required for Create2, optional for Install.
	New func() Contract
}

// Hash returns the code identity.
func (c *Code) Hash() common.Hash {
	return crypto.Keccak256Hash([]byte(c.Name), []byte{0}, []byte(c.Version))
}

func (c *Code) String() string {
	return c.Name + "@" + c.Version
}

// DeriveAddress computes the content addressed location of code deployed by
// deployer with the given salt. It does not touch any state.
func DeriveAddress(deployer common.Address, salt common.Hash, code *Code) common.Address {
	return crypto.CreateAddress2(deployer, salt, code.Hash().Bytes())
}
