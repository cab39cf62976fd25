package bridge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	ErrAlreadyDelivered = errors.New("message already delivered")
	ErrInvalidMessage   = errors.New("invalid message")
)

// Message is a verified cross-chain message handed over by the relayer.
type Message struct {
	ID                 string         `json:"id"`
	SourceChain        string         `json:"source_chain"`
	SourceAddress      string         `json:"source_address"`
	DestinationAddress common.Address `json:"destination_address"`
	Payload            hexutil.Bytes  `json:"payload"`
}

// Validate checks the envelope. The payload itself is judged by the router.
func (m Message) Validate() error {
	var missing []string
	if strings.TrimSpace(m.ID) == "" {
		missing = append(missing, "id")
	}
	if m.SourceChain == "" {
		missing = append(missing, "source_chain")
	}
	if m.SourceAddress == "" {
		missing = append(missing, "source_address")
	}
	if m.DestinationAddress == (common.Address{}) {
		missing = append(missing, "destination_address")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidMessage, strings.Join(missing, ", "))
	}
	return nil
}
