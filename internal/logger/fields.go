package logger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Field names shared by every component that logs relayed traffic, so that
// one message can be followed from the queue consumer to the ledger.
const (
	FieldChainID       = "chain_id"
	FieldSourceChain   = "source_chain"
	FieldSourceAddress = "source_address"
	FieldMessageID     = "message_id"
	FieldRouter        = "router"
	FieldFactory       = "factory"
	FieldPrincipal     = "principal"
	FieldTransactionID = "transaction_id"
	FieldKind          = "kind"
	FieldAccount       = "account"
)

func MessageID(id string) zap.Field { return zap.String(FieldMessageID, id) }

func SourceChain(chain string) zap.Field { return zap.String(FieldSourceChain, chain) }

func SourceAddress(addr string) zap.Field { return zap.String(FieldSourceAddress, addr) }

func Router(addr common.Address) zap.Field { return zap.String(FieldRouter, addr.Hex()) }

func Factory(addr common.Address) zap.Field { return zap.String(FieldFactory, addr.Hex()) }

func Account(addr common.Address) zap.Field { return zap.String(FieldAccount, addr.Hex()) }

// Principal logs an identity in its "chainRef:account" form.
func Principal(p fmt.Stringer) zap.Field { return zap.Stringer(FieldPrincipal, p) }

func TransactionID(id common.Hash) zap.Field { return zap.String(FieldTransactionID, id.Hex()) }

// Kind logs an instruction kind by name.
func Kind(k fmt.Stringer) zap.Field { return zap.Stringer(FieldKind, k) }

func ChainID(id *big.Int) zap.Field {
	if id == nil {
		return zap.Skip()
	}
	return zap.String(FieldChainID, id.String())
}

// WithDeployment rebinds the global logger to the deployed chain. Loggers
// derived before the call keep their old context.
func WithDeployment(chainID *big.Int, sourceChain string, router common.Address) *zap.Logger {
	Log = Log.With(ChainID(chainID), SourceChain(sourceChain), Router(router))
	return Log
}
