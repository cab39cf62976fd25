package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// journalEntry is a modification that can be undone.
type journalEntry interface {
	revert(l *Ledger)
}

type createChange struct {
	addr common.Address
	prev *stateObject
}

func (c createChange) revert(l *Ledger) {
	if c.prev == nil {
		delete(l.objects, c.addr)
		return
	}
	l.objects[c.addr] = c.prev
}

type storageChange struct {
	addr    common.Address
	key     common.Hash
	prev    common.Hash
	existed bool
}

func (c storageChange) revert(l *Ledger) {
	obj := l.objects[c.addr]
	if obj == nil {
		return
	}
	if c.existed {
		obj.storage[c.key] = c.prev
	} else {
		delete(obj.storage, c.key)
	}
}

type balanceChange struct {
	addr common.Address
	prev *big.Int
	// created marks an entry that only existed because of this change.
	created bool
}

func (c balanceChange) revert(l *Ledger) {
	if c.created {
		delete(l.objects, c.addr)
		return
	}
	if obj := l.objects[c.addr]; obj != nil {
		obj.balance = c.prev
	}
}

type logChange struct{}

func (logChange) revert(l *Ledger) {
	if len(l.logs) > 0 {
		l.logs = l.logs[:len(l.logs)-1]
	}
}
