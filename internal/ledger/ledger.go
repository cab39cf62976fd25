// Package ledger is an in-process arena that stands in for the destination
// chain. It keeps contracts at content addressed locations, journals every
// state change so call frames can be reverted atomically, and executes one
// transaction at a time.
package ledger

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cyphera/remote-accounts/internal/logger"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// MaxCallDepth mirrors the EVM call depth limit.
const MaxCallDepth = 1024

// Log is an event emitted by a contract during a transaction.
type Log struct {
	Address common.Address `json:"address"`
	Name    string         `json:"name"`
	Data    interface{}    `json:"data"`
}

// Receipt describes a finished transaction.
type Receipt struct {
	From   common.Address
	Logs   []Log
	Err    error
	Time   uint64
	Number uint64
}

// Succeeded reports whether the transaction committed.
func (r *Receipt) Succeeded() bool { return r.Err == nil }

// CollisionError is returned by Create2 when the derived address is occupied.
type CollisionError struct {
	Address common.Address
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("contract collision at %s", e.Address.Hex())
}

type stateObject struct {
	code     *Code
	contract Contract
	balance  *big.Int
	storage  map[common.Hash]common.Hash
}

func (o *stateObject) hasCode() bool { return o != nil && o.contract != nil }

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock makes every transaction take its block time from clock.
func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

// WithLogger overrides the logger.
func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.logger = log }
}

// Ledger holds world state. All mutation happens inside Transact.
type Ledger struct {
	mu      sync.Mutex
	objects map[common.Address]*stateObject
	journal []journalEntry
	logs    []Log
	time    uint64
	number  uint64
	clock   func() time.Time
	logger  *zap.Logger
}

// New creates an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		objects: make(map[common.Address]*stateObject),
		logger:  logger.Log,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// SetTime sets the block time used by subsequent transactions when no clock
// is configured.
func (l *Ledger) SetTime(ts uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.time = ts
}

// Time returns the current block time.
func (l *Ledger) Time() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.time
}

// Transact runs fn as a single transaction sent by from. Any error reverts
// every change made by fn. Transactions are strictly serialized.
func (l *Ledger) Transact(from common.Address, fn func(f *Frame) error) *Receipt {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.clock != nil {
		l.time = uint64(l.clock().Unix())
	}
	l.number++
	l.journal = l.journal[:0]
	l.logs = l.logs[:0]

	f := &Frame{ledger: l, Self: from, Caller: from, Value: new(big.Int)}
	err := fn(f)
	if err != nil {
		l.revertTo(0)
		l.logger.Debug("Transaction reverted",
			zap.String("from", from.Hex()),
			zap.Uint64("number", l.number),
			zap.Error(err),
		)
	}
	receipt := &Receipt{
		From:   from,
		Logs:   append([]Log(nil), l.logs...),
		Err:    err,
		Time:   l.time,
		Number: l.number,
	}
	l.journal = l.journal[:0]
	l.logs = l.logs[:0]
	return receipt
}

// View runs fn against the current state and discards every change.
func (l *Ledger) View(from common.Address, fn func(f *Frame) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := len(l.journal)
	logs := len(l.logs)
	f := &Frame{ledger: l, Self: from, Caller: from, Value: new(big.Int)}
	err := fn(f)
	l.revertTo(snap)
	l.logs = l.logs[:logs]
	return err
}

// Install places a contract at addr, running its constructor with deployer
// as caller. It is meant for genesis allocation and fails if addr has code.
func (l *Ledger) Install(deployer, addr common.Address, code *Code, contract Contract) error {
	receipt := l.Transact(deployer, func(f *Frame) error {
		return f.deploy(addr, code, contract)
	})
	return receipt.Err
}

// Mint credits native balance to addr outside of any call frame.
func (l *Ledger) Mint(addr common.Address, amount *big.Int) {
	l.Transact(addr, func(f *Frame) error {
		l.addBalance(addr, amount)
		return nil
	})
}

// Balance returns the native balance of addr.
func (l *Ledger) Balance(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance(addr)
}

// CodeHash returns the code identity at addr, or the zero hash.
func (l *Ledger) CodeHash(addr common.Address) common.Hash {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.codeHash(addr)
}

// Contract returns the contract instance at addr.
func (l *Ledger) Contract(addr common.Address) (Contract, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj := l.objects[addr]
	if !obj.hasCode() {
		return nil, false
	}
	return obj.contract, true
}

// Code returns the code deployed at addr.
func (l *Ledger) Code(addr common.Address) (*Code, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	obj := l.objects[addr]
	if !obj.hasCode() {
		return nil, false
	}
	return obj.code, true
}

func (l *Ledger) revertTo(id int) {
	for i := len(l.journal) - 1; i >= id; i-- {
		l.journal[i].revert(l)
	}
	l.journal = l.journal[:id]
}

func (l *Ledger) codeHash(addr common.Address) common.Hash {
	obj := l.objects[addr]
	if !obj.hasCode() {
		return common.Hash{}
	}
	return obj.code.Hash()
}

func (l *Ledger) balance(addr common.Address) *big.Int {
	if obj := l.objects[addr]; obj != nil && obj.balance != nil {
		return new(big.Int).Set(obj.balance)
	}
	return new(big.Int)
}

func (l *Ledger) addBalance(addr common.Address, amount *big.Int) {
	obj := l.objects[addr]
	if obj == nil {
		obj = &stateObject{balance: new(big.Int), storage: make(map[common.Hash]common.Hash)}
		l.objects[addr] = obj
		l.journal = append(l.journal, balanceChange{addr: addr, created: true})
	} else {
		l.journal = append(l.journal, balanceChange{addr: addr, prev: new(big.Int).Set(obj.balance)})
	}
	obj.balance = new(big.Int).Add(obj.balance, amount)
}

func (l *Ledger) subBalance(addr common.Address, amount *big.Int) error {
	obj := l.objects[addr]
	if obj == nil || obj.balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	l.journal = append(l.journal, balanceChange{addr: addr, prev: new(big.Int).Set(obj.balance)})
	obj.balance = new(big.Int).Sub(obj.balance, amount)
	return nil
}

func (l *Ledger) getState(addr common.Address, key common.Hash) common.Hash {
	if obj := l.objects[addr]; obj != nil {
		return obj.storage[key]
	}
	return common.Hash{}
}

func (l *Ledger) setState(addr common.Address, key, value common.Hash) {
	obj := l.objects[addr]
	if obj == nil {
		// Storage only exists for deployed contracts; frames never target
		// an empty address with writes.
		return
	}
	prev, existed := obj.storage[key]
	l.journal = append(l.journal, storageChange{addr: addr, key: key, prev: prev, existed: existed})
	obj.storage[key] = value
}

func (l *Ledger) emit(log Log) {
	l.logs = append(l.logs, log)
	l.journal = append(l.journal, logChange{})
}
