package ledger

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Frame is the execution context of one call: Self is the executing
// contract, Caller the immediate sender.
type Frame struct {
	ledger *Ledger
	Self   common.Address
	Caller common.Address
	Value  *big.Int
	depth  int
}

// Logger returns the ledger logger annotated with the frame addresses.
func (f *Frame) Logger() *zap.Logger {
	return f.ledger.logger.With(zap.String("self", f.Self.Hex()), zap.String("caller", f.Caller.Hex()))
}

// Depth returns the call depth of the frame (0 for the transaction itself).
func (f *Frame) Depth() int { return f.depth }

// Time returns the block time of the running transaction.
func (f *Frame) Time() uint64 { return f.ledger.time }

// IsSelfCall reports whether the frame was entered by the contract itself.
func (f *Frame) IsSelfCall() bool { return f.Caller == f.Self }

// GetState reads a storage slot of the executing contract.
func (f *Frame) GetState(key common.Hash) common.Hash {
	return f.ledger.getState(f.Self, key)
}

// SetState writes a storage slot of the executing contract.
func (f *Frame) SetState(key, value common.Hash) {
	f.ledger.setState(f.Self, key, value)
}

// Emit records an event for the executing contract.
func (f *Frame) Emit(name string, data interface{}) {
	f.ledger.emit(Log{Address: f.Self, Name: name, Data: data})
}

// Balance returns the native balance of addr.
func (f *Frame) Balance(addr common.Address) *big.Int {
	return f.ledger.balance(addr)
}

// CodeHash returns the code identity deployed at addr.
func (f *Frame) CodeHash(addr common.Address) common.Hash {
	return f.ledger.codeHash(addr)
}

// HasCode reports whether a contract lives at addr.
func (f *Frame) HasCode(addr common.Address) bool {
	return f.ledger.objects[addr].hasCode()
}

// Snapshot returns an identifier for the current journal position.
func (f *Frame) Snapshot() int { return len(f.ledger.journal) }

// RevertToSnapshot undoes every change made after the snapshot was taken.
func (f *Frame) RevertToSnapshot(id int) { f.ledger.revertTo(id) }

// Call performs an ABI encoded call to addr, transferring value from the
// executing contract. A failing call leaves no trace and yields a
// *RevertError carrying the callee's revert payload.
func (f *Frame) Call(to common.Address, input []byte, value *big.Int) ([]byte, error) {
	if f.depth+1 > MaxCallDepth {
		return nil, Revert(ErrDepth)
	}
	if value == nil {
		value = new(big.Int)
	}
	snap := f.Snapshot()
	out, err := f.call(to, input, value)
	if err != nil {
		f.RevertToSnapshot(snap)
		return nil, Revert(err)
	}
	return out, nil
}

func (f *Frame) call(to common.Address, input []byte, value *big.Int) ([]byte, error) {
	if value.Sign() > 0 {
		if err := f.ledger.subBalance(f.Self, value); err != nil {
			return nil, err
		}
		f.ledger.addBalance(to, value)
	}
	obj := f.ledger.objects[to]
	if !obj.hasCode() {
		// Plain transfers to addresses without code always succeed.
		return nil, nil
	}
	callee := f.enter(to, value)
	return obj.contract.Run(callee, input)
}

func (f *Frame) enter(to common.Address, value *big.Int) *Frame {
	return &Frame{ledger: f.ledger, Self: to, Caller: f.Self, Value: value, depth: f.depth + 1}
}

// Create2 deploys a fresh instance of code at the address derived from the
// executing contract, salt and the code identity. When the address is already
// occupied a *CollisionError is returned and nothing changes.
func (f *Frame) Create2(code *Code, salt common.Hash) (common.Address, error) {
	if code.New == nil {
		return common.Address{}, fmt.Errorf("code %s cannot be instantiated", code)
	}
	addr := DeriveAddress(f.Self, salt, code)
	if f.HasCode(addr) {
		return common.Address{}, &CollisionError{Address: addr}
	}
	if f.depth+1 > MaxCallDepth {
		return common.Address{}, ErrDepth
	}
	snap := f.Snapshot()
	callee := f.enter(addr, new(big.Int))
	if err := callee.deploy(addr, code, code.New()); err != nil {
		f.RevertToSnapshot(snap)
		return common.Address{}, err
	}
	return addr, nil
}

// deploy places contract at addr and runs its constructor in f, whose caller
// is the deployer.
func (f *Frame) deploy(addr common.Address, code *Code, contract Contract) error {
	l := f.ledger
	prev := l.objects[addr]
	if prev.hasCode() {
		return &CollisionError{Address: addr}
	}
	obj := &stateObject{
		code:     code,
		contract: contract,
		balance:  new(big.Int),
		storage:  make(map[common.Hash]common.Hash),
	}
	if prev != nil {
		obj.balance = new(big.Int).Set(prev.balance)
	}
	l.objects[addr] = obj
	l.journal = append(l.journal, createChange{addr: addr, prev: prev})

	ctorFrame := f
	if f.Self != addr {
		ctorFrame = &Frame{ledger: l, Self: addr, Caller: f.Caller, Value: new(big.Int), depth: f.depth}
	}
	if ctor, ok := contract.(Constructor); ok {
		if err := ctor.Construct(ctorFrame); err != nil {
			return fmt.Errorf("construct %s at %s: %w", code, addr.Hex(), err)
		}
	}
	l.logger.Debug("Contract deployed",
		zap.String("code", code.String()),
		zap.String("address", addr.Hex()),
		zap.String("deployer", ctorFrame.Caller.Hex()),
	)
	return nil
}

// Invoke performs a typed call into the contract at to. The callee frame has
// the current contract as caller; fn's error reverts everything fn changed.
func Invoke[T any](f *Frame, to common.Address, fn func(c T, callee *Frame) error) error {
	if f.depth+1 > MaxCallDepth {
		return ErrDepth
	}
	obj := f.ledger.objects[to]
	if !obj.hasCode() {
		return fmt.Errorf("%w at %s", ErrNoCode, to.Hex())
	}
	c, ok := obj.contract.(T)
	if !ok {
		return fmt.Errorf("%w: %s at %s", ErrCodeMismatch, obj.code, to.Hex())
	}
	snap := f.Snapshot()
	if err := fn(c, f.enter(to, new(big.Int))); err != nil {
		f.RevertToSnapshot(snap)
		return err
	}
	return nil
}

// Isolate runs fn and reverts its changes if it fails.
func Isolate(f *Frame, fn func() error) error {
	snap := f.Snapshot()
	if err := fn(); err != nil {
		f.RevertToSnapshot(snap)
		return err
	}
	return nil
}
