package query

import (
	"fmt"
	"sync"

	"github.com/yaklabco/astnav/pkg/syntax"
)

// Ticket is carried by every query. A reply is applied only while its ticket
// is still current: an edit advances Epoch and a new command advances
// Command, so either one invalidates work issued under an older ticket.
type Ticket struct {
	Epoch   uint64
	Command uint64
}

func (t Ticket) String() string {
	return fmt.Sprintf("e%d/c%d", t.Epoch, t.Command)
}

// Epochs is the per-document cancellation clock.
type Epochs struct {
	mu      sync.Mutex
	epoch   uint64
	command uint64
}

// NewEpochs returns a clock at epoch zero.
func NewEpochs() *Epochs {
	return &Epochs{}
}

// Current returns the ticket new work would be issued under.
func (e *Epochs) Current() Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Ticket{Epoch: e.epoch, Command: e.command}
}

// NextCommand starts a new command, invalidating the previous command's
// ticket, and returns the new ticket.
func (e *Epochs) NextCommand() Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.command++
	return Ticket{Epoch: e.epoch, Command: e.command}
}

// Advance records a document change. Every outstanding ticket becomes
// stale, including the one of the command that made the edit; that command
// continues under the returned ticket.
func (e *Epochs) Advance() Ticket {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epoch++
	return Ticket{Epoch: e.epoch, Command: e.command}
}

// IsCurrent reports whether t matches the clock.
func (e *Epochs) IsCurrent(t Ticket) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return t.Epoch == e.epoch && t.Command == e.command
}

// Check returns syntax.ErrStaleEpoch if t is no longer current.
func (e *Epochs) Check(t Ticket) error {
	if !e.IsCurrent(t) {
		return fmt.Errorf("ticket %s: %w", t, syntax.ErrStaleEpoch)
	}
	return nil
}
