package session

import (
	"sync"
	"time"
)

type result struct {
	msg *Message
	err error
}

// pendingTable correlates outstanding requests with their responses.
// Every entry expires after the table timeout; resolving or expiring an entry
// removes it, so each request completes exactly once.
type pendingTable struct {
	mu      sync.Mutex
	timeout time.Duration
	entries map[int64]*pendingEntry
	closed  error
}

type pendingEntry struct {
	ch    chan result
	timer *time.Timer
}

func newPendingTable(timeout time.Duration) *pendingTable {
	return &pendingTable{
		timeout: timeout,
		entries: make(map[int64]*pendingEntry),
	}
}

// insert registers id and returns the channel its result will be delivered on.
func (p *pendingTable) insert(id int64) <-chan result {
	ch := make(chan result, 1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed != nil {
		ch <- result{err: p.closed}
		return ch
	}

	entry := &pendingEntry{ch: ch}
	entry.timer = time.AfterFunc(p.timeout, func() {
		p.expire(id, ErrProtocolTimeout)
	})
	p.entries[id] = entry
	return ch
}

// resolve delivers msg to the request waiting on id. It reports false when
// no such request is pending (unknown, already expired or already resolved).
func (p *pendingTable) resolve(id int64, msg *Message) bool {
	entry := p.take(id)
	if entry == nil {
		return false
	}
	entry.ch <- result{msg: msg}
	return true
}

// expire fails the request waiting on id with err.
func (p *pendingTable) expire(id int64, err error) bool {
	entry := p.take(id)
	if entry == nil {
		return false
	}
	entry.ch <- result{err: err}
	return true
}

// failAll fails every pending request with err and rejects future inserts.
func (p *pendingTable) failAll(err error) {
	p.mu.Lock()
	entries := p.entries
	p.entries = make(map[int64]*pendingEntry)
	p.closed = err
	p.mu.Unlock()

	for _, entry := range entries {
		entry.timer.Stop()
		entry.ch <- result{err: err}
	}
}

func (p *pendingTable) len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *pendingTable) take(id int64) *pendingEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[id]
	if !ok {
		return nil
	}
	delete(p.entries, id)
	entry.timer.Stop()
	return entry
}
