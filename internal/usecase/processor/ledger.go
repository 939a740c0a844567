package processor

import "sync"

// Ledger records every key written during one request so the caller can
// reclaim them if the request fails. A nil *Ledger discards records.
type Ledger struct {
	mu   sync.Mutex
	keys []string
}

func NewLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) Record(key string) {
	if l == nil {
		return
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
}

func (l *Ledger) Keys() []string {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.keys...)
}
