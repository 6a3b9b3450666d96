package jobs

import "sync"

// AccountLocks serializes token refreshes per LinkedIn account. The sweep and
// the refresh job share one instance so a refresh token is never spent twice.
type AccountLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewAccountLocks() *AccountLocks {
	return &AccountLocks{locks: map[int64]*sync.Mutex{}}
}

func (l *AccountLocks) get(accountID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[accountID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[accountID] = m
	}
	return m
}
