package services

import (
	"sync"

	"github.com/soccerhub/league-manager/brackets"
)

// DivisionLocker serializes mutations per division. Result recording,
// standings recomputation and bracket advancement form a multi-step
// derived-state update that must observe a consistent match set, so there
// is a single logical writer per division while reads stay concurrent.
// One instance is shared by every service that mutates matches.
type DivisionLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewDivisionLocker() *DivisionLocker {
	return &DivisionLocker{locks: make(map[int]*sync.Mutex)}
}

// lock acquires the division's mutex and returns the unlock function.
func (l *DivisionLocker) lock(divisionID int) func() {
	l.mu.Lock()
	m, ok := l.locks[divisionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[divisionID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

func divisionRoom(divisionID int) string {
	return brackets.DivisionRoom(divisionID)
}
