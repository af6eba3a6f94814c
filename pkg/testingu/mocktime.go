/*
 * Copyright (c) 2024-present unTill Software Development Group B.V.
 */

package testingu

import (
	"sync"
	"time"

	"github.com/voedger/leadership/pkg/timeu"
)

// MockTime must be a global var to avoid case when different times could be used in tests.
var MockTime = NewMockTime()

type IMockTime interface {
	timeu.ITime

	// implementation must trigger each timer created by IMockTime.NewTimerChan() if the time has come after adding
	Add(d time.Duration)

	// next timer got by NewTimerChan already will contain firing
	// useful when we do not know the instant when NewTimerChan() will be called but we advancing the time to make it fire
	FireNextTimerImmediately()
}

func NewMockTime() IMockTime {
	return &mockedTime{
		now:     time.Now(),
		RWMutex: sync.RWMutex{},
		timers:  map[mockTimer]struct{}{},
	}
}

type mockedTime struct {
	sync.RWMutex
	now                      time.Time
	timers                   map[mockTimer]struct{}
	fireNextTimerImmediately bool
}

type mockTimer struct {
	c          chan time.Time
	expiration time.Time
}

func (t *mockedTime) Now() time.Time {
	t.RLock()
	defer t.RUnlock()
	return t.now
}

func (t *mockedTime) NewTimerChan(d time.Duration) <-chan time.Time {
	t.Lock()
	defer t.Unlock()
	mt := mockTimer{
		c:          make(chan time.Time, 1),
		expiration: t.now.Add(d),
	}
	t.timers[mt] = struct{}{}
	if t.fireNextTimerImmediately {
		mt.c <- t.now
		t.fireNextTimerImmediately = false
	}
	return mt.c
}

func (t *mockedTime) FireNextTimerImmediately() {
	t.Lock()
	t.fireNextTimerImmediately = true
	t.Unlock()
}

func (t *mockedTime) Add(d time.Duration) {
	t.Lock()
	defer t.Unlock()
	t.now = t.now.Add(d)
	t.checkTimers()
}

func (t *mockedTime) Sleep(d time.Duration) {
	t.Add(d)
}

func (t *mockedTime) checkTimers() {
	for timer := range t.timers {
		if t.now.Equal(timer.expiration) || t.now.After(timer.expiration) {
			timer.c <- t.now
			delete(t.timers, timer)
		}
	}
}
