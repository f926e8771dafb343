package editor

import (
	"sync"
	"time"
)

// NoticeKind classifies a notice.
type NoticeKind string

const (
	NoticeSuccess       NoticeKind = "success"
	NoticeError         NoticeKind = "error"
	NoticeConfiguration NoticeKind = "configuration"
)

// Notice is a transient message shown to the user.
type Notice struct {
	Kind    NoticeKind
	Message string
}

// Timer is the handle returned by an AfterFunc.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d. Tests inject a manual clock.
type AfterFunc func(d time.Duration, f func()) Timer

// RealAfterFunc wraps time.AfterFunc.
func RealAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Notices is a single notice slot. Every Set bumps a token; an expiry only
// clears the slot when its token is still current, so a stale timer can never
// remove a newer notice.
type Notices struct {
	afterFunc AfterFunc

	mu      sync.Mutex
	current *Notice
	token   uint64
	timer   Timer
}

func NewNotices(afterFunc AfterFunc) *Notices {
	if afterFunc == nil {
		afterFunc = RealAfterFunc
	}
	return &Notices{afterFunc: afterFunc}
}

// Set replaces the current notice and schedules its removal after ttl.
func (n *Notices) Set(kind NoticeKind, message string, ttl time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.token++
	token := n.token
	n.current = &Notice{Kind: kind, Message: message}
	n.stopTimerLocked()
	n.timer = n.afterFunc(ttl, func() { n.expire(token) })
}

// Clear empties the slot and invalidates pending expiries.
func (n *Notices) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.token++
	n.current = nil
	n.stopTimerLocked()
}

// Current returns the visible notice, if any.
func (n *Notices) Current() (Notice, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notice{}, false
	}
	return *n.current, true
}

func (n *Notices) expire(token uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.token != token {
		return
	}
	n.current = nil
	n.timer = nil
}

func (n *Notices) stopTimerLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
}
