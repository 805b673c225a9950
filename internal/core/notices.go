package core

import (
	"strings"
	"time"
)

// NoticeWindow is how long join/leave names are collected before flushing.
const NoticeWindow = 500 * time.Millisecond

// Notices batches join/leave names into at most two system messages per
// window. A single deadline is armed by the first push and cleared by Flush.
type Notices struct {
	window   time.Duration
	joins    []string
	leaves   []string
	deadline time.Time
	armed    bool
}

// NewNotices creates a batcher; window <= 0 uses NoticeWindow.
func NewNotices(window time.Duration) *Notices {
	if window <= 0 {
		window = NoticeWindow
	}
	return &Notices{window: window}
}

// Join queues a join notice for name.
func (n *Notices) Join(name string, now time.Time) {
	n.joins = append(n.joins, name)
	n.arm(now)
}

// Leave queues a leave notice for name.
func (n *Notices) Leave(name string, now time.Time) {
	n.leaves = append(n.leaves, name)
	n.arm(now)
}

func (n *Notices) arm(now time.Time) {
	if n.armed {
		return
	}
	n.armed = true
	n.deadline = now.Add(n.window)
}

// Due reports whether the armed window has elapsed.
func (n *Notices) Due(now time.Time) bool {
	return n.armed && !now.Before(n.deadline)
}

// Pending reports whether a flush is scheduled.
func (n *Notices) Pending() bool {
	return n.armed
}

// Flush emits the joins line then the leaves line (each only if non-empty)
// stamped with now, and disarms the window.
func (n *Notices) Flush(now time.Time) []ChatMessage {
	var out []ChatMessage
	if len(n.joins) > 0 {
		out = append(out, systemMessage(strings.Join(n.joins, noticeNameJoiner)+textJoinedSuffix, now))
	}
	if len(n.leaves) > 0 {
		out = append(out, systemMessage(strings.Join(n.leaves, noticeNameJoiner)+textLeftSuffix, now))
	}
	n.joins = nil
	n.leaves = nil
	n.armed = false
	n.deadline = time.Time{}
	return out
}
