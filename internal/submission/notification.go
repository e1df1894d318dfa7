package submission

import "time"

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification texts.
const (
	TextSuccess = "Event created successfully!"
	TextFailure = "Failed to create event. Try again."
)

// DefaultDismissAfter is how long a notification stays visible on its own.
const DefaultDismissAfter = 6 * time.Second

// Notification is the single transient status banner.  The zero value is
// "nothing to show".
type Notification struct {
	Visible bool   `json:"visible"`
	Text    string `json:"text,omitempty"`
	Kind    Kind   `json:"kind,omitempty"`
}

// AfterFunc runs f once after d unless the returned stop function is called
// first.  stop reports whether it prevented f from running, like
// (*time.Timer).Stop.
type AfterFunc func(d time.Duration, f func()) (stop func() bool)

func realAfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// raiseLocked replaces the current notification and arms its dismiss timer.
// Each notification gets a generation number; a timer only clears the
// notification it was armed for.
func (c *Controller) raiseLocked(kind Kind, text string) {
	c.disarmLocked()
	c.noteGen++
	gen := c.noteGen

	c.note = Notification{Visible: true, Text: text, Kind: kind}
	c.stopTimer = c.afterFunc(c.dismissAfter, func() { c.expire(gen) })
}

// expire is the timer callback.
func (c *Controller) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.noteGen || !c.note.Visible {
		return
	}
	c.note = Notification{}
	c.stopTimer = nil
	c.log.Debugw("notification auto-dismissed")
}

func (c *Controller) disarmLocked() {
	if c.stopTimer != nil {
		c.stopTimer()
		c.stopTimer = nil
	}
}

// DismissNotification clears the notification now and disarms its timer.
// It is valid in every state, including while a submission is in flight.
func (c *Controller) DismissNotification() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disarmLocked()
	c.noteGen++
	c.note = Notification{}
}
