package ticketwatch

import (
	"qms/queue-client/internal/apiclient"
	"qms/queue-client/internal/models"
	"qms/queue-client/internal/realtime"
)

const (
	NotificationTitle = "Queue Update"
	NotificationBody  = "It's almost your turn! Please be ready."
)

// State is what the status view renders. Ticket fields only ever come from
// the fetch path; a push only raises Notify, which is never cleared.
type State struct {
	Ticket *models.QueueEntry
	Err    string
	Notify bool
	Loaded bool
}

type Event interface {
	event()
}

type PollResult struct {
	Entry models.QueueEntry
	Err   error
}

type PushReceived struct {
	Message realtime.Message
}

func (PollResult) event()   {}
func (PushReceived) event() {}

func Reduce(s State, ev Event) State {
	switch ev := ev.(type) {
	case PollResult:
		s.Loaded = true
		if ev.Err != nil {
			s.Err = apiclient.UserMessage(ev.Err)
			return s
		}
		entry := ev.Entry
		s.Ticket = &entry
		s.Err = ""
	case PushReceived:
		s.Notify = true
	}
	return s
}

func StatusLabel(entry *models.QueueEntry) string {
	if entry == nil {
		return ""
	}
	return entry.Status()
}
