package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type QueueEntry struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"userName"`
	CounterID int64     `json:"counterId,omitempty"`
	Counter   *Counter  `json:"counter,omitempty"`
	JoinedAt  Timestamp `json:"joinedAt"`
	Served    bool      `json:"served"`
	Position  *int      `json:"position,omitempty"`
}

type JoinQueueInput struct {
	UserName  string `json:"userName"`
	CounterID int64  `json:"counterId"`
}

const (
	StatusWaiting = "Waiting"
	StatusServed  = "Served"
)

func (q QueueEntry) Status() string {
	if q.Served {
		return StatusServed
	}
	return StatusWaiting
}

// CounterRef resolves the counter id from either the nested counter or the flat field.
func (q QueueEntry) CounterRef() int64 {
	if q.Counter != nil && q.Counter.ID != 0 {
		return q.Counter.ID
	}
	return q.CounterID
}

func (q QueueEntry) CounterName() string {
	if q.Counter == nil || q.Counter.Name == "" {
		return "-"
	}
	return q.Counter.Name
}

func (q QueueEntry) PositionLabel() string {
	if q.Position == nil {
		return "-"
	}
	return strconv.Itoa(*q.Position)
}

// Timestamp accepts the zone-less local date-times the backend emits as well
// as RFC 3339 and epoch milliseconds.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if data[0] != '"' {
		var millis int64
		if err := json.Unmarshal(data, &millis); err != nil {
			return fmt.Errorf("timestamp: %w", err)
		}
		t.Time = time.UnixMilli(millis)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognised format %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

func (t Timestamp) Label() string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
