package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestQueueEntryDecode(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		wantDay  int
		wantZero bool
	}{
		{"local date time", `{"id":42,"joinedAt":"2026-03-04T09:15:00"}`, 4, false},
		{"fractional seconds", `{"id":42,"joinedAt":"2026-03-05T09:15:00.123456"}`, 5, false},
		{"rfc3339", `{"id":42,"joinedAt":"2026-03-06T09:15:00Z"}`, 6, false},
		{"null", `{"id":42,"joinedAt":null}`, 0, true},
		{"missing", `{"id":42}`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var entry QueueEntry
			if err := json.Unmarshal([]byte(tc.body), &entry); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if entry.ID != 42 {
				t.Fatalf("unexpected id %d", entry.ID)
			}
			if entry.JoinedAt.IsZero() != tc.wantZero {
				t.Fatalf("zero=%v, want %v", entry.JoinedAt.IsZero(), tc.wantZero)
			}
			if !tc.wantZero && entry.JoinedAt.Day() != tc.wantDay {
				t.Fatalf("unexpected day %d", entry.JoinedAt.Day())
			}
		})
	}
}

func TestTimestampEpochMillis(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`1767225600000`), &ts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !ts.Equal(time.UnixMilli(1767225600000)) {
		t.Fatalf("unexpected time %s", ts.Time)
	}
}

func TestTimestampRejectsGarbage(t *testing.T) {
	var ts Timestamp
	if err := json.Unmarshal([]byte(`"yesterday"`), &ts); err == nil {
		t.Fatalf("expected error")
	}
}

func TestQueueEntryLabels(t *testing.T) {
	pos := 3
	entry := QueueEntry{ID: 7, Counter: &Counter{ID: 2, Name: "Teller A"}, Position: &pos}
	if entry.Status() != StatusWaiting {
		t.Fatalf("unexpected status %q", entry.Status())
	}
	if entry.CounterName() != "Teller A" || entry.CounterRef() != 2 {
		t.Fatalf("unexpected counter %q/%d", entry.CounterName(), entry.CounterRef())
	}
	if entry.PositionLabel() != "3" {
		t.Fatalf("unexpected position %q", entry.PositionLabel())
	}

	entry = QueueEntry{ID: 7, CounterID: 9, Served: true}
	if entry.Status() != StatusServed || entry.CounterRef() != 9 || entry.CounterName() != "-" || entry.PositionLabel() != "-" {
		t.Fatalf("unexpected labels for %+v", entry)
	}
}
