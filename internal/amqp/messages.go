package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"petcare/internal/core"
)

// MessageType names an event carried on the queue.
type MessageType string

const (
	TypeActivityRecorded MessageType = "activity.recorded"
	TypeWalkReminder     MessageType = "walk.reminder"
)

// Message is the envelope published for every ledger event. Exactly one of
// the payload fields is set, matching Type.
type Message struct {
	Type      MessageType      `json:"type"`
	Activity  *ActivityPayload `json:"activity,omitempty"`
	Reminder  *ReminderPayload `json:"reminder,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// ActivityPayload is the wire form of a recorded activity.
type ActivityPayload struct {
	ID       string    `json:"id"`
	PetName  string    `json:"petName"`
	Type     string    `json:"type"`
	Amount   float64   `json:"amount"`
	DateTime time.Time `json:"dateTime"`
}

// ReminderPayload is the wire form of a walk reminder.
type ReminderPayload struct {
	PetName     string    `json:"petName"`
	Date        string    `json:"date"`
	Cutoff      time.Time `json:"cutoff"`
	WalkMinutes float64   `json:"walkMinutes"`
}

// NewActivityRecordedMessage wraps a stored activity.
func NewActivityRecordedMessage(a core.Activity) *Message {
	return &Message{
		Type: TypeActivityRecorded,
		Activity: &ActivityPayload{
			ID:       a.ID,
			PetName:  a.PetName,
			Type:     string(a.Type),
			Amount:   a.Amount,
			DateTime: a.DateTime.UTC(),
		},
		Timestamp: time.Now(),
	}
}

// NewWalkReminderMessage wraps a reminder produced by the reminder job.
func NewWalkReminderMessage(r core.WalkReminder) *Message {
	return &Message{
		Type: TypeWalkReminder,
		Reminder: &ReminderPayload{
			PetName:     r.PetName,
			Date:        r.Date.String(),
			Cutoff:      r.Cutoff,
			WalkMinutes: r.WalkMinutes,
		},
		Timestamp: time.Now(),
	}
}

// ToActivity converts the payload back to the domain record.
func (p ActivityPayload) ToActivity() core.Activity {
	return core.Activity{
		ID:       p.ID,
		PetName:  p.PetName,
		Type:     core.ActivityType(p.Type),
		Amount:   p.Amount,
		DateTime: p.DateTime.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *Message) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// MessageFromJSON decodes and checks that the payload matches the type.
func MessageFromJSON(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Type {
	case TypeActivityRecorded:
		if msg.Activity == nil {
			return nil, errors.New("activity.recorded message without activity")
		}
	case TypeWalkReminder:
		if msg.Reminder == nil {
			return nil, errors.New("walk.reminder message without reminder")
		}
	default:
		return nil, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return &msg, nil
}
