package streaming

import (
	"encoding/json"
	"errors"
	"fmt"

	vitals "healthwatch-cloud/internal/vitals/domain"
)

// MessageType tags the closed set of envelopes exchanged on device and
// viewer channels.
type MessageType string

const (
	// MessageReading carries a normalized, annotated vital reading to viewers.
	MessageReading MessageType = "READING"
	// MessageFall announces a promoted fall alarm to viewers.
	MessageFall MessageType = "FALL"
	// MessageAlarm announces a medicine reminder to viewers and devices.
	MessageAlarm MessageType = "ALARM"
	// MessageStopAlarm clears an active alarm on viewers and devices.
	MessageStopAlarm MessageType = "STOP_ALARM"
	// MessageSyncTime pushes the reminder schedule to devices.
	MessageSyncTime MessageType = "SYNC_TIME"
)

// ErrUnknownMessageType rejects envelopes outside the closed set.
var ErrUnknownMessageType = errors.New("streaming: unknown message type")

// ReadingPayload is the outbound form of a reading: the normalized fields
// plus derived annotations.
type ReadingPayload struct {
	vitals.VitalReading
	Status     vitals.ReadingStatus `json:"status"`
	FallActive bool                 `json:"fall_active"`
}

// Message is the typed envelope for every channel send. Exactly one payload
// section is set, selected by Type.
type Message struct {
	Type     MessageType     `json:"type"`
	Reading  *ReadingPayload `json:"reading,omitempty"`
	Medicine string          `json:"medicine,omitempty"`
	Time     string          `json:"time,omitempty"`
}

// NewReadingMessage wraps an annotated reading for viewer broadcast.
func NewReadingMessage(payload ReadingPayload) Message {
	return Message{Type: MessageReading, Reading: &payload}
}

// NewFallMessage builds the fall-alert envelope.
func NewFallMessage(at string) Message {
	return Message{Type: MessageFall, Time: at}
}

// NewAlarmMessage builds the medicine-alarm envelope.
func NewAlarmMessage(medicine, timeOfDay string) Message {
	return Message{Type: MessageAlarm, Medicine: medicine, Time: timeOfDay}
}

// NewStopAlarmMessage builds the alarm-clear envelope.
func NewStopAlarmMessage() Message {
	return Message{Type: MessageStopAlarm}
}

// NewSyncTimeMessage builds the device clock/schedule sync envelope.
func NewSyncTimeMessage(timeOfDay string) Message {
	return Message{Type: MessageSyncTime, Time: timeOfDay}
}

// Encode serializes the envelope for the wire.
func (m Message) Encode() ([]byte, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}
	return json.Marshal(m)
}

// Decode parses and checks an inbound envelope against the closed set.
func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("streaming: decode envelope: %w", err)
	}
	if err := msg.validate(); err != nil {
		return Message{}, err
	}
	return msg, nil
}

func (m Message) validate() error {
	switch m.Type {
	case MessageReading:
		if m.Reading == nil {
			return errors.New("streaming: READING envelope without reading")
		}
		return nil
	case MessageFall, MessageAlarm, MessageStopAlarm, MessageSyncTime:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, string(m.Type))
	}
}
