package envelope

import (
	"encoding/json"
	"time"
)

// Envelope is the frame sent to websocket subscribers. Event names are the
// wire contract with the frontend ("text-view-update", "text-updated", ...).
type Envelope struct {
	Event     string          `json:"event"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"ts"`
}

func NewEvent(event string, data interface{}) (Envelope, error) {
	e := Envelope{
		Event:     event,
		Timestamp: time.Now().UnixMilli(),
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return e, err
	}
	e.Data = raw
	return e, nil
}

func (e Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func Unmarshal(data []byte) (Envelope, error) {
	var e Envelope
	err := json.Unmarshal(data, &e)
	return e, err
}

func ParseData[T any](e Envelope) (T, error) {
	var v T
	err := json.Unmarshal(e.Data, &v)
	return v, err
}
