package realtime

import (
	"encoding/json"
)

// EventAck is the event name of acknowledgement frames
const EventAck = "ack"

// Envelope is one JSON text frame. Requests expecting an acknowledgement
// carry Ack; the reply repeats it.
type Envelope struct {
	Event string          `json:"event"`
	Ack   *int64          `json:"ack,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound is a frame waiting to be written
type Outbound struct {
	Event string
	Ack   *int64
	Data  any
}

// Encode renders the frame
func (o Outbound) Encode() ([]byte, error) {
	env := Envelope{Event: o.Event, Ack: o.Ack}
	if o.Data != nil {
		data, err := json.Marshal(o.Data)
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// ackFrame builds the acknowledgement of request id
func ackFrame(id int64, data any) Outbound {
	return Outbound{Event: EventAck, Ack: &id, Data: data}
}
