package queue

import "encoding/json"

// MessageInjest is the payload a Matrix sink enqueues: a room and a
// pre-rendered message (spec §3/§4.7).
type MessageInjest struct {
	Room    string `json:"room"`
	Message string `json:"message"`
}

// Entry is the durable queue record (spec §3: MessageDelivery). Attempts is
// mutated only by the queue worker, and only via a full re-encode/re-push
// (spec: "Mutation of attempts is owned by the queue worker and occurs only
// via reinsertion of a new value").
type Entry struct {
	Message     MessageInjest `json:"message"`
	Attempts    int           `json:"attempts"`
	MaxAttempts int           `json:"max_attempts"`
}

// DefaultMaxAttempts is the spec's default bound on retries (spec §3).
const DefaultMaxAttempts = 10

func NewEntry(room, message string) Entry {
	return Entry{
		Message:     MessageInjest{Room: room, Message: message},
		MaxAttempts: DefaultMaxAttempts,
	}
}

func (e Entry) Encode() ([]byte, error) {
	return json.Marshal(e)
}

func Decode(data []byte) (Entry, error) {
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
