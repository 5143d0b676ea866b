package cryptox

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/statusboard/internal/timex"
)

// DefaultRetention is how long an envelope stays readable.
const DefaultRetention = 7 * 24 * time.Hour

// Envelope is the persisted wire format of an encrypted value.
type Envelope struct {
	Data      string `json:"data"`
	IV        string `json:"iv"`
	Timestamp int64  `json:"timestamp"`
}

// Expired reports whether the envelope is older than retention at now.
func (e Envelope) Expired(now time.Time, retention time.Duration) bool {
	return now.Sub(timex.FromEpochMillis(e.Timestamp)) > retention
}

// ParseEnvelope decodes raw into an Envelope. It fails for non-JSON input,
// a missing or empty data or iv field, or a timestamp that is absent or not
// a JSON number.
func ParseEnvelope(raw string) (Envelope, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Envelope{}, false
	}

	var env Envelope
	if !decodeString(fields["data"], &env.Data) || !decodeString(fields["iv"], &env.IV) {
		return Envelope{}, false
	}
	ts, ok := NumericTimestamp(fields)
	if !ok {
		return Envelope{}, false
	}
	env.Timestamp = ts
	return env, true
}

// NumericTimestamp returns the "timestamp" field when it is a JSON number.
// Quoted numbers and null are rejected.
func NumericTimestamp(fields map[string]json.RawMessage) (int64, bool) {
	raw, ok := fields["timestamp"]
	if !ok {
		return 0, false
	}
	var f *float64
	if err := json.Unmarshal(raw, &f); err != nil || f == nil {
		return 0, false
	}
	return int64(*f), true
}

func decodeString(raw json.RawMessage, dst *string) bool {
	if raw == nil {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false
	}
	return *dst != ""
}
