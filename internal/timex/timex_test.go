package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"3s"`, want: 3 * time.Second},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestClock_FixedAndOr(t *testing.T) {
	at := time.Date(2024, 3, 10, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, at, Fixed(at)())

	var nilClock Clock
	assert.NotNil(t, nilClock.Or())
	assert.Equal(t, at, Fixed(at).Or()())
}

func TestStartOfDayAndEpoch(t *testing.T) {
	at := time.Date(2024, 3, 10, 15, 4, 5, 6, time.UTC)
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), StartOfDay(at))

	ms := EpochMillis(at)
	assert.Equal(t, at.Truncate(time.Millisecond), FromEpochMillis(ms))
}
