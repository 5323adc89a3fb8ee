package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"30m":              30 * time.Minute,
		"1h15m":            75 * time.Minute,
		"00:30:00":         30 * time.Minute,
		"45:10":            45*time.Minute + 10*time.Second,
		"01:02:03.500000":  time.Hour + 2*time.Minute + 3*time.Second + 500*time.Millisecond,
		"2 01:00:00":       49 * time.Hour,
		"1 day, 00:00:01":  24*time.Hour + time.Second,
		"3 days, 00:10:00": 72*time.Hour + 10*time.Minute,
		"90":               90 * time.Second,
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			got, err := ParseDuration(in)
			require.NoError(t, err)
			assert.Equal(t, want, got.Std())
		})
	}
}

func TestParseDurationRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "soon", "-5m", "-00:01:00", "1:2:3:4", "aa:bb", "x 00:00:01",
		"213504 00:00:00", "200000 00:00:00", "106751 23:59:59", "0 2562047788:00:00",
		"00:153722867281:00", "00:00:9300000000", "1e300", "9300000000", "NaN", "00:00:NaN", "00:00:Inf"} {
		_, err := ParseDuration(in)
		assert.ErrorIs(t, err, ErrInvalidDuration, in)
	}
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "00:30:00", Duration(30*time.Minute).String())
	assert.Equal(t, "1 02:00:00", Duration(26*time.Hour).String())
	assert.Equal(t, "00:00:01.250000", Duration(1250*time.Millisecond).String())
	assert.Equal(t, "00:00:00", Duration(0).String())
}

func TestDurationJSON(t *testing.T) {
	var payload struct {
		D Duration `json:"duration"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"duration":"30m"}`), &payload))
	assert.Equal(t, 30*time.Minute, payload.D.Std())

	require.NoError(t, json.Unmarshal([]byte(`{"duration":120}`), &payload))
	assert.Equal(t, 2*time.Minute, payload.D.Std())

	assert.Error(t, json.Unmarshal([]byte(`{"duration":-1}`), &payload))
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"duration":1e300}`), &payload), ErrInvalidDuration)
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"duration":"213504 00:00:00"}`), &payload), ErrInvalidDuration)
	assert.Error(t, json.Unmarshal([]byte(`{"duration":true}`), &payload))

	out, err := json.Marshal(Duration(90 * time.Minute))
	require.NoError(t, err)
	assert.JSONEq(t, `"01:30:00"`, string(out))
}

func TestDurationMicrosecondsRoundTrip(t *testing.T) {
	d := Duration(time.Hour + 1500*time.Microsecond)
	assert.Equal(t, d, DurationFromMicroseconds(d.Microseconds()))
}

func TestUserPublicClearsPassword(t *testing.T) {
	u := User{ID: "u1", Username: "ana", Email: "ana@x.com", Password: "$2a$hash"}
	assert.Empty(t, u.Public().Password)
	assert.Equal(t, "$2a$hash", u.Password)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.NotContains(t, string(b), "$2a$hash")
}

func TestParseDurationLargestDays(t *testing.T) {
	got, err := ParseDuration("106751 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 106751*24*time.Hour, got.Std())
	assert.Equal(t, "106751 00:00:00", got.String())
}
