package classify

import (
	"testing"
	"time"
)

func TestParseRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    time.Duration
		ok      bool
	}{
		{
			name:    "structured retry info",
			payload: `{"error": {"code": 429, "details": [{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "24s"}]}}`,
			want:    24 * time.Second,
			ok:      true,
		},
		{
			name:    "structured embedded in text",
			payload: `Error: 429 RESOURCE_EXHAUSTED. {"error": {"details": [{"@type": "type.googleapis.com/google.rpc.RetryInfo", "retryDelay": "7s"}]}}`,
			want:    7 * time.Second,
			ok:      true,
		},
		{
			name:    "quoted field double quotes",
			payload: `"retryDelay":"5s"`,
			want:    5 * time.Second,
			ok:      true,
		},
		{
			name:    "quoted field single quotes",
			payload: `'retryDelay': '12s'`,
			want:    12 * time.Second,
			ok:      true,
		},
		{
			name:    "fractional seconds",
			payload: `"retryDelay":"1.5s"`,
			want:    1500 * time.Millisecond,
			ok:      true,
		},
		{
			name:    "bare field",
			payload: `retryDelay: 8`,
			want:    8 * time.Second,
			ok:      true,
		},
		{
			name:    "retry-after line",
			payload: "Retry-After: 30",
			want:    30 * time.Second,
			ok:      true,
		},
		{
			name:    "retry-after lowercase",
			payload: "retry-after: 3",
			want:    3 * time.Second,
			ok:      true,
		},
		{
			name:    "no delay",
			payload: "too many requests",
			ok:      false,
		},
		{
			name:    "empty",
			payload: "",
			ok:      false,
		},
		{
			name:    "malformed json degrades to text scan",
			payload: `{"error": broken json "retryDelay":"4s"`,
			want:    4 * time.Second,
			ok:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRetryDelay(tt.payload)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("delay = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfterHeader(t *testing.T) {
	if d, ok := parseRetryAfter("42"); !ok || d != 42*time.Second {
		t.Errorf("parseRetryAfter(42) = %v, %v", d, ok)
	}
	for _, v := range []string{"", "soon", "-1", "0"} {
		if _, ok := parseRetryAfter(v); ok {
			t.Errorf("parseRetryAfter(%q) should not parse", v)
		}
	}
}
