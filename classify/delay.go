package classify

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Providers embed retry delays in a few shapes. Google-style payloads carry
// a structured RetryInfo detail; others embed the value in free text.
var (
	quotedDelayPattern = regexp.MustCompile(`['"]retryDelay['"]\s*:\s*['"](\d+(?:\.\d+)?)s?['"]`)
	bareDelayPattern   = regexp.MustCompile(`retryDelay:\s*(\d+(?:\.\d+)?)`)
	retryAfterPattern  = regexp.MustCompile(`(?i)retry-after:\s*(\d+)`)
)

// structuredError mirrors the Google RPC error envelope:
//
//	{"error": {"details": [{"@type": ".../RetryInfo", "retryDelay": "24s"}]}}
type structuredError struct {
	Error struct {
		Details []struct {
			Type       string `json:"@type"`
			RetryDelay string `json:"retryDelay"`
		} `json:"details"`
	} `json:"error"`
}

// ParseRetryDelay extracts a provider-suggested retry delay from a failure
// payload. It tolerates a structured RetryInfo detail, quoted and unquoted
// free-text retryDelay fields, and an embedded Retry-After line. Returns
// false when no shape matches.
func ParseRetryDelay(payload string) (time.Duration, bool) {
	if payload == "" {
		return 0, false
	}

	if d, ok := parseStructuredDelay(payload); ok {
		return d, true
	}
	if m := quotedDelayPattern.FindStringSubmatch(payload); m != nil {
		return secondsToDuration(m[1])
	}
	if m := bareDelayPattern.FindStringSubmatch(payload); m != nil {
		return secondsToDuration(m[1])
	}
	if m := retryAfterPattern.FindStringSubmatch(payload); m != nil {
		return secondsToDuration(m[1])
	}
	return 0, false
}

// parseStructuredDelay looks for a RetryInfo detail in a JSON error body.
// The payload may embed the JSON mid-string, so scan from the first brace.
func parseStructuredDelay(payload string) (time.Duration, bool) {
	start := strings.IndexByte(payload, '{')
	if start < 0 {
		return 0, false
	}

	var env structuredError
	if err := json.Unmarshal([]byte(payload[start:]), &env); err != nil {
		return 0, false
	}
	for _, det := range env.Error.Details {
		if !strings.HasSuffix(det.Type, "RetryInfo") || det.RetryDelay == "" {
			continue
		}
		if d, err := time.ParseDuration(det.RetryDelay); err == nil && d > 0 {
			return d, true
		}
	}
	return 0, false
}

// parseRetryAfter parses a Retry-After header value in delta-seconds form.
func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	secs, err := strconv.Atoi(value)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs) * time.Second, true
}

func secondsToDuration(s string) (time.Duration, bool) {
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs <= 0 {
		return 0, false
	}
	return time.Duration(secs * float64(time.Second)), true
}
