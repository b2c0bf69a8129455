package config

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that koanf can decode from YAML strings
// and env vars ("90s", "5m"). Negative values are rejected because
// every duration in this config is a timeout or an interval.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("duration cannot be negative: %s", text)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Secret holds a credential such as the embeddings API key. It prints
// and serializes as "[REDACTED]" so a dumped config never leaks it;
// call Value to read the real string.
type Secret string

func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// Value returns the raw secret.
func (s Secret) Value() string {
	return string(s)
}

func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Secret) UnmarshalText(text []byte) error {
	*s = Secret(text)
	return nil
}
