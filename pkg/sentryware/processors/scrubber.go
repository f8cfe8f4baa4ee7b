// scrubber.go implements fail-closed sensitive data redaction for outgoing events.

package processors

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/strongdm/sentryware/pkg/sentryware"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	redacted           = "[REDACTED]"
	redactedScrubError = "[REDACTED:SCRUB_ERROR]"
	truncationMarker   = "...[TRUNCATED]"
)

// ScrubberConfig controls scrubbing behavior.
type ScrubberConfig struct {
	// SensitiveKeys contains additional case-insensitive substrings marking
	// header names, query parameters and JSON keys as sensitive.
	SensitiveKeys []string

	// MaxMessageSize is the maximum length for messages and exception values (default: 4096).
	MaxMessageSize int

	// MaxDataSize is the maximum length for request bodies (default: 16384).
	MaxDataSize int

	// MaxHeaderValueSize is the maximum length per header value (default: 1024).
	MaxHeaderValueSize int

	// ScrubMessages enables pattern scrubbing of messages for secrets/PII (default: true).
	ScrubMessages bool

	// FailClosed fully redacts a field that cannot be parsed (default: true).
	FailClosed bool
}

// DefaultScrubberConfig returns production-safe defaults.
func DefaultScrubberConfig() ScrubberConfig {
	return ScrubberConfig{
		MaxMessageSize:     4096,
		MaxDataSize:        16384,
		MaxHeaderValueSize: 1024,
		ScrubMessages:      true,
		FailClosed:         true,
	}
}

// Compiled regex patterns for message scrubbing
var messageScrubPatterns = []*regexp.Regexp{
	// API keys and tokens
	regexp.MustCompile(`(?i)(api[_-]?key|token)[=:\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)(authorization|bearer)[=:\s]+['"]?[\w\-\.]+['"]?[\s]+['"]?[\w\-\.]+['"]?`),
	regexp.MustCompile(`(?i)sk-[a-zA-Z0-9_-]{20,}`),
	regexp.MustCompile(`(?i)ghp_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`(?i)github_pat_[a-zA-Z0-9_]{22,}`),
	regexp.MustCompile(`(?i)xox[baprs]-[a-zA-Z0-9\-]{10,}`),
	regexp.MustCompile(`(?i)eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`), // JWT

	// Credentials
	regexp.MustCompile(`(?i)password[=:\s]+['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)secret[=:\s]+['"]?[^\s'"",]+['"]?`),
	regexp.MustCompile(`(?i)passwd[=:\s]+['"]?[^\s'"",]+['"]?`),

	// PII
	regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), // Email
	regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),                              // SSN
	regexp.MustCompile(`\b\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4}\b`),         // Credit card
}

// Sensitive key patterns (case-insensitive substring match)
var sensitiveKeyPatterns = []string{
	"token",
	"key",
	"secret",
	"password",
	"passwd",
	"credential",
	"auth",
	"cookie",
	"session",
}

// Scrubber redacts sensitive data from events.
type Scrubber struct {
	cfg  ScrubberConfig
	keys []string
}

// NewScrubber creates a new scrubber with the given configuration.
func NewScrubber(cfg ScrubberConfig) *Scrubber {
	keys := append([]string(nil), sensitiveKeyPatterns...)
	for _, k := range cfg.SensitiveKeys {
		keys = append(keys, strings.ToLower(k))
	}
	return &Scrubber{cfg: cfg, keys: keys}
}

// Scrub returns a processor backed by a scrubber with the default configuration.
func Scrub() sentryware.Processor {
	return NewScrubber(DefaultScrubberConfig()).Processor()
}

// Processor returns the scrubber as a processor. Register it last so that it
// sees fields added by earlier processors.
func (s *Scrubber) Processor() sentryware.Processor {
	return func(event *sentry.Event, hint *sentry.EventHint, req sentryware.Request) *sentry.Event {
		s.ScrubEvent(event)
		return event
	}
}

// ScrubEvent redacts the message, exception values and request of event in place.
func (s *Scrubber) ScrubEvent(event *sentry.Event) {
	event.Message = s.ScrubMessage(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = s.ScrubMessage(event.Exception[i].Value)
	}

	if r := event.Request; r != nil {
		r.Headers = s.ScrubHeaders(r.Headers)
		r.QueryString = s.ScrubQuery(r.QueryString)
		if r.Cookies != "" {
			r.Cookies = redacted
		}
		if r.Data != "" {
			r.Data = s.ScrubJSON(r.Data)
		}
	}
}

// ScrubMessage scrubs sensitive patterns from a message.
func (s *Scrubber) ScrubMessage(msg string) string {
	if msg == "" || !s.cfg.ScrubMessages {
		return msg
	}

	if s.cfg.MaxMessageSize > 0 && len(msg) > s.cfg.MaxMessageSize {
		msg = truncateWithMarker(msg, s.cfg.MaxMessageSize)
	}

	for _, pattern := range messageScrubPatterns {
		msg = pattern.ReplaceAllString(msg, redacted)
	}
	return msg
}

// ScrubHeaders redacts sensitive header values and truncates long ones.
func (s *Scrubber) ScrubHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}

	result := make(map[string]string, len(headers))
	for name, value := range headers {
		if s.isSensitiveKey(name) {
			result[name] = redacted
			continue
		}
		if s.cfg.MaxHeaderValueSize > 0 && len(value) > s.cfg.MaxHeaderValueSize {
			value = truncateWithMarker(value, s.cfg.MaxHeaderValueSize)
		}
		result[name] = value
	}
	return result
}

// ScrubQuery redacts values of sensitive query parameters.
// An unparsable query string is fully redacted when FailClosed is set.
func (s *Scrubber) ScrubQuery(qs string) string {
	if qs == "" {
		return qs
	}

	values, err := url.ParseQuery(qs)
	if err != nil {
		if s.cfg.FailClosed {
			return redactedScrubError
		}
		return qs
	}

	changed := false
	for key, vals := range values {
		if !s.isSensitiveKey(key) {
			continue
		}
		for i := range vals {
			vals[i] = redacted
		}
		changed = true
	}
	if !changed {
		return qs
	}
	return values.Encode()
}

// ScrubJSON redacts sensitive keys and scrubs string values in a JSON document.
// Returns "[REDACTED:SCRUB_ERROR]" for anything that is not valid JSON when
// FailClosed is set.
func (s *Scrubber) ScrubJSON(doc string) string {
	if !gjson.Valid(doc) {
		if s.cfg.FailClosed {
			return redactedScrubError
		}
		return doc
	}

	var edits []jsonEdit
	s.collectEdits("", gjson.Parse(doc), &edits)

	result := doc
	for _, e := range edits {
		next, err := sjson.Set(result, e.path, e.value)
		if err != nil {
			if s.cfg.FailClosed {
				return redactedScrubError
			}
			continue
		}
		result = next
	}

	if s.cfg.MaxDataSize > 0 && len(result) > s.cfg.MaxDataSize {
		result = truncateWithMarker(result, s.cfg.MaxDataSize)
	}
	return result
}

type jsonEdit struct {
	path  string
	value string
}

// collectEdits walks v and records the replacements needed below prefix.
func (s *Scrubber) collectEdits(prefix string, v gjson.Result, edits *[]jsonEdit) {
	switch {
	case v.IsObject():
		v.ForEach(func(key, val gjson.Result) bool {
			path := joinPath(prefix, escapePathComponent(key.String()))
			if s.isSensitiveKey(key.String()) {
				*edits = append(*edits, jsonEdit{path: path, value: redacted})
			} else {
				s.collectEdits(path, val, edits)
			}
			return true
		})
	case v.IsArray():
		i := 0
		v.ForEach(func(_, val gjson.Result) bool {
			s.collectEdits(joinPath(prefix, strconv.Itoa(i)), val, edits)
			i++
			return true
		})
	case v.Type == gjson.String && prefix != "":
		if scrubbed := s.ScrubMessage(v.Str); scrubbed != v.Str {
			*edits = append(*edits, jsonEdit{path: prefix, value: scrubbed})
		}
	}
}

// isSensitiveKey checks if a key matches sensitive patterns.
func (s *Scrubber) isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range s.keys {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

func joinPath(prefix, component string) string {
	if prefix == "" {
		return component
	}
	return prefix + "." + component
}

var pathEscaper = strings.NewReplacer(`\`, `\\`, `.`, `\.`, `*`, `\*`, `?`, `\?`, `|`, `\|`, `#`, `\#`, `@`, `\@`)

func escapePathComponent(key string) string {
	return pathEscaper.Replace(key)
}

// truncateWithMarker truncates a string and adds a truncation marker.
func truncateWithMarker(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(truncationMarker) {
		return truncationMarker[:maxLen]
	}
	return s[:maxLen-len(truncationMarker)] + truncationMarker
}
