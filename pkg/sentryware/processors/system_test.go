package processors

import (
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
)

func TestSystemState_PopulatesFields(t *testing.T) {
	event := &sentry.Event{}
	out := SystemState(time.Now().Add(-time.Second))(event, nil, nil)

	if out != event {
		t.Fatal("SystemState should return the event it was given")
	}
	state, ok := event.Contexts[RuntimeStateContext]
	if !ok {
		t.Fatalf("missing %q context", RuntimeStateContext)
	}

	if mem, _ := state["memory_bytes"].(uint64); mem == 0 {
		t.Error("memory_bytes should be non-zero")
	}
	if n, _ := state["goroutine_count"].(int); n < 1 {
		t.Errorf("goroutine_count = %d, want >= 1", n)
	}
	if up, _ := state["uptime_ms"].(int64); up < 1000 {
		t.Errorf("uptime_ms = %d, want >= 1000", up)
	}
	if _, ok := state["host_name"].(string); !ok {
		t.Error("host_name should be a string")
	}
}

func TestSystemState_FutureStartTime(t *testing.T) {
	event := &sentry.Event{Contexts: map[string]sentry.Context{"os": {"name": "linux"}}}
	SystemState(time.Now().Add(time.Hour))(event, nil, nil)

	if up := event.Contexts[RuntimeStateContext]["uptime_ms"].(int64); up != 0 {
		t.Errorf("uptime_ms = %d, want 0 for a start time in the future", up)
	}
	if _, ok := event.Contexts["os"]; !ok {
		t.Error("existing contexts should be kept")
	}
}
