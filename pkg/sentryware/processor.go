// processor.go implements the ordered event enrichment pipeline.

package sentryware

import "github.com/getsentry/sentry-go"

// Processor enriches an outgoing event. It may mutate event in place and
// return it, return a replacement, return nil to keep the previous event
// unchanged, or return Drop to discard the event.
//
// Processors run for events captured while a wrapped request is active.
// req may be nil when ProcessEvent is called directly.
type Processor func(event *sentry.Event, hint *sentry.EventHint, req Request) *sentry.Event

// Drop is returned by a Processor to veto an event. Compare by identity only.
var Drop = &sentry.Event{}

// Register appends fn to the processors run for every event.
// Processors run in registration order.
func (p *Plugin) Register(fn Processor) *Plugin {
	if fn == nil {
		return p
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors = append(p.processors, fn)
	return p
}

// Processors returns a snapshot of the registered processors.
func (p *Plugin) Processors() []Processor {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Processor(nil), p.processors...)
}

// ProcessEvent attaches the request description to event and runs the
// registered processors. It returns nil when a processor dropped the event.
func (p *Plugin) ProcessEvent(event *sentry.Event, hint *sentry.EventHint, req Request) *sentry.Event {
	if event == nil {
		return nil
	}
	if req != nil {
		event.Request = RequestData(req)
	}

	event = RunProcessors(p.Processors(), event, hint, req)
	if event == Drop {
		return nil
	}
	return event
}

// RunProcessors applies processors in order. A nil result keeps the previous
// event; Drop stops the chain and is returned as is.
func RunProcessors(processors []Processor, event *sentry.Event, hint *sentry.EventHint, req Request) *sentry.Event {
	for _, fn := range processors {
		next := fn(event, hint, req)
		if next == Drop {
			return Drop
		}
		if next != nil {
			event = next
		}
	}
	return event
}
