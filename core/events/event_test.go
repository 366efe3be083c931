package events

import "testing"

type stubEvent string

func (s stubEvent) EventType() string { return string(s) }

type captureEmitter struct {
	seen []string
}

func (c *captureEmitter) Emit(evt Event) { c.seen = append(c.seen, evt.EventType()) }

func TestFanoutDispatchesInOrder(t *testing.T) {
	first := &captureEmitter{}
	second := &captureEmitter{}
	fanout := Fanout{first, nil, second}

	fanout.Emit(stubEvent("a"))
	fanout.Emit(stubEvent("b"))

	for i, emitter := range []*captureEmitter{first, second} {
		if len(emitter.seen) != 2 || emitter.seen[0] != "a" || emitter.seen[1] != "b" {
			t.Fatalf("emitter %d saw %v", i, emitter.seen)
		}
	}
}

func TestNoopEmitter(t *testing.T) {
	var emitter Emitter = NoopEmitter{}
	emitter.Emit(stubEvent("ignored"))
}
