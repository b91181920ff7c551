package domain

import (
	"context"
	"errors"
	"testing"
)

type staticRule struct {
	name   string
	result Result
	err    error
}

func (r staticRule) Name() string { return r.name }

func (r staticRule) Evaluate(context.Context, RuleView, []Change) (Result, error) {
	return r.result, r.err
}

func TestRulesEngineAggregatesResults(t *testing.T) {
	engine := NewRulesEngine()
	engine.Register(staticRule{name: "warned", result: Result{Violations: []Violation{{Rule: "warned", Severity: SeverityWarn}}}})
	engine.Register(staticRule{name: "blocked", result: Result{Violations: []Violation{{Rule: "blocked", Severity: SeverityBlock}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(res.Violations) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(res.Violations))
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
}

func TestRulesEngineStopsOnError(t *testing.T) {
	engine := NewRulesEngine()
	boom := errors.New("boom")
	engine.Register(staticRule{name: "broken", err: boom})
	engine.Register(staticRule{name: "unreached", result: Result{Violations: []Violation{{Rule: "unreached"}}}})

	res, err := engine.Evaluate(context.Background(), nil, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("result must be empty on error")
	}
}

func TestChangePayloadRoundTrip(t *testing.T) {
	payload, err := NewChangePayloadFromValue(ScheduleTask{Base: Base{ID: "t1"}, Name: "Tiling"})
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	if !payload.HasRecord() {
		t.Fatalf("expected payload to carry a record")
	}
	raw := payload.Raw()
	raw[0] = '!'
	if payload.Raw()[0] == '!' {
		t.Fatalf("Raw must return a defensive copy")
	}

	var zero ChangePayload
	if zero.HasRecord() || zero.Raw() != nil {
		t.Fatalf("zero payload must carry no record")
	}
}
