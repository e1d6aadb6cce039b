// Package intent validates structured command payloads and translates them
// into task store operations. Payloads arrive either from the natural-language
// service or deterministically from the CLI; by the time an intent leaves
// Parse it is strongly typed and fully validated.
package intent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tcal/internal/daterange"
	"tcal/internal/task"
)

// Intent names carried on the wire.
const (
	NameCreate     = "create"
	NameList       = "list"
	NameReschedule = "reschedule"
)

// ErrAmbiguousReschedule means a reschedule payload carried both an absolute
// trigger and a relative adjustment, or neither.
var ErrAmbiguousReschedule = errors.New("reschedule requires exactly one of new_trigger or a relative adjustment")

// IncompleteError lists the required create fields a payload is missing.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	return "incomplete intent: missing " + strings.Join(e.Missing, ", ")
}

// Create adds one task. Trigger, outcome and impact are all required.
type Create struct {
	Task task.Task
}

// List queries a named range, optionally filtered by keyword. Read-only.
type List struct {
	Range   string
	Keyword string
}

// Reschedule moves an existing task, identified by a description matched
// against outcome and impact, to an absolute or relative new trigger.
type Reschedule struct {
	Target     string
	NewTrigger *time.Time
	Offset     *daterange.Offset
}

// Intent is one of Create, List, Reschedule.
type Intent interface {
	intentName() string
}

func (Create) intentName() string     { return NameCreate }
func (List) intentName() string       { return NameList }
func (Reschedule) intentName() string { return NameReschedule }

// payload mirrors the wire schema. Pointer fields distinguish absent from
// zero-valued.
type payload struct {
	Intent string `json:"intent"`
	Data   struct {
		Trigger string `json:"trigger"`
		Outcome string `json:"outcome"`
		Impact  string `json:"impact"`
		Bucket  string `json:"bucket"`

		Range   string `json:"range"`
		Keyword string `json:"keyword"`

		Target         string `json:"target"`
		NewTrigger     string `json:"new_trigger"`
		RelativeAmount *int   `json:"relative_amount"`
		RelativeUnit   string `json:"relative_unit"`
	} `json:"data"`
}

// Parse converts a raw JSON payload into a typed intent. The loosely-typed
// form never leaves this function.
func Parse(raw []byte) (Intent, error) {
	var p payload
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		// Retry tolerantly: unknown fields from the model are dropped,
		// a malformed document still fails.
		if err2 := json.Unmarshal(raw, &p); err2 != nil {
			return nil, fmt.Errorf("intent payload is not an object: %w", err2)
		}
	}

	switch p.Intent {
	case NameCreate:
		return parseCreate(p)
	case NameList:
		return parseList(p)
	case NameReschedule:
		return parseReschedule(p)
	}
	return nil, fmt.Errorf("unsupported intent %q", p.Intent)
}

func parseCreate(p payload) (Intent, error) {
	var missing []string
	if strings.TrimSpace(p.Data.Trigger) == "" {
		missing = append(missing, task.ColTrigger)
	}
	if strings.TrimSpace(p.Data.Outcome) == "" {
		missing = append(missing, task.ColOutcome)
	}
	if strings.TrimSpace(p.Data.Impact) == "" {
		missing = append(missing, task.ColImpact)
	}
	if len(missing) > 0 {
		return nil, &IncompleteError{Missing: missing}
	}

	trigger, err := task.ParseDateTime(p.Data.Trigger)
	if err != nil {
		return nil, err
	}
	return Create{Task: task.Task{
		Trigger: trigger,
		Outcome: strings.TrimSpace(p.Data.Outcome),
		Impact:  strings.TrimSpace(p.Data.Impact),
		Bucket:  strings.TrimSpace(p.Data.Bucket),
	}}, nil
}

func parseList(p payload) (Intent, error) {
	if !daterange.Valid(p.Data.Range) {
		return nil, fmt.Errorf("%w: %q", daterange.ErrUnknownToken, p.Data.Range)
	}
	return List{Range: p.Data.Range, Keyword: strings.TrimSpace(p.Data.Keyword)}, nil
}

func parseReschedule(p payload) (Intent, error) {
	target := strings.TrimSpace(p.Data.Target)
	if target == "" {
		return nil, &IncompleteError{Missing: []string{"target"}}
	}

	hasAbsolute := strings.TrimSpace(p.Data.NewTrigger) != ""
	hasRelative := p.Data.RelativeAmount != nil || strings.TrimSpace(p.Data.RelativeUnit) != ""
	if hasAbsolute == hasRelative {
		return nil, ErrAmbiguousReschedule
	}

	r := Reschedule{Target: target}
	if hasAbsolute {
		t, err := task.ParseDateTime(p.Data.NewTrigger)
		if err != nil {
			return nil, err
		}
		r.NewTrigger = &t
		return r, nil
	}

	if p.Data.RelativeAmount == nil {
		return nil, ErrAmbiguousReschedule
	}
	unit := daterange.Unit(strings.TrimSpace(p.Data.RelativeUnit))
	if !daterange.ValidUnit(unit) {
		return nil, fmt.Errorf("unsupported relative unit %q", p.Data.RelativeUnit)
	}
	r.Offset = &daterange.Offset{Amount: *p.Data.RelativeAmount, Unit: unit}
	return r, nil
}

// ResponseSchema is the JSON schema handed to the structured-output service.
// A response that fails to validate against it is a protocol error, not a
// domain error.
func ResponseSchema() map[string]any {
	return map[string]any{
		"name": "tracker_intent",
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"intent": map[string]any{
					"type": "string",
					"enum": []string{NameCreate, NameList, NameReschedule},
				},
				"data": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"trigger":         map[string]any{"type": "string"},
						"outcome":         map[string]any{"type": "string"},
						"impact":          map[string]any{"type": "string"},
						"bucket":          map[string]any{"type": "string"},
						"range":           map[string]any{"type": "string", "enum": daterange.Tokens},
						"keyword":         map[string]any{"type": "string"},
						"target":          map[string]any{"type": "string"},
						"new_trigger":     map[string]any{"type": "string"},
						"relative_amount": map[string]any{"type": "integer"},
						"relative_unit": map[string]any{
							"type": "string",
							"enum": []string{"minutes", "hours", "days", "weeks", "months"},
						},
					},
					"additionalProperties": false,
				},
			},
			"required":             []string{"intent", "data"},
			"additionalProperties": false,
		},
	}
}
