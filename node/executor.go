package node

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kdocs/flowd/docs"
)

// FieldRule declares the shape of one config field. The designer UI renders
// forms from these and the base executor validates against them.
type FieldRule struct {
	Type        string   `json:"type"`
	Required    bool     `json:"required"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Default     any      `json:"default,omitempty"`
}

// Executor runs one node of a workflow graph. Execute is called exactly once
// per step; the framework gives no idempotency guarantee, so executors with
// external side effects must tolerate at-least-once semantics.
type Executor interface {
	Execute(bag *ContextBag, config map[string]any) Result
	ValidateConfig(config map[string]any) []error
	Outputs() []string
	ConfigSchema() map[string]FieldRule
}

// TimerScheduler is how wait and timer nodes register a timed resumption.
// The timer sweep picks scheduled timers up and resumes the execution.
type TimerScheduler interface {
	Schedule(executionId string, nodeId string, timerType string, fireAt time.Time) (string, error)
}

// Deps carries the external collaborators node executors are allowed to
// touch. The factory hands it to every constructor.
type Deps struct {
	Docs       docs.Repository
	Mailer     docs.Mailer
	Timers     TimerScheduler
	HttpClient *http.Client
	BaseUrl    string
}

type baseExecutor struct {
	schema map[string]FieldRule
}

func newBaseExecutor(schema map[string]FieldRule) baseExecutor {
	if schema == nil {
		schema = map[string]FieldRule{}
	}
	return baseExecutor{schema: schema}
}

func (b baseExecutor) Outputs() []string {
	return []string{OUTPUT_DEFAULT}
}

func (b baseExecutor) ConfigSchema() map[string]FieldRule {
	return b.schema
}

// ValidateConfig walks the declared schema checking required fields and
// primitive types. Executors needing cross-field checks override it.
func (b baseExecutor) ValidateConfig(config map[string]any) []error {
	var errs []error
	for name, rule := range b.schema {
		value, present := config[name]
		if !present || value == nil {
			if rule.Required {
				errs = append(errs, fmt.Errorf("missing required config field %q", name))
			}
			continue
		}
		if err := checkFieldType(name, rule, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func checkFieldType(name string, rule FieldRule, value any) error {
	switch rule.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("config field %q must be a string", name)
		}
		if len(rule.Enum) > 0 {
			for _, allowed := range rule.Enum {
				if s == allowed {
					return nil
				}
			}
			return fmt.Errorf("config field %q must be one of %v", name, rule.Enum)
		}
	case "number", "integer":
		switch value.(type) {
		case float64, float32, int, int32, int64:
		case string:
			// numeric strings come in from form posts, accepted
		default:
			return fmt.Errorf("config field %q must be numeric", name)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("config field %q must be a boolean", name)
		}
	case "array":
		if _, ok := value.([]any); !ok {
			if _, ok := value.([]string); !ok {
				return fmt.Errorf("config field %q must be an array", name)
			}
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("config field %q must be an object", name)
		}
	}
	return nil
}

// conditionOutputs is shared by every condition executor.
func conditionOutputs() []string {
	return []string{"true", "false"}
}

func boolOutput(matches bool) string {
	if matches {
		return "true"
	}
	return "false"
}
