package node

import (
	"encoding/json"
	"fmt"

	"github.com/dop251/goja"
)

// scriptCondition evaluates a javascript expression against the execution
// context. The context data is bound to $ before the expression runs, so a
// typical expression looks like `$.amount > 100 && $.ocr_status == "done"`.
// The result is coerced to a boolean and routed on the true/false outputs.
type scriptCondition struct {
	baseExecutor
}

var _ Executor = new(scriptCondition)

func NewScriptCondition() *scriptCondition {
	return &scriptCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"expression": {Type: "string", Required: true},
		}),
	}
}

func (c *scriptCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *scriptCondition) Execute(bag *ContextBag, config map[string]any) Result {
	expression := cfgString(config, "expression", "")
	if expression == "" {
		return Failed("expression not configured")
	}
	data, _ := json.Marshal(bag.Data())
	script := fmt.Sprintf("var $ = %s;\n%s", data, expression)
	vm := goja.New()
	val, err := vm.RunString(script)
	if err != nil {
		return Failed(fmt.Sprintf("error executing javascript: %v", err))
	}
	matches := val != nil && val.ToBoolean()
	return SuccessOutput(map[string]any{
		"matches":    matches,
		"expression": expression,
	}, boolOutput(matches))
}
