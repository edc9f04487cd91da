package node

import (
	"github.com/kdocs/flowd/docs"
)

// amountCondition compares the document amount against a configured value.
// A document without an amount matches only the is_null operator.
type amountCondition struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(amountCondition)

func NewAmountCondition(repo docs.Repository) *amountCondition {
	return &amountCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"operator": {
				Type:     "string",
				Required: true,
				Enum:     []string{"==", "!=", ">", "<", ">=", "<=", "between", "is_null", "is_not_null"},
				Default:  "==",
			},
			"value":  {Type: "number"},
			"value2": {Type: "number", Description: "upper bound for the between operator"},
		}),
		docs: repo,
	}
}

func (c *amountCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *amountCondition) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	doc, err := c.docs.GetDocument(bag.DocumentId())
	if err != nil {
		return Failed("document not found")
	}

	operator := cfgString(config, "operator", "==")
	value, hasValue := cfgFloat(config, "value")
	value2, hasValue2 := cfgFloat(config, "value2")

	matches := false
	if doc.Amount == nil {
		matches = operator == "is_null"
	} else {
		amount := *doc.Amount
		switch operator {
		case "==", "equals":
			matches = amount == value
		case "!=", "not_equals":
			matches = amount != value
		case ">", "greater_than":
			matches = amount > value
		case "<", "less_than":
			matches = amount < value
		case ">=", "greater_or_equal":
			matches = amount >= value
		case "<=", "less_or_equal":
			matches = amount <= value
		case "between":
			if hasValue && hasValue2 {
				lo, hi := value, value2
				if lo > hi {
					lo, hi = hi, lo
				}
				matches = amount >= lo && amount <= hi
			}
		case "is_null":
			matches = false
		case "is_not_null":
			matches = true
		}
	}

	return SuccessOutput(map[string]any{
		"matches":         matches,
		"document_amount": doc.Amount,
		"operator":        operator,
	}, boolOutput(matches))
}
