package node

import (
	"strings"

	"github.com/kdocs/flowd/docs"
)

// correspondentCondition matches the document correspondent by id, list,
// role (supplier/customer) or name.
type correspondentCondition struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(correspondentCondition)

func NewCorrespondentCondition(repo docs.Repository) *correspondentCondition {
	return &correspondentCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"match_mode": {
				Type: "string",
				Enum: []string{"exact", "any", "none", "list", "not_in_list",
					"is_supplier", "is_customer", "name_contains", "name_equals"},
				Default: "exact",
			},
			"correspondent_id":   {Type: "string"},
			"correspondent_ids":  {Type: "array"},
			"correspondent_name": {Type: "string"},
		}),
		docs: repo,
	}
}

func (c *correspondentCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *correspondentCondition) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	if _, err := c.docs.GetDocument(bag.DocumentId()); err != nil {
		return Failed("document not found")
	}
	correspondent, err := c.docs.GetCorrespondent(bag.DocumentId())
	if err != nil {
		return Failed("could not load correspondent: " + err.Error())
	}

	var id, name string
	var isSupplier, isCustomer bool
	if correspondent != nil {
		id = correspondent.Id
		name = correspondent.Name
		isSupplier = correspondent.IsSupplier
		isCustomer = correspondent.IsCustomer
	}

	matchMode := cfgString(config, "match_mode", "exact")
	expectedName := cfgString(config, "correspondent_name", "")
	matches := false
	switch matchMode {
	case "none", "has_none":
		matches = id == ""
	case "any", "has_any":
		matches = id != ""
	case "is_supplier":
		matches = isSupplier
	case "is_customer":
		matches = isCustomer
	case "list", "in_list":
		for _, expected := range cfgStringSlice(config, "correspondent_ids") {
			if id != "" && id == expected {
				matches = true
				break
			}
		}
	case "not_in_list":
		matches = true
		for _, expected := range cfgStringSlice(config, "correspondent_ids") {
			if id != "" && id == expected {
				matches = false
				break
			}
		}
	case "name_contains":
		matches = name != "" && expectedName != "" &&
			strings.Contains(strings.ToLower(name), strings.ToLower(expectedName))
	case "name_equals":
		matches = name != "" && strings.EqualFold(name, expectedName)
	default: // exact
		matches = id != "" && id == cfgString(config, "correspondent_id", "")
	}

	return SuccessOutput(map[string]any{
		"matches":            matches,
		"correspondent_id":   id,
		"correspondent_name": name,
		"is_supplier":        isSupplier,
		"is_customer":        isCustomer,
		"match_mode":         matchMode,
	}, boolOutput(matches))
}
