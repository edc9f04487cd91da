package node

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kdocs/flowd/docs"
	"github.com/oliveagle/jsonpath"
)

// fieldCondition is the generic comparator over four field namespaces:
// document (fixed allow-list of struct fields), classification, custom and
// metadata. Metadata names starting with "$." are jsonpath expressions
// against the metadata blob. Both operands numeric means numeric compare.
type fieldCondition struct {
	baseExecutor
	docs docs.Repository
}

var _ Executor = new(fieldCondition)

func NewFieldCondition(repo docs.Repository) *fieldCondition {
	return &fieldCondition{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"field_type": {
				Type:    "string",
				Enum:    []string{"document", "classification", "custom", "metadata"},
				Default: "document",
			},
			"field_name": {Type: "string", Required: true},
			"operator": {
				Type: "string",
				Enum: []string{"==", "!=", ">", "<", ">=", "<=", "between",
					"contains", "not_contains", "starts_with", "ends_with",
					"regex", "in", "not_in", "is_null", "is_not_null"},
				Default: "==",
			},
			"value":  {Type: "mixed"},
			"value2": {Type: "mixed", Description: "upper bound for the between operator"},
		}),
		docs: repo,
	}
}

func (c *fieldCondition) Outputs() []string {
	return conditionOutputs()
}

func (c *fieldCondition) Execute(bag *ContextBag, config map[string]any) Result {
	if bag.DocumentId() == "" {
		return Failed("no document associated with execution")
	}
	fieldName := cfgString(config, "field_name", "")
	if fieldName == "" {
		return Failed("field_name not configured")
	}
	fieldType := cfgString(config, "field_type", "document")
	operator := cfgString(config, "operator", "==")

	actual, err := c.lookupField(bag.DocumentId(), fieldType, fieldName)
	if err != nil {
		return Failed(err.Error())
	}

	matches := compareValues(actual, operator, config["value"], config["value2"])

	return SuccessOutput(map[string]any{
		"matches":        matches,
		"field_type":     fieldType,
		"field_name":     fieldName,
		"actual_value":   actual,
		"expected_value": config["value"],
		"operator":       operator,
	}, boolOutput(matches))
}

// documentFields is the allow-list for the document namespace.
var documentFields = map[string]bool{
	"title": true, "amount": true, "currency": true, "doc_date": true,
	"correspondent_id": true, "document_type_id": true, "status": true,
	"ocr_status": true, "validation_status": true, "file_size": true,
	"mime_type": true, "asn": true,
}

func (c *fieldCondition) lookupField(documentId, fieldType, fieldName string) (any, error) {
	switch fieldType {
	case "classification":
		return c.docs.ClassificationField(documentId, fieldName)
	case "custom":
		return c.docs.CustomField(documentId, fieldName)
	case "metadata":
		doc, err := c.docs.GetDocument(documentId)
		if err != nil {
			return nil, fmt.Errorf("document not found")
		}
		if doc.Metadata == nil {
			return nil, nil
		}
		if strings.HasPrefix(fieldName, "$") {
			value, err := jsonpath.JsonPathLookup(doc.Metadata, fieldName)
			if err != nil {
				return nil, nil
			}
			return value, nil
		}
		return doc.Metadata[fieldName], nil
	default: // document
		if !documentFields[fieldName] {
			return nil, fmt.Errorf("document field not allowed: %s", fieldName)
		}
		doc, err := c.docs.GetDocument(documentId)
		if err != nil {
			return nil, fmt.Errorf("document not found")
		}
		return documentFieldValue(doc, fieldName), nil
	}
}

func documentFieldValue(doc *docs.Document, name string) any {
	switch name {
	case "title":
		return doc.Title
	case "amount":
		if doc.Amount == nil {
			return nil
		}
		return *doc.Amount
	case "currency":
		return doc.Currency
	case "doc_date":
		return doc.DocDate
	case "correspondent_id":
		return emptyAsNil(doc.CorrespondentId)
	case "document_type_id":
		return emptyAsNil(doc.DocumentTypeId)
	case "status":
		return doc.Status
	case "ocr_status":
		return doc.OcrStatus
	case "validation_status":
		return doc.ValidationStatus
	case "file_size":
		return doc.FileSize
	case "mime_type":
		return doc.MimeType
	case "asn":
		return doc.Asn
	}
	return nil
}

func emptyAsNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func compareValues(actual any, operator string, expected any, expected2 any) bool {
	switch operator {
	case "is_null", "is_empty":
		return actual == nil || actual == ""
	case "is_not_null", "is_not_empty":
		return actual != nil && actual != ""
	}
	if actual == nil {
		return false
	}

	actualNum, actualIsNum := anyToFloat(actual)
	expectedNum, expectedIsNum := anyToFloat(expected)
	numeric := actualIsNum && expectedIsNum

	switch operator {
	case "==", "equals", "eq":
		if numeric {
			return actualNum == expectedNum
		}
		return asString(actual) == asString(expected)
	case "!=", "not_equals", "ne":
		if numeric {
			return actualNum != expectedNum
		}
		return asString(actual) != asString(expected)
	case ">", "greater_than", "gt":
		return numeric && actualNum > expectedNum
	case "<", "less_than", "lt":
		return numeric && actualNum < expectedNum
	case ">=", "greater_or_equal", "gte":
		return numeric && actualNum >= expectedNum
	case "<=", "less_or_equal", "lte":
		return numeric && actualNum <= expectedNum
	case "between":
		expected2Num, ok := anyToFloat(expected2)
		if !numeric || !ok {
			return false
		}
		lo, hi := expectedNum, expected2Num
		if lo > hi {
			lo, hi = hi, lo
		}
		return actualNum >= lo && actualNum <= hi
	case "contains":
		return strings.Contains(strings.ToLower(asString(actual)), strings.ToLower(asString(expected)))
	case "not_contains":
		return !strings.Contains(strings.ToLower(asString(actual)), strings.ToLower(asString(expected)))
	case "starts_with":
		return strings.HasPrefix(strings.ToLower(asString(actual)), strings.ToLower(asString(expected)))
	case "ends_with":
		return strings.HasSuffix(strings.ToLower(asString(actual)), strings.ToLower(asString(expected)))
	case "regex", "matches":
		re, err := regexp.Compile(asString(expected))
		if err != nil {
			return false
		}
		return re.MatchString(asString(actual))
	case "in", "in_list":
		return inList(actual, expected)
	case "not_in", "not_in_list":
		return !inList(actual, expected)
	}
	return false
}

func inList(actual any, expected any) bool {
	var items []string
	switch list := expected.(type) {
	case []any:
		for _, item := range list {
			items = append(items, strings.TrimSpace(asString(item)))
		}
	case []string:
		for _, item := range list {
			items = append(items, strings.TrimSpace(item))
		}
	default:
		for _, item := range strings.Split(asString(expected), ",") {
			items = append(items, strings.TrimSpace(item))
		}
	}
	needle := asString(actual)
	for _, item := range items {
		if item == needle {
			return true
		}
	}
	return false
}

func asString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}
