package util

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oliveagle/jsonpath"
)

var tokenPattern = regexp.MustCompile(`\{(.*?)\}`)

// ResolveParams walks a node config map and substitutes tokens in string
// values against the execution context data. Nested maps and lists are
// resolved recursively; non-string values pass through unchanged.
func ResolveParams(contextData map[string]any, params map[string]any) map[string]any {
	output := make(map[string]any)
	resolveParams(contextData, params, output)
	return output
}

// ResolveString substitutes tokens in a single template string. `{$.path}`
// tokens are jsonpath lookups, `{name}` tokens read a top-level context key.
// Unresolvable tokens stay as-is.
func ResolveString(contextData map[string]any, template string) string {
	tokens := tokenPattern.FindAllString(template, -1)
	result := template
	for _, token := range tokens {
		expr := strings.TrimSuffix(strings.TrimPrefix(token, "{"), "}")
		if strings.HasPrefix(expr, "$") {
			value, err := jsonpath.JsonPathLookup(contextData, expr)
			if err != nil {
				continue
			}
			result = strings.ReplaceAll(result, token, fmt.Sprintf("%v", value))
		} else if value, ok := contextData[expr]; ok {
			result = strings.ReplaceAll(result, token, fmt.Sprintf("%v", value))
		}
	}
	return result
}

func resolveParams(contextData map[string]any, params map[string]any, output map[string]any) {
	for k, v := range params {
		switch v := v.(type) {
		case map[string]any:
			out := make(map[string]any)
			output[k] = out
			resolveParams(contextData, v, out)
		case []any:
			output[k] = resolveList(contextData, v)
		case string:
			output[k] = ResolveString(contextData, v)
		default:
			output[k] = v
		}
	}
}

func resolveList(contextData map[string]any, list []any) []any {
	output := make([]any, 0, len(list))
	for _, v := range list {
		switch v := v.(type) {
		case map[string]any:
			out := make(map[string]any)
			resolveParams(contextData, v, out)
			output = append(output, out)
		case []any:
			output = append(output, resolveList(contextData, v))
		case string:
			output = append(output, ResolveString(contextData, v))
		default:
			output = append(output, v)
		}
	}
	return output
}
