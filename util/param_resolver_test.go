package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveString(t *testing.T) {
	data := map[string]any{
		"document_id": "doc-1",
		"amount":      129.5,
		"invoice":     map[string]any{"number": "INV-77"},
	}

	for scenario, tc := range map[string]struct {
		template string
		want     string
	}{
		"plain key":          {"document {document_id}", "document doc-1"},
		"jsonpath":           {"total {$.amount}", "total 129.5"},
		"nested jsonpath":    {"ref {$.invoice.number}", "ref INV-77"},
		"mixed tokens":       {"{document_id}: {$.amount}", "doc-1: 129.5"},
		"unresolvable stays": {"keep {missing} here", "keep {missing} here"},
		"no tokens":          {"static text", "static text"},
	} {
		t.Run(scenario, func(t *testing.T) {
			require.Equal(t, tc.want, ResolveString(data, tc.template))
		})
	}
}

func TestResolveParams(t *testing.T) {
	data := map[string]any{"amount": 42.0, "currency": "EUR"}

	resolved := ResolveParams(data, map[string]any{
		"total":   "{$.amount}",
		"static":  17,
		"nested":  map[string]any{"unit": "{currency}"},
		"listing": []any{"{$.amount}", true},
	})

	require.Equal(t, "42", resolved["total"])
	require.Equal(t, 17, resolved["static"])
	require.Equal(t, map[string]any{"unit": "EUR"}, resolved["nested"])
	require.Equal(t, []any{"42", true}, resolved["listing"])
}
