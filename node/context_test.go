package node

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContextBag(t *testing.T) {
	bag := NewContextBag("exec-1", "doc-1", "wf-1", map[string]any{"a": 1})

	require.Equal(t, "exec-1", bag.ExecutionId())
	require.Equal(t, "doc-1", bag.DocumentId())
	require.Equal(t, "wf-1", bag.WorkflowId())

	require.Equal(t, 1, bag.Get("a", nil))
	require.Equal(t, "fallback", bag.Get("missing", "fallback"))
	require.False(t, bag.Has("missing"))

	bag.Set("b", "two")
	require.True(t, bag.Has("b"))

	bag.Merge(map[string]any{"a": 10, "c": true})
	require.Equal(t, 10, bag.Get("a", nil))
	require.Equal(t, true, bag.Get("c", nil))
}

func TestContextBagDataIsACopy(t *testing.T) {
	bag := NewContextBag("exec-1", "", "wf-1", nil)
	bag.Set("k", "v")

	data := bag.Data()
	data["k"] = "changed"
	data["extra"] = true

	require.Equal(t, "v", bag.Get("k", nil))
	require.False(t, bag.Has("extra"))
}

func TestResultConstructors(t *testing.T) {
	r := Success(map[string]any{"x": 1})
	require.Equal(t, STATUS_SUCCESS, r.Status)
	require.Equal(t, OUTPUT_DEFAULT, r.Output)

	r = SuccessOutput(nil, "")
	require.Equal(t, OUTPUT_DEFAULT, r.Output)

	r = Failed("")
	require.Equal(t, STATUS_FAILED, r.Status)
	require.Equal(t, "unknown error", r.Err)

	r = Waiting("", 30, nil)
	require.Equal(t, STATUS_WAITING, r.Status)
	require.Equal(t, "event", r.WaitFor)
	require.Equal(t, 30, r.WaitSeconds)
}
