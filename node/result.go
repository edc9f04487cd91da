package node

type ResultStatus string

const STATUS_SUCCESS ResultStatus = "success"
const STATUS_FAILED ResultStatus = "failed"
const STATUS_WAITING ResultStatus = "waiting"

const OUTPUT_DEFAULT = "default"

// Result is the uniform outcome of running one node. Data is merged into the
// execution log, not the context; a node that wants downstream nodes to see
// a value must write it to the ContextBag itself.
type Result struct {
	Status      ResultStatus   `json:"status"`
	Output      string         `json:"output"`
	Data        map[string]any `json:"data,omitempty"`
	Err         string         `json:"error,omitempty"`
	WaitSeconds int            `json:"waitSeconds,omitempty"`
	WaitFor     string         `json:"waitFor,omitempty"`
}

func Success(data map[string]any) Result {
	return SuccessOutput(data, OUTPUT_DEFAULT)
}

func SuccessOutput(data map[string]any, output string) Result {
	if output == "" {
		output = OUTPUT_DEFAULT
	}
	return Result{
		Status: STATUS_SUCCESS,
		Output: output,
		Data:   data,
	}
}

// Failed always carries a non-empty error message.
func Failed(msg string) Result {
	if msg == "" {
		msg = "unknown error"
	}
	return Result{
		Status: STATUS_FAILED,
		Output: OUTPUT_DEFAULT,
		Err:    msg,
	}
}

// Waiting parks the execution until an external resume. waitSeconds of zero
// means no timed resumption is scheduled.
func Waiting(waitFor string, waitSeconds int, data map[string]any) Result {
	if waitFor == "" {
		waitFor = "event"
	}
	return Result{
		Status:      STATUS_WAITING,
		Output:      OUTPUT_DEFAULT,
		Data:        data,
		WaitSeconds: waitSeconds,
		WaitFor:     waitFor,
	}
}
