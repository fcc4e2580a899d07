package tools

import "time"

// Metadata accompanies every successful tool response.
type Metadata struct {
	Tool      string    `json:"tool"`
	Timestamp time.Time `json:"timestamp"`
	ElapsedMS int64     `json:"elapsed_ms"`
}

// Result is the uniform envelope every tool call returns: exactly one of
// Data or Err is set, discriminated by Success.
type Result struct {
	Success  bool       `json:"success"`
	Data     any        `json:"data,omitempty"`
	Err      *ToolError `json:"error,omitempty"`
	Metadata *Metadata  `json:"metadata,omitempty"`
}

// Succeed wraps a payload in a success envelope.
func Succeed(tool string, data any, at time.Time, elapsed time.Duration) Result {
	return Result{
		Success: true,
		Data:    data,
		Metadata: &Metadata{
			Tool:      tool,
			Timestamp: at,
			ElapsedMS: elapsed.Milliseconds(),
		},
	}
}

// Fail wraps a tool error in a failure envelope.
func Fail(err *ToolError) Result {
	return Result{Success: false, Err: err}
}
