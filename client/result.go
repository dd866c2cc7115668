package client

import "github.com/smnsjas/go-attackmate/rest"

// FinalState is the server's post-execution snapshot.
type FinalState = rest.FinalState

// Result is the outcome of a remote execution the server answered.
type Result struct {
	// Success is the playbook outcome reported by the server. It is false
	// when the server omitted the field.
	Success bool

	// Message is the server's human-readable summary.
	Message string

	// FinalState is nil when the server sent no final_state.
	FinalState *FinalState

	// CurrentToken is the renewed token, if the server issued one.
	CurrentToken string
}

// Variables returns the final variable store, or nil if there is none.
func (r *Result) Variables() map[string]any {
	if r == nil || r.FinalState == nil {
		return nil
	}
	return r.FinalState.Variables
}

func newResult(resp *rest.ExecutionResponse) *Result {
	return &Result{
		Success:      resp.Success,
		Message:      resp.Message,
		FinalState:   resp.FinalState,
		CurrentToken: resp.CurrentToken,
	}
}
