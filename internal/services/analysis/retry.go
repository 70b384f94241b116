package analysis

import (
	"context"
	"fmt"
)

// RepairPolicy bounds how many times structured model output is requested.
// After a parse failure, Corrective builds the next prompt from the invalid output.
type RepairPolicy struct {
	MaxAttempts int
	Corrective  func(invalidOutput string) string
}

// generateFunc issues one model call.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// ModelCallError reports a failed model call (transport, timeout, empty reply).
type ModelCallError struct {
	Attempt int
	Err     error
}

func (e *ModelCallError) Error() string {
	return fmt.Sprintf("model call %d failed: %v", e.Attempt, e.Err)
}

func (e *ModelCallError) Unwrap() error { return e.Err }

// ParseError reports that every attempt produced unparseable output.
type ParseError struct {
	Attempts   int
	LastOutput string
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("output unparseable after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// generateStructured asks for output and parses it, issuing corrective prompts
// on parse failure until the policy is exhausted. Model call failures are not
// retried.
func generateStructured[T any](ctx context.Context, generate generateFunc, prompt string, policy RepairPolicy, parse func(string) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	var output string
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && policy.Corrective != nil {
			prompt = policy.Corrective(output)
		}

		var err error
		output, err = generate(ctx, prompt)
		if err != nil {
			return zero, &ModelCallError{Attempt: attempt, Err: err}
		}

		result, err := parse(output)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}

	return zero, &ParseError{Attempts: attempts, LastOutput: output, Err: lastErr}
}
