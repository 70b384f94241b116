package common

import (
	"context"
	"testing"
)

func TestCorrelationIDContext(t *testing.T) {
	if got := CorrelationIDFromContext(context.Background()); got != "" {
		t.Errorf("expected empty id, got %q", got)
	}

	ctx := WithCorrelationID(context.Background(), "abc")
	if got := CorrelationIDFromContext(ctx); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
}
