package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{name: "success", err: nil, want: Found},
		{name: "revert with reason", err: errors.New("execution reverted: Property not found"), want: NotFound},
		{name: "bare revert", err: errors.New("execution reverted"), want: NotFound},
		{name: "wrapped revert", err: fmt.Errorf("call getPropertyDetails: %w", errors.New("execution reverted: nope")), want: NotFound},
		{name: "connection refused", err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), want: TransientError},
		{name: "timeout", err: errors.New("context deadline exceeded"), want: TransientError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestRevertReason(t *testing.T) {
	assert.Equal(t, "Property is mortgaged",
		RevertReason(errors.New("execution reverted: Property is mortgaged")))
	assert.Equal(t, "",
		RevertReason(errors.New("execution reverted")))
	assert.Equal(t, "",
		RevertReason(errors.New("connection refused")))
	assert.Equal(t, "", RevertReason(nil))
}
