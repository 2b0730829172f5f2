package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusPolicyConfiguredCompletedSet(t *testing.T) {
	p := NewStatusPolicy(
		[]string{"Done", " shipped "},
		[]string{"returned"},
		[]string{"storno"},
		nil,
	)

	assert.True(t, p.IsCompleted("done"))
	assert.True(t, p.IsCompleted("  SHIPPED "))
	assert.False(t, p.IsCompleted("pending"))
	assert.False(t, p.IsCompleted("returned"))

	assert.Equal(t, StatusCompleted, p.Category("Done"))
	assert.Equal(t, StatusReturned, p.Category("Returned"))
	assert.Equal(t, StatusCancelled, p.Category("STORNO"))
	assert.Equal(t, StatusOther, p.Category("pending"))
}

func TestStatusPolicyFallbackCompleted(t *testing.T) {
	// With no completed set configured, everything outside the exclusion
	// lists counts as completed.
	p := NewStatusPolicy(nil, []string{"returned", "refunded"}, []string{"cancelled"}, []string{"complaint"})

	assert.True(t, p.IsCompleted("delivered"))
	assert.True(t, p.IsCompleted("whatever"))
	assert.False(t, p.IsCompleted("Refunded"))
	assert.False(t, p.IsCompleted("cancelled"))

	assert.Equal(t, StatusComplaint, p.Category("complaint"))
	assert.Equal(t, StatusCompleted, p.Category("anything-else"))
}

func TestStatusPolicyExclusionWinsOverCompleted(t *testing.T) {
	// A status listed both as completed and returned keeps the exclusion
	p := NewStatusPolicy([]string{"done", "returned"}, []string{"returned"}, nil, nil)
	assert.False(t, p.IsCompleted("returned"))
	assert.Equal(t, StatusReturned, p.Category("returned"))
}
