package allocator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		expected string
	}{
		{
			name:     "empty snapshot starts at one",
			existing: []string{},
			expected: "FAULT-0001",
		},
		{
			name:     "nil snapshot starts at one",
			existing: nil,
			expected: "FAULT-0001",
		},
		{
			name:     "continues from maximum, gaps ignored",
			existing: []string{"FAULT-0001", "FAULT-0003"},
			expected: "FAULT-0004",
		},
		{
			name:     "input order does not matter",
			existing: []string{"FAULT-0007", "FAULT-0002", "FAULT-0005"},
			expected: "FAULT-0008",
		},
		{
			name:     "foreign ids are skipped",
			existing: []string{"FAULT-0002", "TASK-0090", "FAULT-abc", "FAULT-"},
			expected: "FAULT-0003",
		},
		{
			name:     "grows past four digits",
			existing: []string{"FAULT-9999"},
			expected: "FAULT-10000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allocate(tt.existing))
		})
	}
}

func TestAllocate_Deterministic(t *testing.T) {
	snapshot := []string{"FAULT-0010", "FAULT-0011"}
	first := Allocate(snapshot)
	second := Allocate(snapshot)
	assert.Equal(t, first, second)
	assert.Equal(t, "FAULT-0012", first)
}
