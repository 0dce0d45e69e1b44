package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCompletion(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	task := &Task{ID: "t1", Status: TaskDone}
	task.DeriveCompletion(now)
	require.NotNil(t, task.CompletedDate)
	assert.Equal(t, now, *task.CompletedDate)

	// A second derivation while still done keeps the original date.
	later := now.Add(time.Hour)
	task.DeriveCompletion(later)
	require.NotNil(t, task.CompletedDate)
	assert.Equal(t, now, *task.CompletedDate)

	// Leaving done clears the date.
	task.Status = TaskInProgress
	task.DeriveCompletion(later)
	assert.Nil(t, task.CompletedDate)

	// Re-entering done stamps a fresh date.
	task.Status = TaskDone
	task.DeriveCompletion(later)
	require.NotNil(t, task.CompletedDate)
	assert.Equal(t, later, *task.CompletedDate)
}

func TestSubtaskLookup(t *testing.T) {
	task := &Task{
		ID: "t1",
		Subtasks: []Subtask{
			{ID: "s1", Title: "first"},
			{ID: "s2", Title: "second"},
		},
	}

	found := task.Subtask("s2")
	require.NotNil(t, found)
	assert.Equal(t, "second", found.Title)

	// The returned pointer aliases the slice element.
	found.Completed = true
	assert.True(t, task.Subtasks[1].Completed)

	assert.Nil(t, task.Subtask("missing"))
}
