package models

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Valid reports whether s is one of the four recognized statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

// AggregateStatus derives a task's overall status from its assignee statuses.
//
// Rules:
//   - no assignees: pending
//   - all completed: completed
//   - any in_progress: in_progress, even when others are completed
//   - all cancelled: cancelled
//   - anything else (e.g. completed mixed with pending, or completed mixed
//     with cancelled): pending
//
// The result is a pure function of its input, so concurrent recomputations
// over the same persisted rows always converge to the same value.
func AggregateStatus(statuses []TaskStatus) TaskStatus {
	if len(statuses) == 0 {
		return TaskStatusPending
	}

	completed := 0
	cancelled := 0
	for _, s := range statuses {
		switch s {
		case TaskStatusCompleted:
			completed++
		case TaskStatusInProgress:
			return TaskStatusInProgress
		case TaskStatusCancelled:
			cancelled++
		}
	}

	if completed == len(statuses) {
		return TaskStatusCompleted
	}
	if cancelled == len(statuses) {
		return TaskStatusCancelled
	}
	return TaskStatusPending
}
