package tasks

import "github.com/desertthunder/schemax/internal/models"

// Outcome is the single terminal result of a task.
type Outcome struct {
	Snapshot models.Snapshot
}

// Completed reports whether the task finished successfully.
func (o Outcome) Completed() bool { return o.Snapshot.Status == models.StatusCompleted }

// Guard ensures the terminal handling runs at most once per task.
//
// Observe returns the guard to use for the next snapshot, and an outcome only on the
// transition from armed to fired.
type Guard interface {
	Observe(s models.Snapshot) (Guard, *Outcome)
}

// NewGuard returns an armed guard.
func NewGuard() Guard { return armedGuard{} }

type armedGuard struct{}

func (armedGuard) Observe(s models.Snapshot) (Guard, *Outcome) {
	if !s.Status.IsTerminal() {
		return armedGuard{}, nil
	}
	return firedGuard{}, &Outcome{Snapshot: s}
}

// firedGuard absorbs every later snapshot.
type firedGuard struct{}

func (firedGuard) Observe(models.Snapshot) (Guard, *Outcome) { return firedGuard{}, nil }
