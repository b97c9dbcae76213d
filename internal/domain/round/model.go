package round

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrActiveRoundExists = errors.New("an active round already exists")
	ErrDuplicateRound    = errors.New("round already exists for this week")
	ErrNotActive         = errors.New("round is not active")
	ErrNotPending        = errors.New("round is not pending")
)

// Status is the lifecycle state of a weekly round.
//
// Pending -> Active -> Completed, with Pending -> Cancelled as the abort path.
// Completed is terminal and carries the winning numbers.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Round is one weekly betting period, keyed by (year, week number). At most
// one round is Active system-wide at any time.
type Round struct {
	ID             string
	Year           int
	WeekNumber     int
	Status         Status
	WinningNumbers []int
	StartedAt      *time.Time
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

func (r Round) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("round id is required")
	}
	if r.Year < 2000 || r.Year > 2200 {
		return fmt.Errorf("round year %d is out of range", r.Year)
	}
	if r.WeekNumber < 1 || r.WeekNumber > 53 {
		return fmt.Errorf("round week number %d is out of range", r.WeekNumber)
	}
	switch r.Status {
	case StatusPending, StatusActive, StatusCompleted, StatusCancelled:
	default:
		return fmt.Errorf("unknown round status %q", r.Status)
	}

	return nil
}

// Label is the display name boards are shown under, resolved from the round
// at read time rather than stored on the board.
func (r Round) Label() string {
	return fmt.Sprintf("week %d/%d", r.WeekNumber, r.Year)
}

// CanTransition reports whether moving from the round's current status to the
// target is a legal lifecycle step.
func (r Round) CanTransition(to Status) bool {
	switch r.Status {
	case StatusPending:
		return to == StatusActive || to == StatusCancelled
	case StatusActive:
		return to == StatusCompleted
	default:
		return false
	}
}
