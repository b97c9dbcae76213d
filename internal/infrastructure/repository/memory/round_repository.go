package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/numbersclub/numbers-pool/internal/domain/round"
)

type RoundRepository struct {
	mu    sync.RWMutex
	items map[string]round.Round
}

func NewRoundRepository() *RoundRepository {
	return &RoundRepository{items: make(map[string]round.Round)}
}

func (r *RoundRepository) Create(_ context.Context, rd round.Round) (round.Round, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if existing.Year == rd.Year && existing.WeekNumber == rd.WeekNumber {
			return round.Round{}, round.ErrDuplicateRound
		}
	}
	if rd.Status == round.StatusActive {
		for _, existing := range r.items {
			if existing.Status == round.StatusActive {
				return round.Round{}, round.ErrActiveRoundExists
			}
		}
	}

	r.items[rd.ID] = rd
	return rd, nil
}

func (r *RoundRepository) GetByID(_ context.Context, roundID string) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.items[roundID]
	return rd, ok, nil
}

func (r *RoundRepository) GetByWeek(_ context.Context, year, week int) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rd := range r.items {
		if rd.Year == year && rd.WeekNumber == week {
			return rd, true, nil
		}
	}
	return round.Round{}, false, nil
}

func (r *RoundRepository) GetActive(_ context.Context) (round.Round, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.activeLocked()
	return rd, ok, nil
}

func (r *RoundRepository) PromoteNextPending(_ context.Context, at time.Time) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, active := r.activeLocked(); active {
		return round.Round{}, false, nil
	}

	var next round.Round
	found := false
	for _, rd := range r.items {
		if rd.Status != round.StatusPending {
			continue
		}
		if !found || earlierWeek(rd, next) {
			next = rd
			found = true
		}
	}
	if !found {
		return round.Round{}, false, nil
	}

	next.Status = round.StatusActive
	next.StartedAt = &at
	r.items[next.ID] = next
	return next, true, nil
}

func (r *RoundRepository) Complete(_ context.Context, roundID string, winningNumbers []int, at time.Time) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd, ok := r.items[roundID]
	if !ok {
		return round.Round{}, false, nil
	}
	if rd.Status != round.StatusActive {
		return round.Round{}, true, round.ErrNotActive
	}

	rd.Status = round.StatusCompleted
	rd.WinningNumbers = append([]int(nil), winningNumbers...)
	rd.CompletedAt = &at
	r.items[roundID] = rd
	return rd, true, nil
}

func (r *RoundRepository) Cancel(_ context.Context, roundID string) (round.Round, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rd, ok := r.items[roundID]
	if !ok {
		return round.Round{}, false, nil
	}
	if rd.Status != round.StatusPending {
		return round.Round{}, true, round.ErrNotPending
	}

	rd.Status = round.StatusCancelled
	r.items[roundID] = rd
	return rd, true, nil
}

func (r *RoundRepository) List(_ context.Context) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0, len(r.items))
	for _, rd := range r.items {
		out = append(out, rd)
	}
	sortRoundsByWeek(out)
	return out, nil
}

func (r *RoundRepository) ListCompleted(_ context.Context) ([]round.Round, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]round.Round, 0)
	for _, rd := range r.items {
		if rd.Status == round.StatusCompleted {
			out = append(out, rd)
		}
	}
	sortRoundsByWeek(out)
	return out, nil
}

// statusOf is used by the board repository to re-check the round while it
// holds its own purchase lock. Callers only need a consistent point-in-time
// read, so the round lock is taken briefly here.
func (r *RoundRepository) statusOf(roundID string) (round.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rd, ok := r.items[roundID]
	if !ok {
		return "", false
	}
	return rd.Status, true
}

func (r *RoundRepository) activeLocked() (round.Round, bool) {
	for _, rd := range r.items {
		if rd.Status == round.StatusActive {
			return rd, true
		}
	}
	return round.Round{}, false
}

func earlierWeek(a, b round.Round) bool {
	if a.Year != b.Year {
		return a.Year < b.Year
	}
	return a.WeekNumber < b.WeekNumber
}

func sortRoundsByWeek(rounds []round.Round) {
	sort.SliceStable(rounds, func(i, j int) bool {
		return earlierWeek(rounds[i], rounds[j])
	})
}
