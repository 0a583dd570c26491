package srs

import (
	"sort"
	"time"

	"github.com/wordloop/srs-api/internal/domain"
)

// SortDueCards orders a review batch deterministically:
//
//  1. overdue cards before everything else
//  2. higher wrong streak first
//  3. earlier due time first
//  4. lower stage first
//  5. lower lifetime success rate first
//  6. card ID ascending
//
// The ID tiebreak makes the order total, so batch selection is
// reproducible for identical inputs.
func SortDueCards(cards []*domain.Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		a, b := cards[i], cards[j]

		if a.IsOverdue != b.IsOverdue {
			return a.IsOverdue
		}

		if a.WrongStreakCount != b.WrongStreakCount {
			return a.WrongStreakCount > b.WrongStreakCount
		}

		aDue, bDue := dueOrInfinity(a), dueOrInfinity(b)
		if !aDue.Equal(bDue) {
			return aDue.Before(bDue)
		}

		if a.Stage != b.Stage {
			return a.Stage < b.Stage
		}

		aRate, bRate := a.SuccessRate(), b.SuccessRate()
		if aRate != bRate {
			return aRate < bRate
		}

		return a.ID.String() < b.ID.String()
	})
}

// dueOrInfinity treats a card with no due timestamp as immediately due by
// mapping it to the zero time, which sorts before any real timestamp.
func dueOrInfinity(c *domain.Card) time.Time {
	if due := c.DueAt(); due != nil {
		return *due
	}
	return time.Time{}
}

// BatchRequest describes one study session's constraints.
type BatchRequest struct {
	DailyGoal        int
	MinutesAvailable float64
	MinutesPerCard   float64
	DueCount         int
	OverdueCount     int
}

// BatchSize computes how many cards a session should contain: the smallest
// of the daily goal, the time budget, and the number of due cards, but
// never below the guaranteed floor that keeps overdue cards present in
// every session. The floor is the larger of the capped overdue count and
// half the goal, and can never exceed the number of cards actually due.
func BatchSize(req BatchRequest, params *Params) int {
	if req.DueCount <= 0 || req.DailyGoal <= 0 {
		return 0
	}

	size := req.DailyGoal

	if req.MinutesPerCard > 0 {
		byTime := int(req.MinutesAvailable / req.MinutesPerCard)
		if byTime < size {
			size = byTime
		}
	}

	if req.DueCount < size {
		size = req.DueCount
	}

	overdueFloor := req.OverdueCount
	if limit := int(float64(req.DailyGoal) * params.OverdueShareOfGoal); overdueFloor > limit {
		overdueFloor = limit
	}

	floor := int(float64(req.DailyGoal) * params.MinimumShareOfGoal)
	if overdueFloor > floor {
		floor = overdueFloor
	}
	if floor > req.DueCount {
		floor = req.DueCount
	}

	if size < floor {
		size = floor
	}

	return size
}
