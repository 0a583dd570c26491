package reminder_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/mocks"
	"github.com/wordloop/srs-api/internal/service/reminder"
	"github.com/wordloop/srs-api/internal/task"
)

type capturingHandler struct {
	payloads []task.NotificationPayload
}

func (h *capturingHandler) HandleEvent(_ context.Context, event *events.Event) error {
	if event.Type != events.EventTypeNotificationDispatch {
		return nil
	}
	var payload task.NotificationPayload
	if err := event.UnmarshalPayload(&payload); err != nil {
		return err
	}
	h.payloads = append(h.payloads, payload)
	return nil
}

type plannerFixture struct {
	planner  *reminder.Planner
	cards    *mocks.MockCardStore
	users    *mocks.MockUserStore
	clock    *mocks.MockClock
	captured *capturingHandler
	now      time.Time
	userID   uuid.UUID
}

// newPlannerFixture sets the clock to the user's preferred delivery time,
// 09:00 on a Monday.
func newPlannerFixture(t *testing.T) *plannerFixture {
	t.Helper()

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &plannerFixture{
		cards:    mocks.NewMockCardStore(),
		users:    mocks.NewMockUserStore(),
		clock:    mocks.NewMockClock(now),
		captured: &capturingHandler{},
		now:      now,
		userID:   uuid.New(),
	}

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(f.captured)

	f.users.AddUser(&domain.User{
		ID:               f.userID,
		NotificationTime: "09:00",
	})

	f.planner = reminder.NewPlanner(f.cards, f.users, emitter, time.Minute, f.clock, log)
	return f
}

// addDueCard stores a card due before the preferred delivery time.
func (f *plannerFixture) addDueCard(t *testing.T, itemID int64, mutate func(*domain.Card)) *domain.Card {
	t.Helper()
	card, err := domain.NewCard(f.userID, domain.ItemTypeVocab, itemID, f.now.Add(-72*time.Hour))
	require.NoError(t, err)
	due := f.now.Add(-time.Hour)
	card.NextReviewAt = &due
	if mutate != nil {
		mutate(card)
	}
	f.cards.AddCard(card)
	return card
}

func TestPlanUserSingleDueCard(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, reminder.KindDueCard, candidates[0].Kind)
	assert.Equal(t, reminder.CategoryReminder, candidates[0].Category)
	assert.Equal(t, "Your vocab card is ready for review.", candidates[0].Message)
	assert.Equal(t, f.now, candidates[0].DeliverAt)
}

func TestPlanUserDueSummary(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)
	f.addDueCard(t, 2, nil)
	f.addDueCard(t, 3, nil)

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, reminder.KindDueSummary, candidates[0].Kind)
	assert.Equal(t, "You have 3 cards ready for review.", candidates[0].Message)
}

func TestPlanUserOverdueAlert(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	deadline := f.now.Add(6 * time.Hour)
	f.addDueCard(t, 1, func(c *domain.Card) {
		c.IsOverdue = true
		c.OverdueDeadline = &deadline
		c.NextReviewAt = nil
	})
	f.addDueCard(t, 2, nil)

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, reminder.KindOverdueAlert, candidates[0].Kind)
	assert.Equal(t, domain.CategoryEmergency, candidates[0].Category)
	assert.Equal(t, "1 of your cards are overdue and will reset soon. Review them now to keep your progress.", candidates[0].Message)
	assert.Equal(t, reminder.KindDueCard, candidates[1].Kind)
}

func TestPlanUserOutsideTickWindow(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)

	// An hour past the preferred time, the delivery window has closed.
	later := f.now.Add(time.Hour)
	candidates, err := f.planner.PlanUser(context.Background(), f.userID, later)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestPlanUserQuietHoursSuppression(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)

	user, err := f.users.Get(context.Background(), f.userID)
	require.NoError(t, err)
	user.QuietHours = domain.QuietHoursSettings{
		Enabled:         true,
		EmergencyBypass: true,
		Schedules: []domain.QuietHoursSchedule{{
			Name:      "morning focus",
			StartTime: "08:00",
			EndTime:   "10:00",
			DaysOfWeek: []time.Weekday{
				time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
			},
			Enabled: true,
		}},
	}
	require.NoError(t, f.users.Update(context.Background(), user))

	deadline := f.now.Add(6 * time.Hour)
	f.addDueCard(t, 1, func(c *domain.Card) {
		c.IsOverdue = true
		c.OverdueDeadline = &deadline
		c.NextReviewAt = nil
	})
	f.addDueCard(t, 2, nil)

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)

	// The routine reminder is swallowed by the schedule; the overdue alert
	// rides the emergency bypass.
	require.Len(t, candidates, 1)
	assert.Equal(t, reminder.KindOverdueAlert, candidates[0].Kind)
}

func TestPlanUserLookAhead(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)

	tomorrow := f.now.Add(25 * time.Hour)
	card, err := domain.NewCard(f.userID, domain.ItemTypeIdiom, 7, f.now.Add(-72*time.Hour))
	require.NoError(t, err)
	card.NextReviewAt = &tomorrow
	f.cards.AddCard(card)

	// The preview goes out an hour before the preferred time.
	previewTime := f.now.Add(-time.Hour)
	candidates, err := f.planner.PlanUser(context.Background(), f.userID, previewTime)
	require.NoError(t, err)

	require.Len(t, candidates, 1)
	assert.Equal(t, reminder.KindLookAhead, candidates[0].Kind)
	assert.Equal(t, "Heads up: 1 cards come due tomorrow.", candidates[0].Message)
	assert.Equal(t, previewTime, candidates[0].DeliverAt)
}

func TestPlanUserRecentActivitySuppressesDueReminders(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)

	event, err := events.NewEvent(events.EventTypeReviewCompleted, map[string]string{
		"user_id": f.userID.String(),
	})
	require.NoError(t, err)
	require.NoError(t, f.planner.HandleEvent(context.Background(), event))

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)
	assert.Empty(t, candidates, "a user mid-session is not nagged")
}

func TestPlanUserIgnoresOtherEventTypes(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)

	event, err := events.NewEvent(events.EventTypeNotificationDispatch, nil)
	require.NoError(t, err)
	require.NoError(t, f.planner.HandleEvent(context.Background(), event))

	candidates, err := f.planner.PlanUser(context.Background(), f.userID, f.now)
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestRunEmitsDispatchEvents(t *testing.T) {
	t.Parallel()
	f := newPlannerFixture(t)
	f.addDueCard(t, 1, nil)
	f.addDueCard(t, 2, nil)

	require.NoError(t, f.planner.Run(context.Background()))

	require.Len(t, f.captured.payloads, 1)
	payload := f.captured.payloads[0]
	assert.Equal(t, f.userID, payload.UserID)
	assert.Equal(t, reminder.KindDueSummary, payload.Kind)
	assert.Equal(t, reminder.CategoryReminder, payload.Category)
	assert.Equal(t, "You have 2 cards ready for review.", payload.Message)
}
