package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wordloop/srs-api/internal/domain"
	"github.com/wordloop/srs-api/internal/events"
	"github.com/wordloop/srs-api/internal/platform/clock"
	"github.com/wordloop/srs-api/internal/platform/logger"
	"github.com/wordloop/srs-api/internal/store"
	"github.com/wordloop/srs-api/internal/task"
)

// DefaultNotificationTime is used when a user never set a preferred
// delivery time.
const DefaultNotificationTime = "09:00"

// lookAheadLead is how far before the preferred time the next-day preview
// goes out.
const lookAheadLead = time.Hour

// recentActivityWindow suppresses due reminders for users who reviewed
// within this window; someone mid-session does not need a nudge.
const recentActivityWindow = time.Hour

// Candidate is one planned notification with its intended delivery time.
type Candidate struct {
	UserID    uuid.UUID
	Kind      string
	Category  string
	Message   string
	DeliverAt time.Time
}

// Planner decides, per tick, which notifications should go out. Candidates
// that pass the quiet-hours policy are emitted as dispatch events for the
// task layer to deliver.
type Planner struct {
	cardStore store.CardStore
	userStore store.UserStore
	emitter   events.EventEmitter
	interval  time.Duration
	clock     clock.Clock
	logger    *slog.Logger

	// lastActivity tracks recent reviews per user, fed by review-completed
	// events.
	activityMu   sync.RWMutex
	lastActivity map[uuid.UUID]time.Time
}

// NewPlanner creates a Planner that evaluates delivery windows of the
// given tick interval.
func NewPlanner(
	cardStore store.CardStore,
	userStore store.UserStore,
	emitter events.EventEmitter,
	interval time.Duration,
	clk clock.Clock,
	log *slog.Logger,
) *Planner {
	if cardStore == nil {
		panic("cardStore cannot be nil")
	}
	if userStore == nil {
		panic("userStore cannot be nil")
	}
	if emitter == nil {
		panic("emitter cannot be nil")
	}
	if interval <= 0 {
		interval = time.Minute
	}
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = slog.Default()
	}

	return &Planner{
		cardStore:    cardStore,
		userStore:    userStore,
		emitter:      emitter,
		interval:     interval,
		clock:        clk,
		logger:       log.With(slog.String("component", "reminder_planner")),
		lastActivity: make(map[uuid.UUID]time.Time),
	}
}

// Run executes one planning tick over all users. Per-user failures are
// logged and skipped.
func (p *Planner) Run(ctx context.Context) error {
	log := logger.FromContextOrDefault(ctx, p.logger)
	now := p.clock.Now()

	userIDs, err := p.userStore.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	emitted := 0
	for _, userID := range userIDs {
		candidates, err := p.PlanUser(ctx, userID, now)
		if err != nil {
			log.Error("failed to plan reminders for user",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
			continue
		}

		for _, c := range candidates {
			if err := p.emitDispatch(ctx, c); err != nil {
				log.Error("failed to emit notification dispatch",
					slog.String("user_id", userID.String()),
					slog.String("kind", c.Kind),
					slog.String("error", err.Error()))
				continue
			}
			emitted++
		}
	}

	if emitted > 0 {
		log.Info("reminder tick finished",
			slog.Int("user_count", len(userIDs)),
			slog.Int("notifications_emitted", emitted))
	}

	return nil
}

// PlanUser builds the user's notification candidates whose delivery time
// falls inside the current tick window and which the quiet-hours policy
// allows. The returned slice may be empty.
func (p *Planner) PlanUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]Candidate, error) {
	user, err := p.userStore.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	preferred := p.preferredTime(user, now)

	var candidates []Candidate

	if !p.recentlyActive(userID, now) {
		due, err := p.dueCandidates(ctx, user, preferred, now)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, due...)
	}

	lookAhead, err := p.lookAheadCandidate(ctx, user, preferred, now)
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, lookAhead...)

	// Keep only candidates deliverable in this tick and allowed by the
	// user's quiet-hours schedules.
	kept := candidates[:0]
	for _, c := range candidates {
		if !p.inTickWindow(c.DeliverAt, now) {
			continue
		}
		if !user.QuietHours.AllowsNotification(c.Category, c.DeliverAt) {
			p.logger.Debug("notification suppressed by quiet hours",
				slog.String("user_id", userID.String()),
				slog.String("kind", c.Kind),
				slog.Time("deliver_at", c.DeliverAt))
			continue
		}
		kept = append(kept, c)
	}

	return kept, nil
}

// dueCandidates builds the reminder for cards due now: one message for a
// single card, a summary for several, and an escalated alert when overdue
// cards are burning their grace window.
func (p *Planner) dueCandidates(
	ctx context.Context,
	user *domain.User,
	preferred time.Time,
	now time.Time,
) ([]Candidate, error) {
	dueCards, err := p.cardStore.ListDue(ctx, user.ID, preferred, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to list due cards: %w", err)
	}

	if len(dueCards) == 0 {
		return nil, nil
	}

	overdueCount := 0
	for _, c := range dueCards {
		if c.IsOverdue {
			overdueCount++
		}
	}

	var candidates []Candidate

	if overdueCount > 0 {
		candidates = append(candidates, Candidate{
			UserID:    user.ID,
			Kind:      KindOverdueAlert,
			Category:  domain.CategoryEmergency,
			Message:   fmt.Sprintf("%d of your cards are overdue and will reset soon. Review them now to keep your progress.", overdueCount),
			DeliverAt: preferred,
		})
	}

	regular := len(dueCards) - overdueCount
	switch {
	case regular == 1:
		var single *domain.Card
		for _, c := range dueCards {
			if !c.IsOverdue {
				single = c
				break
			}
		}
		candidates = append(candidates, Candidate{
			UserID:    user.ID,
			Kind:      KindDueCard,
			Category:  CategoryReminder,
			Message:   fmt.Sprintf("Your %s card is ready for review.", single.ItemType),
			DeliverAt: preferred,
		})
	case regular > 1:
		candidates = append(candidates, Candidate{
			UserID:    user.ID,
			Kind:      KindDueSummary,
			Category:  CategoryReminder,
			Message:   fmt.Sprintf("You have %d cards ready for review.", regular),
			DeliverAt: preferred,
		})
	}

	return candidates, nil
}

// lookAheadCandidate previews tomorrow's load an hour before the preferred
// time.
func (p *Planner) lookAheadCandidate(
	ctx context.Context,
	user *domain.User,
	preferred time.Time,
	now time.Time,
) ([]Candidate, error) {
	tomorrowStart := startOfDay(now).Add(24 * time.Hour)
	tomorrowEnd := tomorrowStart.Add(24 * time.Hour)

	count, err := p.cardStore.CountDueOn(ctx, user.ID, tomorrowStart, tomorrowEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to count tomorrow's due cards: %w", err)
	}

	if count == 0 {
		return nil, nil
	}

	return []Candidate{{
		UserID:    user.ID,
		Kind:      KindLookAhead,
		Category:  CategoryReminder,
		Message:   fmt.Sprintf("Heads up: %d cards come due tomorrow.", count),
		DeliverAt: preferred.Add(-lookAheadLead),
	}}, nil
}

// emitDispatch publishes one candidate as a notification dispatch event.
func (p *Planner) emitDispatch(ctx context.Context, c Candidate) error {
	event, err := events.NewEvent(events.EventTypeNotificationDispatch, task.NotificationPayload{
		UserID:   c.UserID,
		Kind:     c.Kind,
		Category: c.Category,
		Message:  c.Message,
	})
	if err != nil {
		return fmt.Errorf("failed to build dispatch event: %w", err)
	}

	return p.emitter.EmitEvent(ctx, event)
}

// HandleEvent implements events.EventHandler. Review-completed events feed
// the recent-activity suppression so an active user is not nagged about
// cards they are already reviewing.
func (p *Planner) HandleEvent(ctx context.Context, event *events.Event) error {
	if event.Type != events.EventTypeReviewCompleted {
		return nil
	}

	var payload struct {
		UserID uuid.UUID `json:"user_id"`
	}
	if err := event.UnmarshalPayload(&payload); err != nil {
		return fmt.Errorf("failed to unmarshal review-completed payload: %w", err)
	}

	p.activityMu.Lock()
	p.lastActivity[payload.UserID] = p.clock.Now()
	p.activityMu.Unlock()

	return nil
}

// Ensure Planner consumes review-completed events
var _ events.EventHandler = (*Planner)(nil)

func (p *Planner) recentlyActive(userID uuid.UUID, now time.Time) bool {
	p.activityMu.RLock()
	defer p.activityMu.RUnlock()

	last, ok := p.lastActivity[userID]
	return ok && now.Sub(last) < recentActivityWindow
}

// preferredTime resolves the user's delivery time on the current day.
func (p *Planner) preferredTime(user *domain.User, now time.Time) time.Time {
	raw := user.NotificationTime
	if raw == "" {
		raw = DefaultNotificationTime
	}

	ct, err := domain.ParseClockTime(raw)
	if err != nil {
		ct, _ = domain.ParseClockTime(DefaultNotificationTime)
	}

	day := startOfDay(now)
	return day.Add(time.Duration(ct) * time.Minute)
}

// inTickWindow reports whether the delivery time falls within the current
// planning tick [now, now+interval).
func (p *Planner) inTickWindow(deliverAt, now time.Time) bool {
	return !deliverAt.Before(now) && deliverAt.Before(now.Add(p.interval))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
