package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/notesync/internal/actionable"
	"github.com/Iron-Ham/notesync/internal/asynctask"
	"github.com/Iron-Ham/notesync/internal/errors"
	"github.com/Iron-Ham/notesync/internal/event"
	"github.com/Iron-Ham/notesync/internal/logging"
)

var (
	demoSenders = []string{"ana", "bo", "chen", "dara", "eli"}
	demoLines   = []string{
		"did you see the new draft?",
		"pushing my changes now",
		"can you review the plan?",
		"lunch?",
		"the sync looks stuck on my side",
		"merged, thanks!",
	}
)

// errPlanStep is the failure the simulated planner reports.
var errPlanStep = errors.New("planner step failed")

// Simulator stands in for the network and AI collaborators. From background
// goroutines it delivers chat messages, raises friend requests and runs
// plans that sometimes fail, exercising the bus, the task runner and the
// actionable registry the same way real collaborators would.
type Simulator struct {
	bus      *event.Bus
	reg      *actionable.Registry
	runner   *asynctask.Runner
	logger   *logging.Logger
	interval time.Duration

	// PlanDuration is how long a simulated plan runs.
	PlanDuration time.Duration
	// FailureRate is the probability in [0,1] that a plan run fails.
	FailureRate float64

	rng     *rand.Rand
	outage  atomic.Bool
	planSeq atomic.Uint64
}

// NewSimulator creates a Simulator producing roughly one activity per
// interval.
func NewSimulator(bus *event.Bus, reg *actionable.Registry, runner *asynctask.Runner, interval time.Duration, logger *logging.Logger) *Simulator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Simulator{
		bus:          bus,
		reg:          reg,
		runner:       runner,
		logger:       logger.WithComponent("simulator"),
		interval:     interval,
		PlanDuration: 1500 * time.Millisecond,
		FailureRate:  0.4,
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x6e6f7465)),
	}
}

// Run produces activity until ctx is done. It must be the only goroutine
// using the Simulator's random source.
func (s *Simulator) Run(ctx context.Context) error {
	for {
		// Jitter between half and one and a half intervals.
		delay := s.interval/2 + time.Duration(s.rng.Int64N(int64(s.interval)+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		switch roll := s.rng.IntN(100); {
		case roll < 60:
			sender := demoSenders[s.rng.IntN(len(demoSenders))]
			s.DeliverMessage("general", sender, demoLines[s.rng.IntN(len(demoLines))])
		case roll < 75:
			s.FriendRequest(demoSenders[s.rng.IntN(len(demoSenders))])
		case roll < 92:
			s.StartPlan(fmt.Sprintf("plan-%d", s.planSeq.Add(1)), s.rng.Float64() < s.FailureRate)
		default:
			s.SetOutage(!s.outage.Load())
		}
	}
}

// DeliverMessage announces an incoming chat message.
func (s *Simulator) DeliverMessage(conversationID, sender, text string) {
	s.bus.Publish(event.NewMessageAdded(conversationID, sender, text, time.Now()))
}

// FriendRequest raises an actionable item whose action accepts the request
// and removes the item.
func (s *Simulator) FriendRequest(from string) string {
	id := actionable.NewID()
	origin := event.NewMessageAdded("system", from, from+" wants to connect", time.Now())
	s.bus.Publish(origin)

	s.reg.Add(actionable.Item{
		ID:            id,
		GroupID:       "friend:" + from,
		Description:   from + " wants to connect",
		Category:      actionable.CategoryFriendRequest,
		Data:          from,
		OriginEventID: origin.ID,
		Action: func() {
			s.DeliverMessage("system", from, "you are now connected with "+from)
			s.reg.Remove(id)
		},
	})
	return id
}

// StartPlan runs a simulated plan on the task runner. A failed plan raises
// an actionable retry item in the plan's group; a successful one clears the
// group.
func (s *Simulator) StartPlan(planID string, fail bool) *asynctask.Handle[string] {
	s.bus.Publish(event.NewPlanUpdated(planID, event.PlanRunning, ""))

	duration := s.PlanDuration
	h := asynctask.Submit(s.runner, func(ctx context.Context) (string, error) {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(duration):
		}
		if fail {
			return "", fmt.Errorf("%s: %w", planID, errPlanStep)
		}
		return planID + " finished", nil
	})

	h.OnSuccess(func(summary string) {
		if h.Cancelled() {
			return
		}
		s.reg.RemoveGroup(planID)
		s.bus.Publish(event.NewPlanUpdated(planID, event.PlanCompleted, summary))
	})
	h.OnFailure(func(err error) {
		if h.Cancelled() {
			return
		}
		origin := event.NewPlanUpdated(planID, event.PlanFailed, err.Error())
		s.bus.Publish(origin)

		id := actionable.NewID()
		s.reg.Add(actionable.Item{
			ID:            id,
			GroupID:       planID,
			Description:   "plan " + planID + " failed: retry",
			Category:      actionable.CategoryPlanFailure,
			Data:          err,
			OriginEventID: origin.ID,
			Action: func() {
				s.reg.Remove(id)
				s.StartPlan(planID, false)
			},
		})
	})
	return h
}

// SetOutage toggles the simulated sync-service outage seen by SyncCheck.
func (s *Simulator) SetOutage(down bool) {
	if s.outage.Swap(down) != down {
		s.logger.Debug("simulated outage changed", "down", down)
	}
}

// SyncCheck is a health.Check for the simulated sync service.
func (s *Simulator) SyncCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.outage.Load() {
		return fmt.Errorf("sync service unreachable")
	}
	return nil
}
