package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// TraversalWorkflowName is the registered name of TraversalWorkflow.
const TraversalWorkflowName = "TraversalWorkflow"

// TraversalInput is the input for the traversal workflow.
type TraversalInput struct {
	Profile string
	// Ticks is the maximum number of ticks to run.
	Ticks int
	// Interval is the wait between ticks; zero runs them back to back.
	Interval time.Duration
	// StopAtHome ends the run on the first frame drawn at home.
	StopAtHome bool
}

// TraversalResult summarizes a traversal run.
type TraversalResult struct {
	Frames      int
	Faults      int
	Skipped     int
	LastCounter int
	LastFrameID string
	ReachedHome bool
}

// TraversalWorkflow drives one profile's session tick by tick as a durable
// run. Each tick is a single-attempt activity: a retried tick would advance
// the animation counter twice.
func TraversalWorkflow(ctx workflow.Context, input TraversalInput) (*TraversalResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting traversal workflow", "profile", input.Profile, "ticks", input.Ticks)

	if input.Profile == "" || input.Ticks <= 0 {
		return nil, temporal.NewNonRetryableApplicationError("profile and a positive tick count are required", "InvalidInput", errors.New("invalid traversal input"))
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})

	result := &TraversalResult{}
	for i := 0; i < input.Ticks; i++ {
		var step TraversalStep
		if err := workflow.ExecuteActivity(ctx, "AdvanceSession", input.Profile).Get(ctx, &step); err != nil {
			logger.Warn("traversal tick failed", "tick", i, "error", err)
			return result, err
		}

		switch {
		case step.Skipped:
			result.Skipped++
		case step.Fault != "":
			result.Faults++
		default:
			result.Frames++
			result.LastCounter = step.Counter
			result.LastFrameID = step.FrameID
			if step.Home() {
				result.ReachedHome = true
			}
		}

		if input.StopAtHome && result.ReachedHome {
			break
		}
		if input.Interval > 0 && i < input.Ticks-1 {
			if err := workflow.Sleep(ctx, input.Interval); err != nil {
				return result, err
			}
		}
	}

	logger.Info("Traversal finished", "frames", result.Frames, "faults", result.Faults, "home", result.ReachedHome)
	return result, nil
}
