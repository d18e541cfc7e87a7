package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/JaimeStill/postbox/pkg/formatting"
)

// Execute runs one capture run end to end under the configured time budget.
// The graph absorbs degraded paths internally (auth failure, empty page,
// nothing accepted) by routing to finalize, so every invocation that builds
// a graph yields exactly one Report.
func Execute(ctx context.Context, rt *Runtime) (*Report, error) {
	budget := rt.Capture.TimeBudgetDuration()
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	now := time.Now().UTC()
	run := Run{
		ID:        uuid.New(),
		Date:      formatting.Date(now),
		StartedAt: now,
		Deadline:  now.Add(budget - rt.Capture.SafetyMarginDuration()),
	}

	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyRun, run)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractReport(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("postbox-capture")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("authenticate", AuthenticateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("enumerate", EnumerateNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("classify", ClassifyNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("store", StoreNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("finalize", FinalizeNode(rt)); err != nil {
		return nil, err
	}

	// authenticate → enumerate (when the session signed in)
	if err := graph.AddEdge("authenticate", "enumerate", sessionReady); err != nil {
		return nil, err
	}

	// authenticate → finalize (auth failure still produces a report)
	if err := graph.AddEdge("authenticate", "finalize", state.Not(sessionReady)); err != nil {
		return nil, err
	}

	// enumerate → classify (when candidates exist)
	if err := graph.AddEdge("enumerate", "classify", hasCandidates); err != nil {
		return nil, err
	}

	// enumerate → finalize (empty day or enumeration failure)
	if err := graph.AddEdge("enumerate", "finalize", state.Not(hasCandidates)); err != nil {
		return nil, err
	}

	// classify → store (when anything was accepted)
	if err := graph.AddEdge("classify", "store", anyAccepted); err != nil {
		return nil, err
	}

	// classify → finalize (everything rejected)
	if err := graph.AddEdge("classify", "finalize", state.Not(anyAccepted)); err != nil {
		return nil, err
	}

	// store → finalize (unconditional)
	if err := graph.AddEdge("store", "finalize", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("authenticate"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("finalize"); err != nil {
		return nil, err
	}

	return graph, nil
}

func extractRun(s state.State) (*Run, error) {
	val, ok := s.Get(KeyRun)
	if !ok {
		return nil, fmt.Errorf("missing %s in state", KeyRun)
	}

	run, ok := val.(Run)
	if !ok {
		return nil, fmt.Errorf("%s is not Run", KeyRun)
	}

	return &run, nil
}

func extractReport(s state.State) (*Report, error) {
	val, ok := s.Get(KeyReport)
	if !ok {
		return nil, fmt.Errorf("%w: missing %s in final state", ErrNoReport, KeyReport)
	}

	report, ok := val.(Report)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not Report", ErrNoReport, KeyReport)
	}

	return &report, nil
}

func sessionReady(s state.State) bool {
	run, err := extractRun(s)
	if err != nil {
		return false
	}
	return run.SessionReady
}

func hasCandidates(s state.State) bool {
	run, err := extractRun(s)
	if err != nil {
		return false
	}
	return len(run.Candidates) > 0 && !run.HasStageError(StageEnumeration)
}

func anyAccepted(s state.State) bool {
	run, err := extractRun(s)
	if err != nil {
		return false
	}
	return len(run.Accepted()) > 0
}
