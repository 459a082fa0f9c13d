package selection

import (
	"context"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/topoviz/pkg/errors"
	"github.com/matzehuels/topoviz/pkg/highlight"
	"github.com/matzehuels/topoviz/pkg/observability"
	"github.com/matzehuels/topoviz/pkg/pathquery"
	"github.com/matzehuels/topoviz/pkg/topology"
)

// DefaultConcurrency bounds the workload fan-out when Options leaves it unset.
const DefaultConcurrency = 4

// Options configures a [Controller].
type Options struct {
	// Collection names the topology collection queries run against.
	Collection string

	// Querier answers path queries. Required.
	Querier pathquery.Querier

	// Store records workload runs. Defaults to an unbounded [MemoryStore].
	Store WorkloadStore

	// Mode is the initial mode. Defaults to [ModeFree].
	Mode Mode

	// Concurrency bounds simultaneous workload pair queries.
	Concurrency int

	// Direction is sent with every query. Defaults to outbound.
	Direction pathquery.Direction

	// ExcludedCountries is sent with sovereignty queries.
	ExcludedCountries []string
}

// Controller is the selection state machine for one topology. It is safe
// for concurrent use.
type Controller struct {
	mu      sync.Mutex
	opts    Options
	model   *topology.Model
	engine  *highlight.Engine
	querier pathquery.Querier
	store   WorkloadStore
	state   State
}

// New returns a controller over m in its initial state.
func New(m *topology.Model, opts Options) (*Controller, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeDataShape, "selection needs a topology")
	}
	if opts.Querier == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "selection needs a path querier")
	}
	if opts.Mode == "" {
		opts.Mode = ModeFree
	}
	if _, err := ParseMode(string(opts.Mode)); err != nil {
		return nil, err
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore(nil, 0)
	}
	c := &Controller{
		opts:    opts,
		model:   m,
		engine:  highlight.NewEngine(m),
		querier: opts.Querier,
		store:   opts.Store,
	}
	c.state = State{Collection: opts.Collection, Mode: opts.Mode, Phase: initialPhase(opts.Mode)}
	return c, nil
}

// =============================================================================
// Snapshots
// =============================================================================

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// Marks returns a snapshot of the current highlight marks.
func (c *Controller) Marks() highlight.Marks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engine.Marks()
}

// Model returns the topology the controller selects on.
func (c *Controller) Model() *topology.Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Store returns the workload store.
func (c *Controller) Store() WorkloadStore { return c.store }

func (c *Controller) snapshot() State {
	s := c.state
	s.Chain = slices.Clone(s.Chain)
	s.Members = slices.Clone(s.Members)
	if s.Annotation != nil {
		a := *s.Annotation
		s.Annotation = &a
	}
	return s
}

// =============================================================================
// Resets
// =============================================================================

// SetMode switches mode. Every switch, including to the current mode,
// resets selection, marks and the workload store.
func (c *Controller) SetMode(m Mode) (State, error) {
	m, err := ParseMode(string(m))
	if err != nil {
		return State{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Mode = m
	c.resetLocked()
	c.store.Clear()
	return c.snapshot(), nil
}

// SetCollection replaces the topology. Selection, marks and the workload
// store are reset.
func (c *Controller) SetCollection(collection string, m *topology.Model) (State, error) {
	if m == nil {
		return State{}, errors.New(errors.ErrCodeDataShape, "selection needs a topology")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = m
	c.engine = highlight.NewEngine(m)
	c.state.Collection = collection
	c.resetLocked()
	c.store.Clear()
	return c.snapshot(), nil
}

// Reset clears the current mode's selection, as a background tap does.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	return c.snapshot()
}

func (c *Controller) resetLocked() {
	c.engine.Clear()
	c.state = State{
		Collection: c.state.Collection,
		Mode:       c.state.Mode,
		Phase:      initialPhase(c.state.Mode),
		Generation: c.state.Generation + 1,
	}
}

// =============================================================================
// Taps
// =============================================================================

// Tap handles a tap on node id. An empty id is a background tap. Taps on
// ids the topology does not know are INVALID_INPUT.
func (c *Controller) Tap(id string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.resetLocked()
		return c.snapshot(), nil
	}
	if !c.model.Has(id) {
		return c.snapshot(), errors.New(errors.ErrCodeInvalidInput, "unknown node %q", id)
	}

	switch c.state.Mode {
	case ModeSequential:
		c.tapSequential(id)
	case ModeWorkload:
		c.tapWorkload(id)
	default:
		c.tapFree(id)
	}
	return c.snapshot(), nil
}

func (c *Controller) tapFree(id string) {
	s := &c.state
	switch s.Phase {
	case PhaseIdle:
		s.Source = id
		s.Phase = PhaseSourceSelected
	case PhaseSourceSelected:
		if id == s.Source {
			return
		}
		s.Destination = id
		s.Phase = PhaseDestinationSelected
	default:
		if id == s.Source || id == s.Destination {
			return
		}
		// A third node starts a new selection; in-flight answers go stale.
		c.resetLocked()
		c.state.Source = id
		c.state.Phase = PhaseSourceSelected
	}
	c.engine.MarkSelection(c.state.Source, c.state.Destination)
}

func (c *Controller) tapSequential(id string) {
	s := &c.state
	if n := len(s.Chain); n > 0 && !c.model.Adjacent(s.Chain[n-1], id) {
		return
	}
	s.Chain = append(s.Chain, id)
	s.Phase = PhaseChaining
	ann := c.engine.ApplyChain(s.Chain)
	s.Annotation = &ann
}

func (c *Controller) tapWorkload(id string) {
	s := &c.state
	if s.Phase == PhaseComputing {
		return
	}
	if i := slices.Index(s.Members, id); i >= 0 {
		s.Members = slices.Delete(s.Members, i, i+1)
	} else {
		s.Members = append(s.Members, id)
	}
	s.Phase = PhaseCollecting
	c.engine.MarkMembers(s.Members)
}

// =============================================================================
// Free-mode queries
// =============================================================================

// ChooseConstraint queries the path between the selected source and
// destination under constraint. It is legal once a destination is selected.
//
// On success the path is highlighted. A completed query that finds no path
// returns PATH_NOT_FOUND and keeps the selection for a retry; a failed query
// returns PATH_QUERY_FAILED with the selection likewise kept. If the
// selection changed while the query was in flight the answer is dropped and
// STALE_RESULT is returned.
func (c *Controller) ChooseConstraint(ctx context.Context, constraint pathquery.Constraint) (State, error) {
	constraint, err := pathquery.ParseConstraint(string(constraint))
	if err != nil {
		return c.State(), err
	}

	c.mu.Lock()
	if !c.state.CanChooseConstraint() {
		defer c.mu.Unlock()
		return c.snapshot(), errors.New(errors.ErrCodeInvalidState,
			"constraint needs a source and destination in free mode (mode %s, phase %s)", c.state.Mode, c.state.Phase)
	}
	gen := c.state.Generation
	req := c.request(c.state.Source, c.state.Destination, constraint)
	c.state.Constraint = constraint
	c.state.Phase = PhaseQueryInFlight
	c.state.NoPath, c.state.Error, c.state.ErrorCode = false, "", ""
	querier := c.querier
	c.mu.Unlock()

	res, qerr := querier.Query(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Generation != gen {
		return c.snapshot(), errors.New(errors.ErrCodeStale, "selection changed while querying %s -> %s", req.Source, req.Destination)
	}

	switch {
	case qerr != nil:
		if !errors.Has(qerr, errors.ErrCodePathQuery) && !errors.Has(qerr, errors.ErrCodeInvalidInput) {
			qerr = errors.Wrap(errors.ErrCodePathQuery, qerr, "%s path %s -> %s", constraint, req.Source, req.Destination)
		}
		c.fail(qerr)
		return c.snapshot(), qerr
	case res == nil || !res.Found:
		c.state.Phase = PhaseDestinationSelected
		c.state.NoPath = true
		c.state.ErrorCode = errors.ErrCodePathNotFound
		return c.snapshot(), res.Err()
	}

	ann, err := c.engine.ApplyPath(res)
	if err != nil {
		c.fail(err)
		return c.snapshot(), err
	}
	c.state.Phase = PhasePathHighlighted
	c.state.Annotation = &ann
	return c.snapshot(), nil
}

// fail returns a free-mode query to DestinationSelected with err surfaced.
// Earlier path marks stay in place.
func (c *Controller) fail(err error) {
	c.state.Phase = PhaseDestinationSelected
	c.state.Error = errors.UserMessage(err)
	c.state.ErrorCode = errors.GetCode(err)
}

func (c *Controller) request(src, dst string, constraint pathquery.Constraint) pathquery.Request {
	return pathquery.Request{
		Collection:        c.state.Collection,
		Source:            src,
		Destination:       dst,
		Constraint:        constraint,
		Direction:         c.opts.Direction,
		ExcludedCountries: slices.Clone(c.opts.ExcludedCountries),
	}
}

// =============================================================================
// Workload computation
// =============================================================================

// Compute queries the load path of every member pair, C(n,2) queries in
// all, and overlays every found path. Individual failures never abort the
// batch; they are reported in the run's Failures. The run is recorded in
// the workload store.
func (c *Controller) Compute(ctx context.Context) (WorkloadRun, error) {
	c.mu.Lock()
	if !c.state.CanCompute() {
		defer c.mu.Unlock()
		return WorkloadRun{}, errors.New(errors.ErrCodeInvalidState,
			"workload compute needs at least 2 members in workload mode (mode %s, %d members)", c.state.Mode, len(c.state.Members))
	}
	gen := c.state.Generation
	members := slices.Clone(c.state.Members)
	pairs := pathquery.Pairs(members)
	reqs := make([]pathquery.Request, len(pairs))
	for i, p := range pairs {
		reqs[i] = c.request(p.Source, p.Destination, pathquery.Load)
	}
	c.state.Phase = PhaseComputing
	c.state.Constraint = pathquery.Load
	querier, limit := c.querier, c.opts.Concurrency
	c.mu.Unlock()

	start := time.Now()
	results := make([]*pathquery.Result, len(reqs))
	errs := make([]error, len(reqs))

	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, req := range reqs {
		g.Go(func() error {
			results[i], errs[i] = querier.Query(ctx, req)
			return nil
		})
	}
	_ = g.Wait()
	duration := time.Since(start)

	run := WorkloadRun{
		Collection: reqs[0].Collection,
		Members:    members,
		Constraint: pathquery.Load,
		StartedAt:  start,
		Duration:   duration,
	}
	var found []*pathquery.Result
	for i, p := range pairs {
		switch {
		case errs[i] != nil:
			run.Failures = append(run.Failures, PairFailure{Pair: p, Code: string(failureCode(errs[i])), Error: errors.UserMessage(errs[i])})
		case results[i] == nil || !results[i].Found:
			run.Failures = append(run.Failures, PairFailure{Pair: p, Code: string(errors.ErrCodePathNotFound), Error: "no path found"})
		default:
			found = append(found, results[i])
			run.Paths = append(run.Paths, PairPath{Pair: p, Result: results[i]})
		}
	}
	observability.Query().OnWorkloadBatch(ctx, len(pairs), len(run.Failures), duration)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.Generation != gen {
		return run, errors.New(errors.ErrCodeStale, "workload selection changed during compute")
	}

	anns := c.engine.ApplyWorkloadPaths(found)
	for i := range run.Paths {
		run.Paths[i].Annotation = anns[i]
	}
	id, err := c.store.Save(run)
	if err != nil {
		c.engine.ClearPaths()
		c.state.Phase = PhaseCollecting
		return run, errors.Wrap(errors.ErrCodeInternal, err, "record workload run")
	}
	run.ID = id
	c.state.Phase = PhaseComputed
	c.state.LastRunID = id
	if len(run.Paths) == 0 {
		c.state.Error = "no workload pair produced a path"
		c.state.ErrorCode = errors.ErrCodePathNotFound
	} else {
		c.state.Error, c.state.ErrorCode = "", ""
	}
	return run, nil
}

func failureCode(err error) errors.Code {
	if code := errors.GetCode(err); code != "" {
		return code
	}
	return errors.ErrCodePathQuery
}
