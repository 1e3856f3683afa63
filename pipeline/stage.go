package pipeline

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Stage is one unit of a request pipeline. Returning an error halts the
// pipeline; no later stage runs.
type Stage interface {
	Run(ctx context.Context, st *State, req *Request) error
}

// StageFunc adapts a func to [Stage].
type StageFunc func(ctx context.Context, st *State, req *Request) error

func (f StageFunc) Run(ctx context.Context, st *State, req *Request) error {
	return f(ctx, st, req)
}

// Step is a named stage.
type Step struct {
	Name  string
	Stage Stage
}

// Pipeline is an ordered list of steps.
type Pipeline []Step

// Names lists the step names in order.
func (p Pipeline) Names() []string {
	names := make([]string, len(p))
	for i, s := range p {
		names[i] = s.Name
	}
	return names
}

// Observer is told about every stage a runner executes.
type Observer interface {
	ObserveStage(archetype Archetype, stage string, elapsed time.Duration, err error)
}

// Runner executes pipelines.
type Runner struct {
	Observer Observer
}

// Run executes p's steps in order and returns the first error.
func (r Runner) Run(ctx context.Context, p Pipeline, st *State, req *Request) error {
	log := zerolog.Ctx(ctx)
	for _, step := range p {
		start := time.Now()
		err := step.Stage.Run(ctx, st, req)
		elapsed := time.Since(start)

		if r.Observer != nil {
			r.Observer.ObserveStage(st.Archetype, step.Name, elapsed, err)
		}
		if err != nil {
			log.Warn().
				Err(err).
				Str("archetype", string(st.Archetype)).
				Str("stage", step.Name).
				Dur("elapsed", elapsed).
				Msg("pipeline halted")
			return err
		}
		log.Debug().
			Str("archetype", string(st.Archetype)).
			Str("stage", step.Name).
			Dur("elapsed", elapsed).
			Msg("stage complete")
	}
	return nil
}

// Run executes p with a zero [Runner].
func Run(ctx context.Context, p Pipeline, st *State, req *Request) error {
	return Runner{}.Run(ctx, p, st, req)
}
