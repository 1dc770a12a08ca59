// Package pipeline runs named steps in order over a shared state value.
package pipeline

import (
	"context"
	"errors"
	"fmt"
)

type Step[T any] interface {
	Name() string
	Run(ctx context.Context, state T) error
}

type Pipeline[T any] struct {
	steps []Step[T]
}

func New[T any](steps ...Step[T]) (Pipeline[T], error) {
	var p Pipeline[T]

	if len(steps) == 0 {
		return p, errors.New("steps are empty")
	}

	for idx, step := range steps {
		if step == nil {
			return p, fmt.Errorf("step[%d] is nil", idx)
		}
	}

	return Pipeline[T]{steps: steps}, nil
}

// Run stops at the first failing step. The step error is wrapped so
// errors.Is / errors.As still reach it.
func (p Pipeline[T]) Run(ctx context.Context, state T) error {
	for idx, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("step.Run[%d][%s]: %w", idx, step.Name(), err)
		}

		if err := step.Run(ctx, state); err != nil {
			return fmt.Errorf("step.Run[%d][%s]: %w", idx, step.Name(), err)
		}
	}

	return nil
}

func (p Pipeline[T]) Names() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}

type funcStep[T any] struct {
	name string
	fn   func(ctx context.Context, state T) error
}

// StepFunc adapts a plain function to a Step.
func StepFunc[T any](name string, fn func(ctx context.Context, state T) error) Step[T] {
	return funcStep[T]{name: name, fn: fn}
}

func (s funcStep[T]) Name() string {
	return s.name
}

func (s funcStep[T]) Run(ctx context.Context, state T) error {
	return s.fn(ctx, state)
}
