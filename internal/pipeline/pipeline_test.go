package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kevinvillajim/bcommerce-checkout/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type state struct {
	visited []string
}

func record(name string, err error) pipeline.Step[*state] {
	return pipeline.StepFunc(name, func(_ context.Context, s *state) error {
		s.visited = append(s.visited, name)
		return err
	})
}

func TestNew(t *testing.T) {
	_, err := pipeline.New[*state]()
	require.Error(t, err)

	_, err = pipeline.New(record("a", nil), nil)
	require.ErrorContains(t, err, "step[1] is nil")

	p, err := pipeline.New(record("a", nil), record("b", nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, p.Names())
}

func TestRun(t *testing.T) {
	errStop := errors.New("stop")

	tests := []struct {
		name        string
		steps       []pipeline.Step[*state]
		wantVisited []string
		wantError   error
	}{
		{
			name:        "all steps: ok",
			steps:       []pipeline.Step[*state]{record("a", nil), record("b", nil), record("c", nil)},
			wantVisited: []string{"a", "b", "c"},
		},
		{
			name:        "stops at first failure: fail",
			steps:       []pipeline.Step[*state]{record("a", nil), record("b", errStop), record("c", nil)},
			wantVisited: []string{"a", "b"},
			wantError:   errStop,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := pipeline.New(tt.steps...)
			require.NoError(t, err)

			s := &state{}
			err = p.Run(t.Context(), s)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				assert.ErrorContains(t, err, "step.Run[1][b]")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantVisited, s.visited)
		})
	}
}

func TestRunCancelled(t *testing.T) {
	p, err := pipeline.New(record("a", nil))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := &state{}
	require.ErrorIs(t, p.Run(ctx, s), context.Canceled)
	assert.Empty(t, s.visited)
}
