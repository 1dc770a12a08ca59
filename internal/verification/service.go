package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/task"
)

var ErrSimulationDisabled = errors.New("payment simulation is disabled")

// Service runs verify then reconcile for the three ways a payment result
// arrives: the widget callback, a resumed redirect and a simulation.
type Service struct {
	verifier   *Verifier
	reconciler *Reconciler
	sessions   *SessionStore
	simulate   bool
	logger     *slog.Logger
}

func NewService(verifier *Verifier, reconciler *Reconciler, sessions *SessionStore, simulationEnabled bool, logger *slog.Logger) (*Service, error) {
	if verifier == nil {
		return nil, errors.New("verifier is nil")
	}
	if reconciler == nil {
		return nil, errors.New("reconciler is nil")
	}
	if sessions == nil {
		return nil, errors.New("session store is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		verifier:   verifier,
		reconciler: reconciler,
		sessions:   sessions,
		simulate:   simulationEnabled,
		logger:     logger,
	}, nil
}

func (s *Service) Verifier() *Verifier {
	return s.verifier
}

func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

func (s *Service) SimulationEnabled() bool {
	return s.simulate
}

// Finalize reconciles a result and drops the stored session once the
// payment succeeded.
func (s *Service) Finalize(ctx context.Context, owner domain.Owner, res Result) *task.Task {
	if res.Class == ClassSuccess {
		if err := s.sessions.Clear(ctx, owner); err != nil {
			s.logger.Warn("failed to clear payment session",
				"method", "Service.Finalize",
				"owner", owner.Key(),
				"error", err)
		}
	}

	return s.reconciler.Apply(ctx, owner, res)
}

// ResumeStored verifies the session saved before a full page redirect.
func (s *Service) ResumeStored(ctx context.Context, owner domain.Owner) (Result, *task.Task, error) {
	session, err := s.sessions.Load(ctx, owner)
	if err != nil {
		return Result{}, nil, fmt.Errorf("sessions.Load: %w", err)
	}

	res := s.verifier.Verify(ctx, domain.VerifyRequest{
		ResourcePath:    session.ResourcePath,
		CheckoutID:      session.CheckoutID,
		TransactionID:   session.TransactionID,
		CalculatedTotal: session.CalculatedTotal,
	})

	return res, s.Finalize(ctx, owner, res), nil
}

// SimulateSuccess drives a known checkout through the same verification
// and reconciliation as a real payment, flagged so the server does not
// expect a charge. It is refused when simulation is disabled.
func (s *Service) SimulateSuccess(ctx context.Context, owner domain.Owner, checkoutID string) (Result, *task.Task, error) {
	if !s.simulate {
		return Result{}, nil, ErrSimulationDisabled
	}

	req := domain.VerifyRequest{
		CheckoutID: checkoutID,
		Simulate:   true,
	}

	session, err := s.sessions.Load(ctx, owner)
	switch {
	case err == nil:
		if req.CheckoutID == "" {
			req.CheckoutID = session.CheckoutID
		}
		req.TransactionID = session.TransactionID
		req.CalculatedTotal = session.CalculatedTotal
	case errors.Is(err, ErrNoSession):
	default:
		s.logger.Warn("failed to read payment session for simulation",
			"method", "Service.SimulateSuccess",
			"owner", owner.Key(),
			"error", err)
	}

	if req.CheckoutID == "" {
		return Result{}, nil, errors.New("checkoutID is empty")
	}
	req.ResourcePath = ResourcePathFor(req.CheckoutID)

	res := s.verifier.Verify(ctx, req)

	return res, s.Finalize(ctx, owner, res), nil
}
