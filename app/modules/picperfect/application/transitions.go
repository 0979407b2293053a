package picperfectservice

import (
	"context"
	"fmt"

	statedb "github.com/Black-And-White-Club/pic-perfect/app/modules/state/infrastructure/repositories"
	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/operations"
	"github.com/Black-And-White-Club/pic-perfect/pkg/results"
	"github.com/uptrace/bun"
)

// forwardEdges is the strict forward path. LOCKED is entered by lock and
// left by unlock; neither is listed here.
var forwardEdges = map[statedb.ChallengeState]statedb.ChallengeState{
	statedb.StateSubmission: statedb.StateVoting,
	statedb.StateVoting:     statedb.StateScoring,
	statedb.StateScoring:    statedb.StateComplete,
}

// isAllowedEdge reports whether from -> to appears in the transition table.
func isAllowedEdge(from, to statedb.ChallengeState) bool {
	switch {
	case !from.IsValid() || !to.IsValid():
		return false
	case to == statedb.StateLocked:
		return from != statedb.StateLocked
	case from == statedb.StateLocked:
		return true
	default:
		return forwardEdges[from] == to
	}
}

func invalidTransition(challengeID string, from, to statedb.ChallengeState, reason string) error {
	if reason == "" {
		return fmt.Errorf("%w: challenge %s cannot move from %s to %s", arcadeerrors.ErrInvalidTransition, challengeID, from, to)
	}
	return fmt.Errorf("%w: challenge %s cannot move from %s to %s: %s", arcadeerrors.ErrInvalidTransition, challengeID, from, to, reason)
}

// TransitionChallengeState moves the challenge along one edge of the table
// after checking that edge's guard. Moving into COMPLETE finalizes. Moving a
// LOCKED challenge into LOCKED succeeds without a change, as LockChallenge does.
func (s *PicPerfectService) TransitionChallengeState(ctx context.Context, challengeID string, target statedb.ChallengeState) (*TransitionResult, error) {
	res, err := operations.Execute(s.runner, ctx, "TransitionChallengeState", challengeID+"->"+target.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*TransitionResult, error], error) {
		return s.transitionLogic(ctx, db, challengeID, target)
	})
	if err != nil {
		return nil, err
	}
	if res.PreviousState != res.CurrentState {
		s.metrics.RecordStateTransition(ctx, res.PreviousState.String(), res.CurrentState.String())
		s.publish(ctx, TopicStateChanged, challengeID, res)
	}
	return res, nil
}

func (s *PicPerfectService) transitionLogic(ctx context.Context, db bun.IDB, challengeID string, target statedb.ChallengeState) (results.OperationResult[*TransitionResult, error], error) {
	if !target.IsValid() {
		return results.FailureResult[*TransitionResult, error](
			fmt.Errorf("%w: unknown challenge state %q", arcadeerrors.ErrValidation, target)), nil
	}

	rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
	if err != nil {
		return domainOrInfra[*TransitionResult](err, "failed to load challenge state")
	}
	from := rec.State

	if from == statedb.StateLocked && target == statedb.StateLocked {
		return results.SuccessResult[*TransitionResult, error](&TransitionResult{
			ChallengeID:   challengeID,
			PreviousState: from,
			CurrentState:  from,
		}), nil
	}

	if !isAllowedEdge(from, target) {
		return results.FailureResult[*TransitionResult, error](invalidTransition(challengeID, from, target, "")), nil
	}

	done := func() (results.OperationResult[*TransitionResult, error], error) {
		return results.SuccessResult[*TransitionResult, error](&TransitionResult{
			ChallengeID:   challengeID,
			PreviousState: from,
			CurrentState:  target,
		}), nil
	}

	switch {
	case target == statedb.StateLocked:
		if err := s.stateRepo.Lock(ctx, db, challengeID); err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to lock challenge")
		}
		return done()

	case from == statedb.StateLocked:
		if err := s.stateRepo.Unlock(ctx, db, challengeID, target); err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to unlock challenge")
		}
		return done()

	case target == statedb.StateComplete:
		fin, err := s.finalize(ctx, db, rec)
		if err != nil {
			return results.OperationResult[*TransitionResult, error]{}, err
		}
		if fin.IsFailure() {
			return results.FailureResult[*TransitionResult, error](*fin.Failure), nil
		}
		return done()
	}

	ok, reason, err := s.guard(ctx, db, rec, target)
	if err != nil {
		return results.OperationResult[*TransitionResult, error]{}, err
	}
	if !ok {
		return results.FailureResult[*TransitionResult, error](invalidTransition(challengeID, from, target, reason)), nil
	}

	if err := s.stateRepo.CompareAndSetState(ctx, db, challengeID, from, target, statedb.StateUpdate{}); err != nil {
		return domainOrInfra[*TransitionResult](err, "failed to transition challenge")
	}
	return done()
}

// guard evaluates the guard on rec.State -> target. The reason explains a
// false result.
func (s *PicPerfectService) guard(ctx context.Context, db bun.IDB, rec *statedb.ChallengeRecord, target statedb.ChallengeState) (bool, string, error) {
	switch target {
	case statedb.StateVoting:
		status, err := s.submissionStatus(ctx, db, rec)
		if err != nil {
			return false, "", err
		}
		if !status.CanTransitionToVoting {
			if status.TotalTeams == 0 {
				return false, "no teams are registered", nil
			}
			return false, fmt.Sprintf("%d of %d teams have not submitted", len(status.PendingTeams), status.TotalTeams), nil
		}
		return true, "", nil
	default:
		// VOTING -> SCORING closes the vote on the admin's call.
		return true, "", nil
	}
}

// CanTransitionToVoting reports whether every registered team has submitted.
func (s *PicPerfectService) CanTransitionToVoting(ctx context.Context, challengeID string) (bool, error) {
	status, err := s.GetSubmissionStatus(ctx, challengeID)
	if err != nil {
		return false, err
	}
	return status.CanTransitionToVoting, nil
}

// CanTransitionToScoring reports whether an admin may close voting now,
// which is whenever the challenge is in VOTING.
func (s *PicPerfectService) CanTransitionToScoring(ctx context.Context, challengeID string) (bool, error) {
	status, err := s.GetVotingStatus(ctx, challengeID)
	if err != nil {
		return false, err
	}
	return status.CanTransitionToScoring, nil
}

// LockChallenge forces LOCKED. Locking a locked challenge succeeds.
func (s *PicPerfectService) LockChallenge(ctx context.Context, challengeID string) (*TransitionResult, error) {
	res, err := operations.Execute(s.runner, ctx, "LockChallenge", challengeID, func(ctx context.Context, db bun.IDB) (results.OperationResult[*TransitionResult, error], error) {
		rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to load challenge state")
		}
		if err := s.stateRepo.Lock(ctx, db, challengeID); err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to lock challenge")
		}
		return results.SuccessResult[*TransitionResult, error](&TransitionResult{
			ChallengeID:   challengeID,
			PreviousState: rec.State,
			CurrentState:  statedb.StateLocked,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	if res.PreviousState != res.CurrentState {
		s.metrics.RecordStateTransition(ctx, res.PreviousState.String(), res.CurrentState.String())
		s.publish(ctx, TopicStateChanged, challengeID, res)
	}
	return res, nil
}

// UnlockChallenge moves a LOCKED challenge into target.
func (s *PicPerfectService) UnlockChallenge(ctx context.Context, challengeID string, target statedb.ChallengeState) (*TransitionResult, error) {
	res, err := operations.Execute(s.runner, ctx, "UnlockChallenge", challengeID+"->"+target.String(), func(ctx context.Context, db bun.IDB) (results.OperationResult[*TransitionResult, error], error) {
		if target == statedb.StateLocked {
			return results.FailureResult[*TransitionResult, error](
				fmt.Errorf("%w: cannot unlock into %s", arcadeerrors.ErrInvalidTransition, statedb.StateLocked)), nil
		}
		rec, err := s.loadChallengeForUpdate(ctx, db, challengeID)
		if err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to load challenge state")
		}
		if rec.State != statedb.StateLocked {
			return results.FailureResult[*TransitionResult, error](
				invalidTransition(challengeID, rec.State, target, "challenge is not locked")), nil
		}
		if err := s.stateRepo.Unlock(ctx, db, challengeID, target); err != nil {
			return domainOrInfra[*TransitionResult](err, "failed to unlock challenge")
		}
		return results.SuccessResult[*TransitionResult, error](&TransitionResult{
			ChallengeID:   challengeID,
			PreviousState: rec.State,
			CurrentState:  target,
		}), nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordStateTransition(ctx, res.PreviousState.String(), res.CurrentState.String())
	s.publish(ctx, TopicStateChanged, challengeID, res)
	return res, nil
}
