package arcadeerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeAndStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantDomain bool
	}{
		{
			name:       "wrapped not found",
			err:        fmt.Errorf("%w: challenge %q not initialized", ErrNotFound, "pic-perfect"),
			wantCode:   CodeNotFound,
			wantStatus: http.StatusNotFound,
			wantDomain: true,
		},
		{
			name:       "duplicate vote",
			err:        fmt.Errorf("%w: already voted for Beta", ErrDuplicateVote),
			wantCode:   CodeDuplicateVote,
			wantStatus: http.StatusConflict,
			wantDomain: true,
		},
		{
			name:       "vote limit",
			err:        ErrVoteLimitExceeded,
			wantCode:   CodeVoteLimitExceeded,
			wantStatus: http.StatusUnprocessableEntity,
			wantDomain: true,
		},
		{
			name:       "validation",
			err:        fmt.Errorf("CastVotes: %w", fmt.Errorf("%w: empty team name", ErrValidation)),
			wantCode:   CodeValidation,
			wantStatus: http.StatusBadRequest,
			wantDomain: true,
		},
		{
			name:       "rate limited",
			err:        fmt.Errorf("%w: too many requests", ErrRateLimited),
			wantCode:   CodeRateLimited,
			wantStatus: http.StatusTooManyRequests,
			wantDomain: true,
		},
		{
			name:       "infrastructure error",
			err:        errors.New("connection reset by peer"),
			wantCode:   CodeInternal,
			wantStatus: http.StatusInternalServerError,
			wantDomain: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, Code(tt.err))
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
			assert.Equal(t, tt.wantDomain, IsDomain(tt.err))
		})
	}
}

func TestIsDomainNil(t *testing.T) {
	assert.False(t, IsDomain(nil))
}
