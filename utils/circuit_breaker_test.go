package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_PassesThroughSuccess(t *testing.T) {
	cb := NewCircuitBreaker("polygon")

	res, err := cb.Execute(context.Background(), func() (any, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_StaysClosedUnderFewFailures(t *testing.T) {
	cb := NewCircuitBreaker("polygon")
	boom := errors.New("boom")

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(context.Background(), func() (any, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	}

	// Below the minimum request volume the breaker never trips.
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_TripsOpenAfterFailureRatio(t *testing.T) {
	cb := NewCircuitBreaker("polygon")
	boom := errors.New("boom")

	for i := 0; i < 10; i++ {
		cb.Execute(context.Background(), func() (any, error) { //nolint:errcheck
			return nil, boom
		})
	}

	assert.Equal(t, StateOpen, cb.State())

	_, err := cb.Execute(context.Background(), func() (any, error) {
		t.Fatal("open breaker must not invoke the call")
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreaker_MixedTrafficBelowRatio(t *testing.T) {
	cb := NewCircuitBreaker("polygon")
	boom := errors.New("boom")

	for i := 0; i < 12; i++ {
		fail := i%3 == 0 // 1 in 3 fails, under the 0.5 ratio
		cb.Execute(context.Background(), func() (any, error) { //nolint:errcheck
			if fail {
				return nil, boom
			}
			return nil, nil
		})
	}

	assert.Equal(t, StateClosed, cb.State())
}
