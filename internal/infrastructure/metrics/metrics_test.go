package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/alem-hub/studyhub/internal/domain/shared"
)

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{shared.ErrUserNotFound, "not_found"},
		{shared.ErrGroupFull, "conflict"},
		{shared.ErrAlreadyMember, "conflict"},
		{shared.ErrUserAlreadyExists, "conflict"},
		{shared.ErrInsufficientFunds, "insufficient_funds"},
		{shared.ErrNotGroupMember, "forbidden"},
		{shared.ErrInvalidSkillLevel, "invalid"},
		{shared.ErrLockNotAcquired, "lock_timeout"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}

func TestRecordCredit(t *testing.T) {
	before := testutil.ToFloat64(tokensCredited.WithLabelValues("metrics_test"))
	RecordCredit("metrics_test", 30)
	RecordCredit("metrics_test", 40)
	assert.Equal(t, before+70, testutil.ToFloat64(tokensCredited.WithLabelValues("metrics_test")))
}

func TestRecordOperation(t *testing.T) {
	before := testutil.ToFloat64(operationsTotal.WithLabelValues("metrics_test_op", "not_found"))
	RecordOperation("metrics_test_op", time.Millisecond, shared.ErrGroupNotFound)
	assert.Equal(t, before+1, testutil.ToFloat64(operationsTotal.WithLabelValues("metrics_test_op", "not_found")))
}

func TestEventObserver(t *testing.T) {
	const typ = shared.EventType("metrics.test")
	var o EventObserver
	o.ObservePublish(typ)
	o.ObservePublish(typ)
	assert.Equal(t, float64(2), testutil.ToFloat64(eventsPublished.WithLabelValues(string(typ))))
	o.ObserveHandler(typ, time.Millisecond, nil)
}
