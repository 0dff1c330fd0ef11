package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	ctx := context.Background()

	require.NoError(t, r.Publish(ctx, TypeShiftCreated, map[string]string{"id": "s-1"}))
	require.NoError(t, r.Publish(ctx, TypeAttendanceRecorded, nil))

	assert.Equal(t, []string{TypeShiftCreated, TypeAttendanceRecorded}, r.Types())

	got := r.Events()
	require.Len(t, got, 2)
	assert.Equal(t, map[string]string{"id": "s-1"}, got[0].Payload)
	assert.False(t, got[0].OccurredAt.IsZero())
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TypeShiftCancelled, "x"))
	assert.NoError(t, p.Close())
}
