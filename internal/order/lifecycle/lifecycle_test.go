package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAndProgressTable(t *testing.T) {
	cases := []struct {
		stage    Stage
		status   Status
		progress int
	}{
		{StageOrderPlaced, StatusPending, 10},
		{StagePickupConfirmed, StatusPending, 20},
		{StageItemsReceived, StatusProcessing, 30},
		{StageWashing, StatusProcessing, 45},
		{StageDrying, StatusProcessing, 60},
		{StageFolding, StatusProcessing, 75},
		{StageQualityCheck, StatusProcessing, 85},
		{StageReadyForDelivery, StatusProcessing, 90},
		{StageOutForDelivery, StatusProcessing, 95},
		{StageDelivered, StatusCompleted, 100},
	}

	for _, tc := range cases {
		t.Run(string(tc.stage), func(t *testing.T) {
			status, progress, effects, err := Transition(tc.stage, time.Now())
			require.NoError(t, err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.progress, progress)
			assert.Equal(t, tc.stage, effects.Open.Stage)
			assert.True(t, effects.Open.IsCurrent)
			assert.False(t, effects.Open.Completed)
			assert.Nil(t, effects.Open.Timestamp)
		})
	}
}

func TestTransitionRejectsUnknownStage(t *testing.T) {
	_, _, _, err := Transition(Stage("ironing"), time.Now())
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestUnknownStageDerivesDefaults(t *testing.T) {
	assert.Equal(t, StatusPending, StatusFor(Stage("bogus")))
	assert.Equal(t, 0, ProgressFor(Stage("bogus")))
}

func TestTransitionIsIdempotentOnDerivedValues(t *testing.T) {
	now := time.Now()
	s1, p1, _, err := Transition(StageWashing, now)
	require.NoError(t, err)
	s2, p2, _, err := Transition(StageWashing, now.Add(time.Minute))
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
	assert.Equal(t, p1, p2)
}

func TestStagesCoverProgressTable(t *testing.T) {
	require.Len(t, Stages, 10)
	for _, s := range Stages {
		assert.True(t, s.Valid())
	}
}
