// Package lifecycle owns the order fulfillment state machine: the fixed
// ten-stage pipeline, the status and progress derived from the current stage,
// and the timeline bookkeeping emitted on every transition.
package lifecycle

import (
	"errors"
	"time"
)

// ErrInvalidStage is returned when a transition names an unknown stage.
var ErrInvalidStage = errors.New("invalid_stage")

// Stage is one step of the fulfillment pipeline.
type Stage string

// Pipeline stages, in order.
const (
	StageOrderPlaced      Stage = "order_placed"
	StagePickupConfirmed  Stage = "pickup_confirmed"
	StageItemsReceived    Stage = "items_received"
	StageWashing          Stage = "washing"
	StageDrying           Stage = "drying"
	StageFolding          Stage = "folding"
	StageQualityCheck     Stage = "quality_check"
	StageReadyForDelivery Stage = "ready_for_delivery"
	StageOutForDelivery   Stage = "out_for_delivery"
	StageDelivered        Stage = "delivered"
)

// Status is the coarse customer-facing summary derived from the stage.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Stages lists the pipeline in order.
var Stages = []Stage{
	StageOrderPlaced,
	StagePickupConfirmed,
	StageItemsReceived,
	StageWashing,
	StageDrying,
	StageFolding,
	StageQualityCheck,
	StageReadyForDelivery,
	StageOutForDelivery,
	StageDelivered,
}

var progressByStage = map[Stage]int{
	StageOrderPlaced:      10,
	StagePickupConfirmed:  20,
	StageItemsReceived:    30,
	StageWashing:          45,
	StageDrying:           60,
	StageFolding:          75,
	StageQualityCheck:     85,
	StageReadyForDelivery: 90,
	StageOutForDelivery:   95,
	StageDelivered:        100,
}

// Valid reports whether s is one of the known pipeline stages.
func (s Stage) Valid() bool {
	_, ok := progressByStage[s]
	return ok
}

// StatusFor derives the order status from a stage. Total function:
// unrecognized stages fall back to pending.
func StatusFor(stage Stage) Status {
	switch stage {
	case StageOrderPlaced, StagePickupConfirmed:
		return StatusPending
	case StageItemsReceived, StageWashing, StageDrying, StageFolding,
		StageQualityCheck, StageReadyForDelivery, StageOutForDelivery:
		return StatusProcessing
	case StageDelivered:
		return StatusCompleted
	default:
		return StatusPending
	}
}

// ProgressFor derives the display percentage from a stage; unknown stages
// map to 0.
func ProgressFor(stage Stage) int {
	return progressByStage[stage]
}

// TimelineEffects describes the timeline mutations a transition requires.
// CloseCurrent applies to whichever entry is currently flagged is_current;
// Open is the entry to append for the requested stage.
type TimelineEffects struct {
	CloseCurrent bool
	ClosedAt     time.Time
	Open         TimelineEntry
}

// TimelineEntry is the shape of a timeline row to create.
type TimelineEntry struct {
	Stage     Stage
	Completed bool
	IsCurrent bool
	Timestamp *time.Time
}

// Transition validates the requested stage and returns the derived status,
// progress and timeline effects. Status and progress are recomputed fresh on
// every call, so repeating a stage leaves them unchanged; the timeline side
// effect is appended every call regardless, matching the system this
// replaces.
func Transition(requested Stage, now time.Time) (Status, int, TimelineEffects, error) {
	if !requested.Valid() {
		return "", 0, TimelineEffects{}, ErrInvalidStage
	}

	effects := TimelineEffects{
		CloseCurrent: true,
		ClosedAt:     now,
		Open: TimelineEntry{
			Stage:     requested,
			Completed: false,
			IsCurrent: true,
		},
	}

	return StatusFor(requested), ProgressFor(requested), effects, nil
}
