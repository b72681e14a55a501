package sequence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextIncrementsWithinYearScope(t *testing.T) {
	got := Next(KindOrder, 2024, []string{"ORD-2024-001", "ORD-2024-002"})
	assert.Equal(t, "ORD-2024-003", got)
}

func TestNextEmptySetStartsAtOne(t *testing.T) {
	assert.Equal(t, "ORD-2024-001", Next(KindOrder, 2024, nil))
	assert.Equal(t, "TASK-001", Next(KindTask, 2024, nil))
	assert.Equal(t, "RF001", Next(KindRFIDTag, 2024, nil))
}

func TestNextIgnoresOtherScopes(t *testing.T) {
	existing := []string{"ORD-2023-117", "INV-2024-004"}
	assert.Equal(t, "ORD-2024-001", Next(KindOrder, 2024, existing))
}

func TestNextMalformedTailFallsBackToOne(t *testing.T) {
	got := Next(KindOrder, 2024, []string{"ORD-2024-zzz"})
	assert.Equal(t, "ORD-2024-001", got)
}

func TestNextTakesStringMaxNotInsertionOrder(t *testing.T) {
	existing := []string{"ORD-2024-010", "ORD-2024-002", "ORD-2024-007"}
	assert.Equal(t, "ORD-2024-011", Next(KindOrder, 2024, existing))
}

func TestNextUnscopedKinds(t *testing.T) {
	assert.Equal(t, "TASK-005", Next(KindTask, 2024, []string{"TASK-003", "TASK-004"}))
	assert.Equal(t, "DEL-002", Next(KindDelivery, 2024, []string{"DEL-001"}))
	assert.Equal(t, "RF013", Next(KindRFIDTag, 2024, []string{"RF012"}))
}

func TestNextAfterAdvances(t *testing.T) {
	id, err := NextAfter(KindOrder, 2024, "ORD-2024-003")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2024-004", id)
}

func TestNextAfterExhaustsAtBound(t *testing.T) {
	_, err := NextAfter(KindOrder, 2024, "ORD-2024-9999")
	assert.ErrorIs(t, err, ErrSequenceExhausted)
}

func TestFormatPadsToWidth(t *testing.T) {
	assert.Equal(t, "INV-2024-007", KindInvoice.Format(2024, 7))
	assert.Equal(t, "INV-2024-1234", KindInvoice.Format(2024, 1234))
}
