package facore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPeakWithinTolerance(t *testing.T) {
	table := twoCompoundTable(t)

	// Calibrated C16:0 = 14.0 + 0.3 = 14.3, residual 0.05.
	m := MatchPeak(ObservedPeak{Time: 14.35, Area: 50}, table, 0.3, 0.2)
	assert.Equal(t, "C16:0", m.Name)
	assert.InDelta(t, 14.3, m.ExpectedTime, 1e-12)
	assert.InDelta(t, 0.05, m.Residual, 1e-9)
}

func TestMatchPeakOutsideTolerance(t *testing.T) {
	table := twoCompoundTable(t)

	m := MatchPeak(ObservedPeak{Time: 20.0, Area: 10}, table, 0, 0.2)
	assert.Equal(t, Unmatched, m.Name)
	// Residual still reports the distance to the nearest entry (C16:0).
	assert.InDelta(t, 6.0, m.Residual, 1e-12)
}

func TestMatchPeakTieBrokenByTableOrder(t *testing.T) {
	table := mustTable(t,
		ReferenceEntry{Name: "A", ExpectedTime: 10.0},
		ReferenceEntry{Name: "B", ExpectedTime: 10.3},
	)

	// Residual 0.15 to both entries.
	m := MatchPeak(ObservedPeak{Time: 10.15}, table, 0, 0.2)
	assert.Equal(t, "A", m.Name)
}

func TestMatchPeakExactToleranceBoundary(t *testing.T) {
	table := twoCompoundTable(t)

	m := MatchPeak(ObservedPeak{Time: 12.2}, table, 0, 0.2)
	assert.Equal(t, "C14:0", m.Name)
}

func TestMatchPeakZeroTolerance(t *testing.T) {
	table := twoCompoundTable(t)

	assert.Equal(t, "C14:0", MatchPeak(ObservedPeak{Time: 12.0}, table, 0, 0).Name)
	assert.Equal(t, Unmatched, MatchPeak(ObservedPeak{Time: 12.0001}, table, 0, 0).Name)
}

func TestMatchPeakZeroOffsetEqualsUncalibrated(t *testing.T) {
	table := twoCompoundTable(t)
	peaks := []ObservedPeak{{Time: 12.1}, {Time: 13.0}, {Time: 14.05}}

	for _, p := range peaks {
		withZero := MatchPeak(p, table, 0, 0.2)
		plain := MatchPeak(p, table, 0.0, 0.2)
		assert.Equal(t, plain, withZero)
	}
}

func TestToleranceMonotonicity(t *testing.T) {
	table := twoCompoundTable(t)
	peaks := []ObservedPeak{
		{Time: 12.05}, {Time: 12.19}, {Time: 13.0}, {Time: 14.4}, {Time: 17.0},
	}

	for _, p := range peaks {
		narrow := MatchPeak(p, table, 0, 0.1)
		wide := MatchPeak(p, table, 0, 0.5)
		if narrow.Name != Unmatched {
			// Widening the window never unmatches or reassigns a peak
			// whose nearest entry was unique.
			assert.Equal(t, narrow.Name, wide.Name)
		}
	}
}

func TestMatchPeaksDropsInvalidTimes(t *testing.T) {
	table := twoCompoundTable(t)
	peaks := []ObservedPeak{
		{Time: 12.1, Area: 10},
		{Time: math.NaN(), Area: 99},
		{Time: math.Inf(1), Area: 99},
		{Time: 14.05, Area: 20},
	}

	matched := MatchPeaks(peaks, table, 0, 0.2)
	require.Len(t, matched, 2)
	assert.Equal(t, "C14:0", matched[0].Name)
	assert.Equal(t, "C16:0", matched[1].Name)
}

func TestMatchPeakEmptyTable(t *testing.T) {
	table := mustTable(t)

	m := MatchPeak(ObservedPeak{Time: 12.0}, table, 0, 0.2)
	assert.Equal(t, Unmatched, m.Name)
	assert.True(t, math.IsNaN(m.Residual))
}
