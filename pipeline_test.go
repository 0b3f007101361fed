package facore

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultOptions() Options {
	return Options{
		AnchorName:   "C14:0",
		SearchRadius: 1.5,
		Tolerance:    0.2,
	}
}

func TestOptionsValidate(t *testing.T) {
	table := twoCompoundTable(t)

	assert.NoError(t, defaultOptions().Validate(table))

	bad := defaultOptions()
	bad.Tolerance = 0
	assert.ErrorIs(t, bad.Validate(table), ErrInvalidTolerance)

	bad = defaultOptions()
	bad.SearchRadius = 0.1
	assert.ErrorIs(t, bad.Validate(table), ErrInvalidRadius)

	bad = defaultOptions()
	bad.AnchorName = "C99:9"
	assert.ErrorIs(t, bad.Validate(table), ErrAnchorNotInReference)

	// No anchor means no calibration; the radius is irrelevant then.
	noCal := Options{Tolerance: 0.2}
	assert.NoError(t, noCal.Validate(table))
}

func TestProcessSampleCalibratedMatch(t *testing.T) {
	table := twoCompoundTable(t)
	sample := Sample{ID: "s1", Peaks: []ObservedPeak{
		{Time: 12.3, Area: 100},
		{Time: 14.35, Area: 50},
	}}

	res, outcome := ProcessSample(sample, table, defaultOptions())
	require.Equal(t, StatusOK, outcome.Status)
	require.True(t, res.Calibration.AnchorFound)
	assert.InDelta(t, 0.3, res.Calibration.Offset, 1e-12)

	require.Len(t, res.Compounds, 2)
	assert.InDelta(t, 66.666666, res.Compounds["C14:0"].Percentage, 1e-4)
	assert.InDelta(t, 33.333333, res.Compounds["C16:0"].Percentage, 1e-4)
}

func TestProcessSampleNoAnchorFound(t *testing.T) {
	table := twoCompoundTable(t)
	sample := Sample{ID: "s2", Peaks: []ObservedPeak{{Time: 20.0, Area: 10}}}

	res, outcome := ProcessSample(sample, table, defaultOptions())
	assert.Equal(t, StatusWarning, outcome.Status)
	assert.False(t, res.Calibration.AnchorFound)
	assert.Zero(t, res.Calibration.Offset)
	// 20.0 is 6.0 min from the nearest entry: unmatched, nothing aggregated.
	assert.Empty(t, res.Compounds)
	assert.Equal(t, 1, res.UnmatchedPeaks)
}

func TestProcessSampleEmpty(t *testing.T) {
	table := twoCompoundTable(t)

	res, outcome := ProcessSample(Sample{ID: "empty"}, table, defaultOptions())
	assert.Equal(t, StatusWarning, outcome.Status)
	assert.NotEmpty(t, outcome.Warnings)
	assert.Empty(t, res.Compounds)
}

func TestProcessSampleCalibrationDisabled(t *testing.T) {
	table := twoCompoundTable(t)
	sample := Sample{ID: "s1", Peaks: []ObservedPeak{{Time: 12.1, Area: 10}}}

	opts := Options{Tolerance: 0.2}
	res, outcome := ProcessSample(sample, table, opts)
	require.Equal(t, StatusOK, outcome.Status)
	assert.False(t, res.Calibration.AnchorFound)
	assert.Contains(t, res.Compounds, "C14:0")
}

func TestProcessSampleZeroAreaWarning(t *testing.T) {
	table := twoCompoundTable(t)
	sample := Sample{ID: "s1", Peaks: []ObservedPeak{{Time: 12.0, Area: 0}}}

	res, outcome := ProcessSample(sample, table, Options{Tolerance: 0.2})
	assert.Equal(t, StatusWarning, outcome.Status)
	assert.Zero(t, res.Compounds["C14:0"].Percentage)
}

func TestProcessSampleDeterministicUnderReordering(t *testing.T) {
	table := DefaultReferenceTable()
	base := []ObservedPeak{
		{Time: 12.05, Area: 310},
		{Time: 14.69, Area: 1200},
		{Time: 17.33, Area: 450},
		{Time: 18.47, Area: 90},
		{Time: 32.01, Area: 75},
		{Time: 40.0, Area: 5},
	}
	opts := Options{AnchorName: "C16:0", SearchRadius: 1.5, Tolerance: 0.2}

	want, _ := ProcessSample(Sample{ID: "s", Peaks: base}, table, opts)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 5; i++ {
		shuffled := make([]ObservedPeak, len(base))
		copy(shuffled, base)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got, _ := ProcessSample(Sample{ID: "s", Peaks: shuffled}, table, opts)
		if diff := cmp.Diff(want.Compounds, got.Compounds); diff != "" {
			t.Errorf("compound totals changed under peak reordering (-want +got):\n%s", diff)
		}
	}
}

func TestProcessBatchOrderAndIsolation(t *testing.T) {
	table := twoCompoundTable(t)
	samples := []Sample{
		{ID: "good", Peaks: []ObservedPeak{{Time: 12.3, Area: 100}, {Time: 14.35, Area: 50}}},
		{ID: "empty"},
		{ID: "far", Peaks: []ObservedPeak{{Time: 20.0, Area: 10}}},
	}

	results, outcomes := ProcessBatch(samples, table, defaultOptions(), 4)
	require.Len(t, results, 3)
	require.Len(t, outcomes, 3)

	assert.Equal(t, "good", results[0].SampleID)
	assert.Equal(t, StatusOK, outcomes[0].Status)
	assert.Equal(t, StatusWarning, outcomes[1].Status)
	assert.Equal(t, StatusWarning, outcomes[2].Status)

	// A degraded sample never empties a healthy one.
	assert.Len(t, results[0].Compounds, 2)
}

func TestProcessBatchSingleWorkerMatchesConcurrent(t *testing.T) {
	table := DefaultReferenceTable()
	var samples []Sample
	for i := 0; i < 8; i++ {
		samples = append(samples, Sample{
			ID: string(rune('a' + i)),
			Peaks: []ObservedPeak{
				{Time: 14.6 + float64(i)*0.01, Area: 100},
				{Time: 17.25, Area: 40},
			},
		})
	}
	opts := Options{AnchorName: "C16:0", SearchRadius: 1.5, Tolerance: 0.2}

	seq, _ := ProcessBatch(samples, table, opts, 1)
	par, _ := ProcessBatch(samples, table, opts, 8)

	if diff := cmp.Diff(seq, par); diff != "" {
		t.Errorf("concurrent batch differs from sequential (-seq +par):\n%s", diff)
	}
}

func TestScenarioOne(t *testing.T) {
	// Reference {C14:0: 12.0, C16:0: 14.0}; peaks (12.3,100), (14.35,50).
	table := twoCompoundTable(t)
	sample := Sample{ID: "scenario1", Peaks: []ObservedPeak{
		{Time: 12.3, Area: 100},
		{Time: 14.35, Area: 50},
	}}

	res, outcome := ProcessSample(sample, table, defaultOptions())
	require.Equal(t, StatusOK, outcome.Status)
	assert.InDelta(t, 0.3, res.Calibration.Offset, 1e-12)
	assert.InDelta(t, 66.7, res.Compounds["C14:0"].Percentage, 0.05)
	assert.InDelta(t, 33.3, res.Compounds["C16:0"].Percentage, 0.05)
}
