package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fullReading(swellFt, periodS, windKt float64, windDir string) EnvironmentalReading {
	return EnvironmentalReading{
		SwellHeightFeet:    ptr(swellFt),
		SwellPeriodSeconds: ptr(periodS),
		WindSpeedKnots:     ptr(windKt),
		WindDirection:      windDir,
	}
}

func sampleReadings() []EnvironmentalReading {
	return []EnvironmentalReading{
		{},
		fullReading(6, 12, 10, "NE"),
		fullReading(6, 11, 12, "NE"),
		fullReading(2, 8, 25, "SW"),
		fullReading(9.5, 16, 4, "W"),
		{SwellHeightFeet: ptr(4)},
		{WindDirection: "SE"},
		{WindSpeedKnots: ptr(15), WindDirection: "SE"},
		{SwellPeriodSeconds: ptr(9), SwellHeightFeet: ptr(0)},
	}
}

func TestSimilarity_WorkedExample(t *testing.T) {
	current := fullReading(6, 12, 10, "NE")
	historical := fullReading(6, 11, 12, "NE")

	// swell 1.8m vs 1.8m → 1; wind 18.5 vs 22.2 km/h → 0.9;
	// period 12 vs 11 s → 0.8; direction equal → 1.
	want := (1*0.4 + 0.9*0.3 + 0.8*0.2 + 1*0.1) / 1.0
	got := Similarity(current, historical)
	assert.InDelta(t, want, got, 1e-9)
	assert.Greater(t, got, SimilarityThreshold)
}

func TestSimilarity_Symmetric(t *testing.T) {
	readings := sampleReadings()
	for i, a := range readings {
		for j, b := range readings {
			assert.Equal(t, Similarity(a, b), Similarity(b, a), "pair %d,%d", i, j)
		}
	}
}

func TestSimilarity_Bounded(t *testing.T) {
	readings := sampleReadings()
	for i, a := range readings {
		for j, b := range readings {
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0, "pair %d,%d", i, j)
			assert.LessOrEqual(t, s, 1.0, "pair %d,%d", i, j)
		}
	}
}

func TestSimilarity_IdentityIsOne(t *testing.T) {
	for i, r := range sampleReadings() {
		if !present(r.SwellHeightFeet) && !present(r.SwellPeriodSeconds) &&
			!present(r.WindSpeedKnots) && r.WindDirection == "" {
			continue
		}
		assert.Equal(t, 1.0, Similarity(r, r), "reading %d", i)
	}
}

func TestSimilarity_NothingComparable(t *testing.T) {
	assert.Equal(t, 0.0, Similarity(EnvironmentalReading{}, EnvironmentalReading{}))
	assert.Equal(t, 0.0, Similarity(
		EnvironmentalReading{SwellHeightFeet: ptr(4)},
		EnvironmentalReading{WindSpeedKnots: ptr(10)},
	))
	// Zero values are placeholders, not measurements.
	assert.Equal(t, 0.0, Similarity(
		EnvironmentalReading{SwellHeightFeet: ptr(0)},
		EnvironmentalReading{SwellHeightFeet: ptr(0)},
	))
}

func TestSimilarity_SwellBeyondToleranceIsZero(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
	}{
		{"exactly one metre", 3.28084, 6.56168},
		{"more than one metre", 3, 6.5},
		{"far apart", 2, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Similarity(
				EnvironmentalReading{SwellHeightFeet: ptr(tt.a)},
				EnvironmentalReading{SwellHeightFeet: ptr(tt.b)},
			)
			assert.Equal(t, 0.0, s)
		})
	}
}

func TestSimilarity_MissingFactorNotPenalized(t *testing.T) {
	withDir := EnvironmentalReading{SwellHeightFeet: ptr(5), WindDirection: "N"}
	withoutDir := EnvironmentalReading{SwellHeightFeet: ptr(5)}
	assert.Equal(t, 1.0, Similarity(withDir, withoutDir))
}

func TestSimilarity_DirectionOnly(t *testing.T) {
	assert.Equal(t, 1.0, Similarity(EnvironmentalReading{WindDirection: "NE"}, EnvironmentalReading{WindDirection: "NE"}))
	assert.Equal(t, 0.0, Similarity(EnvironmentalReading{WindDirection: "NE"}, EnvironmentalReading{WindDirection: "ENE"}))
}

func TestSimilarity_ExactTenthsAtThreshold(t *testing.T) {
	tests := []struct {
		name string
		a, b EnvironmentalReading
		want float64
	}{
		{"swell 1.4m vs 1.0m", EnvironmentalReading{SwellHeightFeet: ptr(4.6)}, EnvironmentalReading{SwellHeightFeet: ptr(3.3)}, 0.6},
		{"swell 1.4m vs 0.4m", EnvironmentalReading{SwellHeightFeet: ptr(4.6)}, EnvironmentalReading{SwellHeightFeet: ptr(1.3)}, 0},
		{"wind 18.5 vs 33.3 km/h", EnvironmentalReading{WindSpeedKnots: ptr(10)}, EnvironmentalReading{WindSpeedKnots: ptr(18)}, 0.6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.False(t, exceedsThreshold(got) && tt.want <= SimilarityThreshold)
		})
	}
}

func TestTenthsDiff(t *testing.T) {
	assert.Equal(t, 0.4, tenthsDiff(1.4, 1.0))
	assert.Equal(t, 0.4, tenthsDiff(1.0, 1.4))
	assert.Equal(t, 14.8, tenthsDiff(18.5, 33.3))
	assert.Zero(t, tenthsDiff(2.7, 2.7))
}

func TestExceedsThreshold(t *testing.T) {
	assert.False(t, exceedsThreshold(SimilarityThreshold))
	assert.False(t, exceedsThreshold(0.60000000000000009))
	assert.True(t, exceedsThreshold(0.61))
	assert.False(t, exceedsThreshold(0.59))
}

func TestLinearFalloff(t *testing.T) {
	assert.Equal(t, 1.0, linearFalloff(0, 5))
	assert.InDelta(t, 0.5, linearFalloff(2.5, 5), 1e-12)
	assert.Equal(t, 0.0, linearFalloff(5, 5))
	assert.Equal(t, 0.0, linearFalloff(50, 5))
}
