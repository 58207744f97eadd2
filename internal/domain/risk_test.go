package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	thursday = time.Date(2024, time.May, 16, 12, 0, 0, 0, time.UTC)
	friday   = time.Date(2024, time.May, 17, 12, 0, 0, 0, time.UTC)
	saturday = time.Date(2024, time.May, 18, 12, 0, 0, 0, time.UTC)
	sunday   = time.Date(2024, time.May, 19, 12, 0, 0, 0, time.UTC)
)

func TestClimateThresholds(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		precip   float64
		expected Level
	}{
		{"extreme heat with rain", 41, 50, LevelHigh},
		{"drought with mild temp", 20, 4.9, LevelHigh},
		{"heat and drought", 42, 2, LevelHigh},
		{"exactly 40 with rain", 40, 20, LevelModerate},
		{"warm with ample rain", 36, 20, LevelModerate},
		{"low rain with mild temp", 20, 5, LevelModerate},
		{"rain just under moderate", 25, 9.99, LevelModerate},
		{"exactly 35 and 10mm", 35, 10, LevelLow},
		{"mild and wet", 25, 15, LevelLow},
		{"freezing and wet", -5, 30, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stress := ClassifyStress(tt.temp, tt.precip)
			migration := ClassifyMigration(tt.temp, tt.precip)
			assert.Equal(t, tt.expected, stress.Level)
			assert.Equal(t, tt.expected, migration.Level)
		})
	}
}

func TestStressAndMigrationAlwaysAgree(t *testing.T) {
	for temp := -10.0; temp <= 50; temp += 0.5 {
		for precip := 0.0; precip <= 30; precip += 0.5 {
			s := ClassifyStress(temp, precip)
			m := ClassifyMigration(temp, precip)
			require.Equal(t, s.Level, m.Level, "temp=%v precip=%v", temp, precip)
		}
	}
}

func TestClassifyPoaching(t *testing.T) {
	tests := []struct {
		name         string
		weekend      bool
		nearActivity bool
		expected     Level
	}{
		{"near activity on weekend", true, true, LevelHigh},
		{"near activity on weekday", false, true, LevelModerate},
		{"remote on weekend", true, false, LevelLow},
		{"remote on weekday", false, false, LevelLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyPoaching(tt.weekend, tt.nearActivity).Level)
		})
	}
}

func TestIsPoachingWeekend(t *testing.T) {
	assert.False(t, IsPoachingWeekend(thursday))
	assert.True(t, IsPoachingWeekend(friday))
	assert.True(t, IsPoachingWeekend(saturday))
	assert.False(t, IsPoachingWeekend(sunday))

	for d := 0; d < 7; d++ {
		day := thursday.AddDate(0, 0, d)
		want := day.Weekday() == time.Friday || day.Weekday() == time.Saturday
		assert.Equal(t, want, IsPoachingWeekend(day), day.Weekday().String())
	}
}

func TestRatingsCarryFixedMessages(t *testing.T) {
	high := ClassifyStress(42, 2)
	assert.Equal(t, "High stress due to extreme heat or drought", high.Headline)
	assert.Contains(t, high.Recommendation, "artificial shade")

	low := ClassifyMigration(25, 15)
	assert.Equal(t, "Stable habitat conditions", low.Headline)

	moderate := ClassifyPoaching(false, true)
	assert.Equal(t, "Inform nearby communities. Set up temporary check-points.", moderate.Recommendation)

	// Stress and migration share levels but never wording.
	for _, l := range []Level{LevelLow, LevelModerate, LevelHigh} {
		assert.NotEqual(t, stressMessages[l].Headline, migrationMessages[l].Headline)
		assert.NotEqual(t, stressMessages[l].Recommendation, migrationMessages[l].Recommendation)
	}
}

func TestAssess(t *testing.T) {
	t.Run("scenario heat and drought", func(t *testing.T) {
		a := Assess(WeatherSnapshot{CurrentTempC: 42, PrecipitationMM: 2}, thursday, false)
		assert.Equal(t, LevelHigh, a.Stress.Level)
		assert.Equal(t, LevelHigh, a.Migration.Level)
		assert.Equal(t, LevelLow, a.Poaching.Level)
	})

	t.Run("scenario temperature alone", func(t *testing.T) {
		a := Assess(WeatherSnapshot{CurrentTempC: 36, PrecipitationMM: 20}, thursday, false)
		assert.Equal(t, LevelModerate, a.Stress.Level)
		assert.Equal(t, LevelModerate, a.Migration.Level)
	})

	t.Run("scenario saturday near roads", func(t *testing.T) {
		a := Assess(WeatherSnapshot{CurrentTempC: 25, PrecipitationMM: 15}, saturday, true)

		expected := Assessment{
			Stress:       ClassifyStress(25, 15),
			Migration:    ClassifyMigration(25, 15),
			Poaching:     ClassifyPoaching(true, true),
			Weekend:      true,
			NearActivity: true,
			EvaluatedAt:  saturday,
		}
		if diff := cmp.Diff(expected, a); diff != "" {
			t.Fatalf("assessment mismatch (-want +got):\n%s", diff)
		}
		assert.Equal(t, LevelLow, a.Stress.Level)
		assert.Equal(t, LevelLow, a.Migration.Level)
		assert.Equal(t, LevelHigh, a.Poaching.Level)
	})

	t.Run("weekday in site timezone", func(t *testing.T) {
		// Thursday 22:30 UTC is already Friday in Dubai.
		lateThursday := time.Date(2024, time.May, 16, 22, 30, 0, 0, time.UTC)
		snap := WeatherSnapshot{CurrentTempC: 25, PrecipitationMM: 15, Timezone: "Asia/Dubai"}

		a := Assess(snap, lateThursday, true)
		assert.True(t, a.Weekend)
		assert.Equal(t, LevelHigh, a.Poaching.Level)
		assert.Equal(t, time.Friday, a.EvaluatedAt.Weekday())
		assert.True(t, a.EvaluatedAt.Equal(lateThursday))
	})

	t.Run("unknown timezone falls back to caller location", func(t *testing.T) {
		snap := WeatherSnapshot{CurrentTempC: 25, PrecipitationMM: 15, Timezone: "Mars/Olympus"}
		a := Assess(snap, thursday, true)
		assert.False(t, a.Weekend)
		assert.Equal(t, LevelModerate, a.Poaching.Level)
	})

	t.Run("idempotent", func(t *testing.T) {
		snap := WeatherSnapshot{CurrentTempC: 37.5, PrecipitationMM: 7, Timezone: "Asia/Tehran"}
		first := Assess(snap, friday, true)
		second := Assess(snap, friday, true)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Fatalf("repeated assessment differs (-first +second):\n%s", diff)
		}
	})
}

func TestLevel_JSON(t *testing.T) {
	data, err := json.Marshal(ClassifyPoaching(true, true))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"High"`)

	var decoded RiskRating
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, LevelHigh, decoded.Level)

	_, err = json.Marshal(RiskRating{})
	require.Error(t, err)

	assert.Error(t, json.Unmarshal([]byte(`{"level":"Extreme"}`), &decoded))
}

func TestLevel_Severity(t *testing.T) {
	assert.Equal(t, "error", LevelHigh.Severity())
	assert.Equal(t, "warning", LevelModerate.Severity())
	assert.Equal(t, "success", LevelLow.Severity())
	assert.Equal(t, "Unknown", Level(0).String())
}
