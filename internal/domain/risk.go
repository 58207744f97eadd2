package domain

import (
	"fmt"
	"time"
	_ "time/tzdata" // provider timezones must resolve without system zoneinfo
)

// Level is a qualitative risk rating.
type Level int

const (
	LevelLow Level = iota + 1
	LevelModerate
	LevelHigh
)

func (l Level) String() string {
	switch l {
	case LevelLow:
		return "Low"
	case LevelModerate:
		return "Moderate"
	case LevelHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// Severity maps a level to the display tone used for its alert.
func (l Level) Severity() string {
	switch l {
	case LevelHigh:
		return "error"
	case LevelModerate:
		return "warning"
	default:
		return "success"
	}
}

// MarshalText encodes the level as its name.
func (l Level) MarshalText() ([]byte, error) {
	switch l {
	case LevelLow, LevelModerate, LevelHigh:
		return []byte(l.String()), nil
	default:
		return nil, fmt.Errorf("invalid risk level %d", int(l))
	}
}

// UnmarshalText decodes a level name produced by MarshalText.
func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "Low":
		*l = LevelLow
	case "Moderate":
		*l = LevelModerate
	case "High":
		*l = LevelHigh
	default:
		return fmt.Errorf("invalid risk level %q", b)
	}
	return nil
}

// RiskRating pairs a level with its fixed alert headline and recommendation.
type RiskRating struct {
	Level          Level  `json:"level"`
	Headline       string `json:"headline"`
	Recommendation string `json:"recommendation"`
}

// Assessment holds the three independent ratings for one evaluation.
type Assessment struct {
	Stress       RiskRating `json:"stress"`
	Migration    RiskRating `json:"migration"`
	Poaching     RiskRating `json:"poaching"`
	Weekend      bool       `json:"weekend"`
	NearActivity bool       `json:"near_activity"`
	EvaluatedAt  time.Time  `json:"evaluated_at"`
}

type messages map[Level]RiskRating

var stressMessages = messages{
	LevelHigh: {
		Headline:       "High stress due to extreme heat or drought",
		Recommendation: "Provide artificial shade and temporary water sources. Reduce human activity near habitats.",
	},
	LevelModerate: {
		Headline:       "Moderate stress, monitor closely",
		Recommendation: "Increase environmental monitoring. Prepare backup water supply.",
	},
	LevelLow: {
		Headline:       "Low environmental stress",
		Recommendation: "Maintain current management. Conditions are stable.",
	},
}

var migrationMessages = messages{
	LevelHigh: {
		Headline:       "High risk of early animal migration",
		Recommendation: "Track movements via GPS tags. Strengthen ecological corridors.",
	},
	LevelModerate: {
		Headline:       "Moderate migration potential",
		Recommendation: "Coordinate with nearby reserves. Prepare for population shifts.",
	},
	LevelLow: {
		Headline:       "Stable habitat conditions",
		Recommendation: "No immediate actions needed. Maintain current observations.",
	},
}

var poachingMessages = messages{
	LevelHigh: {
		Headline:       "High poaching risk, critical alert",
		Recommendation: "Deploy ranger teams. Install camera traps. Increase night patrols.",
	},
	LevelModerate: {
		Headline:       "Moderate poaching risk",
		Recommendation: "Inform nearby communities. Set up temporary check-points.",
	},
	LevelLow: {
		Headline:       "Poaching risk is low",
		Recommendation: "Continue routine surveillance.",
	},
}

func (m messages) rate(l Level) RiskRating {
	r := m[l]
	r.Level = l
	return r
}

// climateLevel applies the shared heat/drought thresholds. Either condition
// alone escalates; the temperature and rainfall checks are not nested.
func climateLevel(tempC, precipMM float64) Level {
	switch {
	case tempC > 40 || precipMM < 5:
		return LevelHigh
	case tempC > 35 || precipMM < 10:
		return LevelModerate
	default:
		return LevelLow
	}
}

// ClassifyStress rates environmental stress from current temperature and
// today's precipitation.
func ClassifyStress(tempC, precipMM float64) RiskRating {
	return stressMessages.rate(climateLevel(tempC, precipMM))
}

// ClassifyMigration rates early-migration risk. It currently shares the stress
// thresholds, so its level always equals ClassifyStress for the same inputs.
// Kept separate so the two can diverge.
func ClassifyMigration(tempC, precipMM float64) RiskRating {
	return migrationMessages.rate(climateLevel(tempC, precipMM))
}

// ClassifyPoaching rates poaching risk from calendar and site context.
func ClassifyPoaching(weekend, nearActivity bool) RiskRating {
	switch {
	case nearActivity && weekend:
		return poachingMessages.rate(LevelHigh)
	case nearActivity:
		return poachingMessages.rate(LevelModerate)
	default:
		return poachingMessages.rate(LevelLow)
	}
}

// IsPoachingWeekend reports whether t falls on a Friday or Saturday in t's
// own location.
func IsPoachingWeekend(t time.Time) bool {
	switch t.Weekday() {
	case time.Friday, time.Saturday:
		return true
	default:
		return false
	}
}

// Assess derives all three ratings for a snapshot evaluated at now. The
// weekday is taken in the snapshot's timezone when it names a loadable
// location, otherwise in now's own location.
func Assess(snap WeatherSnapshot, now time.Time, nearActivity bool) Assessment {
	local := inTimezone(now, snap.Timezone)
	weekend := IsPoachingWeekend(local)

	return Assessment{
		Stress:       ClassifyStress(snap.CurrentTempC, snap.PrecipitationMM),
		Migration:    ClassifyMigration(snap.CurrentTempC, snap.PrecipitationMM),
		Poaching:     ClassifyPoaching(weekend, nearActivity),
		Weekend:      weekend,
		NearActivity: nearActivity,
		EvaluatedAt:  local,
	}
}

func inTimezone(t time.Time, tz string) time.Time {
	if tz == "" {
		return t
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return t
	}
	return t.In(loc)
}
