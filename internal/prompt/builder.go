package prompt

import (
	"fmt"
	"strings"
)

// Factors holds the three lifestyle sliders, each on a 0-10 scale.
type Factors struct {
	Smoking     int `json:"smoking"`
	SunExposure int `json:"sun_exposure"`
	Stress      int `json:"stress"`
}

// DefaultFactors returns the slider values a fresh session starts with.
func DefaultFactors() Factors {
	return Factors{Smoking: 0, SunExposure: 2, Stress: 3}
}

// severityThreshold is the slider value a factor must exceed before it
// contributes a clause to the instruction.
const severityThreshold = 5

const (
	clauseSmoking = "a heavy smoking habit"
	clauseSun     = "frequent unprotected sun exposure"
	clauseStress  = "chronically high stress levels"
	clauseDefault = "a healthy lifestyle"
)

// Clamp bounds every factor to the 0-10 slider range.
func (f Factors) Clamp() Factors {
	f.Smoking = clamp(f.Smoking)
	f.SunExposure = clamp(f.SunExposure)
	f.Stress = clamp(f.Stress)
	return f
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Build produces the aging instruction for one target year. Clause order is
// fixed: smoking, sun exposure, stress. When no factor exceeds the threshold
// the instruction assumes a healthy lifestyle instead of an empty clause list.
func Build(year int, f Factors) string {
	var clauses []string
	if f.Smoking > severityThreshold {
		clauses = append(clauses, clauseSmoking)
	}
	if f.SunExposure > severityThreshold {
		clauses = append(clauses, clauseSun)
	}
	if f.Stress > severityThreshold {
		clauses = append(clauses, clauseStress)
	}
	if len(clauses) == 0 {
		clauses = append(clauses, clauseDefault)
	}
	return fmt.Sprintf(
		"Edit this portrait photo to show how the same person will realistically look in the year %d. "+
			"Age the face, skin and hair naturally for the years passed, assuming %s. "+
			"Keep the person's identity, pose and framing recognizable. Photorealistic output.",
		year, strings.Join(clauses, ", "))
}
