package match

import (
	"fmt"

	"github.com/poiesic/soundbite/core"
)

// Labels recorded in Decision.MethodUsed by the max strategy.
const (
	UsedIndividualOnly   = "individual_was_only_valid"
	UsedCombinedOnly     = "combined_was_only_valid"
	UsedIndividualBetter = "individual_was_better"
	UsedCombinedBetter   = "combined_was_better"
)

// EmptyQueryMessage is the message of the decision returned for blank text.
const EmptyQueryMessage = "Empty query provided. Please provide a non-empty query."

// format applies the threshold to a strategy's candidate. Score tables and
// diagnostics are attached only when verbose is set.
func format(c candidate, threshold float64, verbose bool) *core.Decision {
	d := &core.Decision{
		Confidence: c.score,
		Method:     c.method,
	}
	if c.found() && c.score >= threshold {
		d.Result = core.Success{ClipID: c.clipID}
		d.Message = fmt.Sprintf("match found with confidence %.3f using method %s", c.score, c.method)
	} else {
		d.Result = core.NoMatch{BestGuess: c.clipID}
		d.Message = fmt.Sprintf("no sufficiently good match. best score: %.3f with method %s", c.score, c.method)
	}
	if verbose {
		d.Scores = c.scores
		d.Details = c.details
	}
	return d
}

// formatMax formats both sub-results with the same threshold and keeps the
// better decision. A decision that passed the threshold always beats one that
// did not; otherwise the higher confidence wins and ties go to individual.
func formatMax(ind, comb candidate, threshold float64, verbose bool) *core.Decision {
	indDecision := format(ind, threshold, verbose)
	combDecision := format(comb, threshold, verbose)
	indRejected := indDecision.Status() == core.StatusNoMatch
	combRejected := combDecision.Status() == core.StatusNoMatch

	indScore, combScore := ind.score, comb.score
	var d *core.Decision
	switch {
	case indRejected && !combRejected:
		d = combDecision
		d.MethodUsed = UsedCombinedOnly
		d.ComparedWith = &core.Comparison{IndividualScore: &indScore}
	case combRejected && !indRejected:
		d = indDecision
		d.MethodUsed = UsedIndividualOnly
		d.ComparedWith = &core.Comparison{CombinedScore: &combScore}
	case indScore >= combScore:
		d = indDecision
		d.MethodUsed = UsedIndividualBetter
		d.ComparedWith = &core.Comparison{CombinedScore: &combScore}
	default:
		d = combDecision
		d.MethodUsed = UsedCombinedBetter
		d.ComparedWith = &core.Comparison{IndividualScore: &indScore}
	}
	d.Method = core.MethodMax
	return d
}

// failure builds an error decision with zero confidence.
func failure(method core.Method, message, reason string) *core.Decision {
	return &core.Decision{
		Result:  core.Failure{Reason: reason},
		Method:  method,
		Message: message,
	}
}
