package match

import (
	"github.com/poiesic/soundbite/core"
)

// Fixed blend weights of the hybrid strategy.
const (
	HybridIndividualWeight = 0.7
	HybridCombinedWeight   = 0.3
)

// candidate is the raw output of a scoring strategy before the threshold is
// applied.
type candidate struct {
	clipID  string // Empty when no clip qualified
	score   float64
	scores  core.ScoreTable
	details *core.Details
	method  core.Method
}

func (c candidate) found() bool {
	return c.clipID != ""
}

// scorer ranks the catalogue against a query vector.
type scorer interface {
	score(query []float32, clips []*core.Clip) candidate
}

type individualScorer struct{}

type combinedScorer struct{}

type hybridScorer struct{}

var (
	_ scorer = individualScorer{}
	_ scorer = combinedScorer{}
	_ scorer = hybridScorer{}
)

// score takes, per clip, the maximum similarity over its phrases. Only clips
// scoring above zero can become the candidate, and ties keep the earlier clip.
func (individualScorer) score(query []float32, clips []*core.Clip) candidate {
	out := candidate{
		method:  core.MethodIndividual,
		scores:  make(core.ScoreTable, 0, len(clips)),
		details: &core.Details{Individual: make(map[string]core.PhraseScores, len(clips))},
	}
	for _, clip := range clips {
		phraseScores := make([]float64, len(clip.Vectors))
		maxScore, bestPhrase := 0.0, 0
		for i, vec := range clip.Vectors {
			phraseScores[i] = core.CosineSimilarity(query, vec)
			if i == 0 || phraseScores[i] > maxScore {
				maxScore, bestPhrase = phraseScores[i], i
			}
		}

		out.scores = append(out.scores, core.CandidateScore{ClipID: clip.ID, Score: maxScore})
		out.details.Individual[clip.ID] = core.PhraseScores{
			Phrases:    clip.Phrases,
			Scores:     phraseScores,
			MaxScore:   maxScore,
			BestPhrase: bestPhrase,
		}
		if maxScore > out.score {
			out.clipID, out.score = clip.ID, maxScore
		}
	}
	return out
}

// score compares the query with each clip's combined embedding, with the same
// candidate rule as the individual strategy.
func (combinedScorer) score(query []float32, clips []*core.Clip) candidate {
	out := candidate{
		method: core.MethodCombined,
		scores: make(core.ScoreTable, 0, len(clips)),
	}
	for _, clip := range clips {
		sim := core.CosineSimilarity(query, clip.Combined)
		out.scores = append(out.scores, core.CandidateScore{ClipID: clip.ID, Score: sim})
		if sim > out.score {
			out.clipID, out.score = clip.ID, sim
		}
	}
	return out
}

// score blends the individual and combined scores of every clip. The first
// clip with the highest blend is the candidate even when its score is not
// positive. An empty catalogue has no candidate.
func (hybridScorer) score(query []float32, clips []*core.Clip) candidate {
	ind := individualScorer{}.score(query, clips)
	comb := combinedScorer{}.score(query, clips)

	out := candidate{
		method: core.MethodHybrid,
		scores: make(core.ScoreTable, 0, len(clips)),
		details: &core.Details{Hybrid: &core.HybridBreakdown{
			Individual:       ind.scores,
			Combined:         comb.scores,
			IndividualWeight: HybridIndividualWeight,
			CombinedWeight:   HybridCombinedWeight,
		}},
	}
	for i, clip := range clips {
		indScore, _ := ind.scores.Get(clip.ID)
		combScore, _ := comb.scores.Get(clip.ID)
		blended := HybridIndividualWeight*indScore + HybridCombinedWeight*combScore
		out.scores = append(out.scores, core.CandidateScore{ClipID: clip.ID, Score: blended})
		if i == 0 || blended > out.score {
			out.clipID, out.score = clip.ID, blended
		}
	}
	return out
}

// scorers is the closed set of single-pass strategies. Max is built from the
// individual and combined entries.
var scorers = map[core.Method]scorer{
	core.MethodIndividual: individualScorer{},
	core.MethodCombined:   combinedScorer{},
	core.MethodHybrid:     hybridScorer{},
}
