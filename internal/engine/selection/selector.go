// Package selection chooses the next item to administer. Every decision is a
// pure function of the pool snapshot and persisted session state, so resuming
// a session mid-test replays the same choices an uninterrupted run would make.
package selection

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/brightpath/assessment-engine/internal/domain"
	"github.com/brightpath/assessment-engine/internal/engine/irt"
)

// infoEpsilon is the window within which two information values count as tied.
const infoEpsilon = 1e-6

type Candidate struct {
	ID            uuid.UUID
	Params        irt.Params
	Topic         string
	ExposureCount int
}

// Policy carries the session config fields selection cares about plus the
// externally supplied engine policy (exposure cap, topic targets).
type Policy struct {
	Method          domain.SelectionMethod
	InitialAbility  float64
	TopicBalancing  bool
	TopicTargets    map[string]float64
	ExposureControl bool
	MaxExposureRate float64
}

// SessionView is the per-decision snapshot of session state.
type SessionView struct {
	SessionID         uuid.UUID
	QuestionsAnswered int
	Theta             float64
	TopicCoverage     map[string]int
	// PoolSessionCount is the number of sessions that have drawn from the
	// pool; it is the denominator for realized exposure rates.
	PoolSessionCount int
}

// Eligible converts pool items into candidates, dropping inactive, unapproved
// and already administered items.
func Eligible(items []*domain.PoolItem, administered map[uuid.UUID]bool) []Candidate {
	out := make([]Candidate, 0, len(items))
	for _, it := range items {
		if it == nil || !it.Selectable() || administered[it.ID] {
			continue
		}
		out = append(out, Candidate{
			ID:            it.ID,
			Params:        irt.Params{A: it.Discrimination, B: it.Difficulty, C: it.Guessing},
			Topic:         it.Topic,
			ExposureCount: it.ExposureCount,
		})
	}
	return out
}

// SelectNext returns the id of the next item to administer, or
// domain.ErrPoolExhausted when no candidate remains.
func SelectNext(cands []Candidate, view SessionView, pol Policy) (uuid.UUID, error) {
	if len(cands) == 0 {
		return uuid.Nil, domain.ErrPoolExhausted
	}

	if pol.TopicBalancing {
		cands = preferUnderCoveredTopics(cands, view, pol)
	}

	ranked := rank(cands, view, pol)

	if pol.ExposureControl && pol.MaxExposureRate > 0 {
		if id, ok := exposureGate(ranked, view, pol); ok {
			return id, nil
		}
		// Every draw rejected: the top-ranked item is still offered so the
		// session always advances while an eligible item exists.
	}
	return ranked[0].ID, nil
}

func rank(cands []Candidate, view SessionView, pol Policy) []Candidate {
	out := make([]Candidate, len(cands))
	copy(out, cands)

	// Canonical order first so every later comparison is deterministic.
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })

	method := pol.Method
	if method == domain.SelectMaximumInformation && view.QuestionsAnswered == 0 {
		// Information at a point estimate is undefined before any response;
		// open with the item nearest the configured starting ability.
		method = domain.SelectClosestDifficulty
	}

	switch method {
	case domain.SelectClosestDifficulty:
		target := view.Theta
		if view.QuestionsAnswered == 0 {
			target = pol.InitialAbility
		}
		sort.SliceStable(out, func(i, j int) bool {
			di := math.Abs(out[i].Params.B - target)
			dj := math.Abs(out[j].Params.B - target)
			if math.Abs(di-dj) < infoEpsilon {
				return tieBreak(out[i], out[j])
			}
			return di < dj
		})
	case domain.SelectRandom:
		rng := draw(view.SessionID, view.QuestionsAnswered)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	default: // maximum_information
		sort.SliceStable(out, func(i, j int) bool {
			ii := irt.Information(view.Theta, out[i].Params)
			ij := irt.Information(view.Theta, out[j].Params)
			if math.Abs(ii-ij) < infoEpsilon {
				return tieBreak(out[i], out[j])
			}
			return ii > ij
		})
	}
	return out
}

func tieBreak(a, b Candidate) bool {
	if a.ExposureCount != b.ExposureCount {
		return a.ExposureCount < b.ExposureCount
	}
	return a.ID.String() < b.ID.String()
}

// exposureGate applies Sympson-Hetter style control: an item whose realized
// exposure rate exceeds the cap is offered with reduced probability, and a
// rejected draw falls through to the next-ranked candidate.
func exposureGate(ranked []Candidate, view SessionView, pol Policy) (uuid.UUID, bool) {
	rng := draw(view.SessionID, view.QuestionsAnswered)
	for _, c := range ranked {
		p := administerProbability(c, view.PoolSessionCount, pol.MaxExposureRate)
		if rng.Float64() < p {
			return c.ID, true
		}
	}
	return uuid.Nil, false
}

// administerProbability throttles an item whose realized rate sits above the
// cap. The probability is the cap scaled down by the overexposure ratio
// (cap/rate), which makes the cap itself the fixed point of the realized
// rate: plain cap/rate would settle at sqrt(cap) instead, because throttled
// administrations keep feeding the same counter.
func administerProbability(c Candidate, poolSessions int, maxRate float64) float64 {
	if poolSessions <= 0 || c.ExposureCount <= 0 {
		return 1
	}
	rate := float64(c.ExposureCount) / float64(poolSessions)
	if rate <= maxRate {
		return 1
	}
	return maxRate * (maxRate / rate)
}

// preferUnderCoveredTopics restricts candidates to topics below their target
// coverage share, when any such candidate exists. Targets default to a
// uniform share over the topics present among the candidates.
func preferUnderCoveredTopics(cands []Candidate, view SessionView, pol Policy) []Candidate {
	topics := map[string]bool{}
	for _, c := range cands {
		topics[c.Topic] = true
	}
	for t := range view.TopicCoverage {
		topics[t] = true
	}
	if len(topics) < 2 {
		return cands
	}

	targets := pol.TopicTargets
	if len(targets) == 0 {
		targets = map[string]float64{}
		share := 1 / float64(len(topics))
		for t := range topics {
			targets[t] = share
		}
	}

	answered := view.QuestionsAnswered
	under := map[string]bool{}
	for t := range topics {
		target, ok := targets[t]
		if !ok {
			continue
		}
		var share float64
		if answered > 0 {
			share = float64(view.TopicCoverage[t]) / float64(answered)
		}
		if share < target {
			under[t] = true
		}
	}
	if len(under) == 0 {
		return cands
	}

	preferred := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if under[c.Topic] {
			preferred = append(preferred, c)
		}
	}
	if len(preferred) == 0 {
		return cands
	}
	return preferred
}

// draw builds the deterministic PRNG for one selection decision. Seeding from
// (session id, question number) is what makes random selection and exposure
// draws replayable after a resume.
func draw(sessionID uuid.UUID, questionsAnswered int) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write(sessionID[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(questionsAnswered))
	_, _ = h.Write(buf[:])
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
