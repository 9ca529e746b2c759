package memory

import (
	"fmt"
	"strings"
	"unicode/utf8"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/cubeworld/supportbot/internal/embedding"
)

// Router weights and thresholds. The scheme is fixed: the weights sum to one
// so confidence stays in [0, 1], and the branch cuts replicate the original
// tuning.
const (
	weightKnowledge = 0.5
	weightMemory    = 0.3
	weightHistory   = 0.2

	confidenceFloor       = 0.75
	repeatThreshold       = 0.93
	knowledgeThreshold    = 0.82
	continuationThreshold = 0.85

	minQueryRunes = 3
	maxQueryWords = 20
)

// Outcome names which signal won the routing decision.
type Outcome string

const (
	OutcomeDefer        Outcome = "defer"
	OutcomeRepeat       Outcome = "repeat"
	OutcomeKnowledge    Outcome = "knowledge"
	OutcomeContinuation Outcome = "continuation"
)

// Decision is the router's verdict for one utterance. Answer is empty exactly
// when Outcome is OutcomeDefer: deferring is the designed hand-to-a-human
// signal, not an error.
type Decision struct {
	Outcome    Outcome
	Answer     string
	Confidence float64
}

const continuationReply = "Понял тебя, продолжаем. Что ещё уточнить? 🙂"

func repeatReply(remembered string) string {
	return fmt.Sprintf(
		"🧠 Я помню, ты уже писал:\n«%s»\n\nЕсли что-то изменилось — уточни детали 😉",
		remembered,
	)
}

// Router combines FAQ similarity, personal-memory similarity and history
// continuity into one confidence score and renders the routing decision.
type Router struct {
	knowledge *Knowledge
	stores    *Stores
}

func NewRouter(knowledge *Knowledge, stores *Stores) *Router {
	return &Router{knowledge: knowledge, stores: stores}
}

// Stores exposes the per-user memory map for the idle-sweep janitor.
func (r *Router) Stores() *Stores {
	return r.stores
}

// Route scores the utterance for the given user. prevUtterance is the
// immediately preceding history entry ("" when the history is empty). The
// normalized text is appended to the user's personal memory whenever it passes
// the pre-gates, regardless of the outcome.
func (r *Router) Route(userID, text, prevUtterance string) Decision {
	norm := embedding.Normalize(text)
	if utf8.RuneCountInString(norm) < minQueryRunes {
		return Decision{Outcome: OutcomeDefer}
	}
	if len(strings.Fields(norm)) > maxQueryWords {
		return Decision{Outcome: OutcomeDefer}
	}

	store := r.stores.User(userID)
	memText, memScore := store.Search(norm)
	kbAnswer, kbScore := r.knowledge.SearchFAQ(norm)

	histScore := 0.0
	if prev := embedding.Normalize(prevUtterance); prev != "" {
		histScore = float64(fuzzy.PartialRatio(prev, norm)) / 100.0
	}

	store.Add(norm)

	return decide(float64(memScore), float64(kbScore), histScore, memText, kbAnswer)
}

// decide applies the confidence gate and the fixed branch priority:
// repeat > knowledge > continuation > defer.
func decide(memScore, kbScore, histScore float64, memText, kbAnswer string) Decision {
	confidence := weightKnowledge*kbScore + weightMemory*memScore + weightHistory*histScore
	if confidence > 1 {
		confidence = 1
	}
	if confidence < confidenceFloor {
		return Decision{Outcome: OutcomeDefer, Confidence: confidence}
	}

	switch {
	case memScore >= repeatThreshold:
		return Decision{Outcome: OutcomeRepeat, Answer: repeatReply(memText), Confidence: confidence}
	case kbScore >= knowledgeThreshold && kbAnswer != "":
		return Decision{Outcome: OutcomeKnowledge, Answer: kbAnswer, Confidence: confidence}
	case histScore >= continuationThreshold:
		return Decision{Outcome: OutcomeContinuation, Answer: continuationReply, Confidence: confidence}
	default:
		return Decision{Outcome: OutcomeDefer, Confidence: confidence}
	}
}
