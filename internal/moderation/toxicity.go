package moderation

import (
	"strings"
	"sync"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// toxicWords feed the fuzzy 0..100 score. Full words, matched loosely.
var defaultToxicWords = []string{
	"ебан", "еблан", "сука", "блять", "блядь", "нахуй",
	"пидор", "пидр", "хуй", "пизда", "мразь", "долбаеб",
	"идиот", "тупой", "тупица", "сдохни", "убью", "вы че конченые",
}

// badStems are the hard gate: plain substring containment, catching
// inflections the fuzzy pass can miss.
var defaultBadStems = []string{
	"бля", "сука", "пизд", "хуй", "еба", "нах", "уеб",
	"мраз", "пидор", "пидр", "еблан", "даун", "долбаеб", "долбоеб",
}

// softWords mark pleading or help-seeking phrasing. The signal is computed
// but not wired into any routing decision yet.
var defaultSoftWords = []string{
	"помоги", "пж", "пжж", "умоляю", "прошу",
	"не работает", "сломалось", "беда", "проблема",
	"пожалуйста", "не понимаю", "что делать",
}

const (
	toxicFuzzyThreshold = 80
	softFuzzyThreshold  = 70
	toxicWordWeight     = 25
	maxToxicityScore    = 100
)

// ToxicityFilter scores text against curated word lists. The lists can be
// swapped at runtime by the wordlist watcher, so reads go through a lock.
type ToxicityFilter struct {
	mu         sync.RWMutex
	toxicWords []string
	badStems   []string
	softWords  []string
}

func NewToxicityFilter() *ToxicityFilter {
	return &ToxicityFilter{
		toxicWords: defaultToxicWords,
		badStems:   defaultBadStems,
		softWords:  defaultSoftWords,
	}
}

// SetBadStems replaces the hard-gate stem list. Empty input is ignored: an
// operator emptying the file must not silently disable the gate.
func (f *ToxicityFilter) SetBadStems(stems []string) {
	if len(stems) == 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.badStems = stems
}

// Score returns a 0..100 toxicity level: +25 per toxic word whose fuzzy
// partial ratio with the lowercased text exceeds 80.
func (f *ToxicityFilter) Score(text string) int {
	t := strings.ToLower(text)
	f.mu.RLock()
	words := f.toxicWords
	f.mu.RUnlock()

	score := 0
	for _, word := range words {
		if fuzzy.PartialRatio(t, word) > toxicFuzzyThreshold {
			score += toxicWordWeight
		}
	}
	if score > maxToxicityScore {
		score = maxToxicityScore
	}
	return score
}

// IsToxic is the hard gate used by the orchestrator: substring containment
// against the bad-word stems.
func (f *ToxicityFilter) IsToxic(text string) bool {
	t := strings.ToLower(text)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, stem := range f.badStems {
		if strings.Contains(t, stem) {
			return true
		}
	}
	return false
}

// IsSoftText reports pleading phrasing. Reserved as a tone signal for future
// routing; nothing consumes it in the decision flow today.
func (f *ToxicityFilter) IsSoftText(text string) bool {
	t := strings.ToLower(text)
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, word := range f.softWords {
		if fuzzy.PartialRatio(t, word) > softFuzzyThreshold {
			return true
		}
	}
	return false
}
