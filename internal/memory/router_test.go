package memory

import (
	"strings"
	"testing"
)

func newTestRouter() *Router {
	return NewRouter(NewKnowledge(DefaultKnowledge()), NewStores())
}

func TestRoutePreGateShortText(t *testing.T) {
	router := newTestRouter()
	decision := router.Route("u1", "ок", "")
	if decision.Outcome != OutcomeDefer {
		t.Fatalf("short text should defer, got %s", decision.Outcome)
	}
	if router.Stores().User("u1").Len() != 0 {
		t.Fatal("pre-gated text must not be appended to memory")
	}
}

func TestRoutePreGateLongText(t *testing.T) {
	router := newTestRouter()
	long := strings.Repeat("слово ", 21)
	decision := router.Route("u1", long, "")
	if decision.Outcome != OutcomeDefer {
		t.Fatalf("over-long text should defer, got %s", decision.Outcome)
	}
}

func TestRouteAppendsRegardlessOfOutcome(t *testing.T) {
	router := newTestRouter()
	decision := router.Route("u1", "подскажите про оплату голдой", "")
	if decision.Outcome != OutcomeDefer {
		t.Fatalf("unrelated first message should defer, got %s", decision.Outcome)
	}
	if router.Stores().User("u1").Len() != 1 {
		t.Fatal("deferred utterance should still be remembered")
	}
}

func TestRouteRepeatBeatsKnowledge(t *testing.T) {
	router := newTestRouter()
	router.Route("u1", "привет", "")

	// Second identical greeting: personal memory scores 1.0 and must win even
	// though the FAQ also matches perfectly.
	decision := router.Route("u1", "привет", "привет")
	if decision.Outcome != OutcomeRepeat {
		t.Fatalf("got outcome %s, want repeat", decision.Outcome)
	}
	if !strings.Contains(decision.Answer, "привет") {
		t.Fatalf("repeat reply should quote the remembered text, got %q", decision.Answer)
	}
}

func TestDecideConfidenceGate(t *testing.T) {
	// A perfect FAQ hit alone contributes only 0.5 and must defer.
	decision := decide(0, 1.0, 0, "", "answer")
	if decision.Outcome != OutcomeDefer {
		t.Fatalf("lone FAQ hit should defer below the gate, got %s", decision.Outcome)
	}
	if decision.Confidence != 0.5 {
		t.Fatalf("confidence = %f, want 0.5", decision.Confidence)
	}
}

func TestDecideKnowledgeBranch(t *testing.T) {
	decision := decide(0.6, 1.0, 0.9, "старый текст", "Привет-привет! 👋 Чем помочь?")
	if decision.Outcome != OutcomeKnowledge {
		t.Fatalf("got outcome %s, want knowledge", decision.Outcome)
	}
	if decision.Answer != "Привет-привет! 👋 Чем помочь?" {
		t.Fatalf("knowledge branch must return the FAQ answer verbatim, got %q", decision.Answer)
	}
}

func TestDecideContinuationBranch(t *testing.T) {
	decision := decide(0.8, 0.7, 0.9, "", "")
	if decision.Outcome != OutcomeContinuation {
		t.Fatalf("got outcome %s, want continuation", decision.Outcome)
	}
}

func TestDecideBranchPriority(t *testing.T) {
	// All three thresholds met at once: repeat wins.
	decision := decide(0.95, 0.95, 0.95, "старый вопрос", "ответ")
	if decision.Outcome != OutcomeRepeat {
		t.Fatalf("got outcome %s, want repeat", decision.Outcome)
	}
}

func TestDecideConfidenceMonotonic(t *testing.T) {
	base := decide(0.3, 0.3, 0.3, "", "").Confidence
	for _, bumped := range []Decision{
		decide(0.5, 0.3, 0.3, "", ""),
		decide(0.3, 0.5, 0.3, "", ""),
		decide(0.3, 0.3, 0.5, "", ""),
	} {
		if bumped.Confidence <= base {
			t.Fatalf("confidence should grow with each signal: base %f, bumped %f", base, bumped.Confidence)
		}
	}
}

func TestDecideConfidenceClamped(t *testing.T) {
	if c := decide(1.0, 1.0, 1.0, "x", "y").Confidence; c > 1 {
		t.Fatalf("confidence must stay within [0,1], got %f", c)
	}
}

func TestStoresLazyCreationAndDrop(t *testing.T) {
	stores := NewStores()
	if stores.Count() != 0 {
		t.Fatal("fresh store map should be empty")
	}
	stores.User("u1").Add("привет")
	if stores.Count() != 1 {
		t.Fatal("store should be created lazily on first access")
	}
	stores.Drop("u1")
	if stores.Count() != 0 {
		t.Fatal("drop should remove the store")
	}
	if stores.User("u1").Len() != 0 {
		t.Fatal("recreated store should start empty")
	}
}
