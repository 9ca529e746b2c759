package embedding

import (
	"math"
	"testing"
)

func TestEmbedIsDeterministic(t *testing.T) {
	first := Embed("привет как дела")
	second := Embed("привет как дела")
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("embedding differs at bucket %d: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestEmbedNormalizesInput(t *testing.T) {
	plain := Embed("привет как дела")
	noisy := Embed("  ПРИВЕТ   Как\nдела ")
	for i := range plain {
		if plain[i] != noisy[i] {
			t.Fatal("expected case and whitespace differences to produce identical vectors")
		}
	}
}

func TestEmbedIsUnitLength(t *testing.T) {
	vec := Embed("сброс пароля на аккаунте")
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Fatalf("expected unit vector, squared norm = %f", sum)
	}
}

func TestEmbedEmptyStaysZero(t *testing.T) {
	vec := Embed("?!... \t")
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("expected zero vector for token-free input, bucket %d = %f", i, v)
		}
	}
}

func TestTokenizeHandlesBothAlphabets(t *testing.T) {
	tokens := Tokenize("Hello, привет 123!")
	want := []string{"hello", "привет", "123"}
	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, tokens[i], want[i])
		}
	}
}

func TestIdenticalTextsScoreOne(t *testing.T) {
	a := Embed("не пришел донат")
	b := Embed("не пришел донат")
	score := innerProduct(a, b)
	if math.Abs(float64(score)-1.0) > 1e-5 {
		t.Fatalf("identical texts should score 1.0, got %f", score)
	}
}
