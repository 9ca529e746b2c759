package moderation

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsToxicCatchesStems(t *testing.T) {
	filter := NewToxicityFilter()
	cases := []struct {
		text  string
		toxic bool
	}{
		{"да пошел ты нахуй", true},
		{"СУКА опять не работает", true},
		{"привет, как дела?", false},
		{"не пришел донат", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := filter.IsToxic(tc.text); got != tc.toxic {
			t.Fatalf("IsToxic(%q) = %v, want %v", tc.text, got, tc.toxic)
		}
	}
}

func TestScoreAccumulatesAndCaps(t *testing.T) {
	filter := NewToxicityFilter()
	if score := filter.Score("привет, подскажи по оплате"); score != 0 {
		t.Fatalf("clean text scored %d, want 0", score)
	}
	angry := filter.Score("сука блять нахуй пизда мразь идиот")
	if angry != 100 {
		t.Fatalf("maximally angry text scored %d, want capped 100", angry)
	}
	mild := filter.Score("ну ты и идиот")
	if mild < 25 {
		t.Fatalf("single toxic word scored %d, want >= 25", mild)
	}
	if mild >= angry {
		t.Fatalf("single word (%d) should score below full rant (%d)", mild, angry)
	}
}

func TestIsSoftText(t *testing.T) {
	filter := NewToxicityFilter()
	if !filter.IsSoftText("помоги пожалуйста, сломалось всё") {
		t.Fatal("pleading text should be soft")
	}
	if filter.IsSoftText("xzqw") {
		t.Fatal("noise should not be soft")
	}
}

func TestSetBadStemsIgnoresEmpty(t *testing.T) {
	filter := NewToxicityFilter()
	filter.SetBadStems(nil)
	if !filter.IsToxic("сука") {
		t.Fatal("empty stem update must not disable the gate")
	}
	filter.SetBadStems([]string{"грифер"})
	if !filter.IsToxic("опять этот грифер") {
		t.Fatal("replaced stems should apply")
	}
	if filter.IsToxic("сука") {
		t.Fatal("old stems should be gone after replacement")
	}
}

func TestLoadStemsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stems.txt")
	content := "# комментарий\nгрифер\n\nЧИТЕР\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	stems, err := LoadStemsFile(path)
	if err != nil {
		t.Fatalf("load stems: %v", err)
	}
	if len(stems) != 2 || stems[0] != "грифер" || stems[1] != "читер" {
		t.Fatalf("unexpected stems: %v", stems)
	}
}
