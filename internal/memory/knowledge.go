// Package memory holds the retrieval side of the triage engine: a global FAQ
// knowledge base, per-user utterance memory, and the confidence router that
// combines their similarity signals into an auto-answer decision.
package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cubeworld/supportbot/internal/embedding"
)

// KnowledgeItem is one FAQ pattern and its canned answer.
type KnowledgeItem struct {
	Pattern string `yaml:"pattern"`
	Answer  string `yaml:"answer"`
}

// DefaultKnowledge is the built-in FAQ set used when no knowledge file is
// configured.
func DefaultKnowledge() []KnowledgeItem {
	return []KnowledgeItem{
		{Pattern: "как дела", Answer: "Работаю как всегда 🤖💪"},
		{Pattern: "ты кто", Answer: "Я бот поддержки CubeWorld, всегда на связи 😊"},
		{Pattern: "что можешь", Answer: "Помогаю с поддержкой, платежами и отвечаю на вопросы 😎"},
		{Pattern: "помоги", Answer: "Конечно, бро! Рассказывай, что случилось?"},
		{Pattern: "привет", Answer: "Привет-привет! 👋 Чем помочь?"},
		{Pattern: "здрасте", Answer: "Приветствую 👋 Что случилось?"},
		{Pattern: "здравствуйте", Answer: "Здравствуйте! 👋 Как я могу помочь?"},
	}
}

// LoadKnowledgeFile reads a YAML list of knowledge items. The file is read
// once at startup; the resulting knowledge base is immutable afterwards.
func LoadKnowledgeFile(path string) ([]KnowledgeItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}
	var items []KnowledgeItem
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("knowledge file %s has no items", path)
	}
	return items, nil
}

// Knowledge is the embedded FAQ table. Built once, read-only afterwards, so
// concurrent searches need no locking.
type Knowledge struct {
	items []KnowledgeItem
	index *embedding.Index
}

func NewKnowledge(items []KnowledgeItem) *Knowledge {
	kb := &Knowledge{
		items: items,
		index: embedding.NewIndex(),
	}
	for _, item := range items {
		kb.index.Add(embedding.Embed(item.Pattern))
	}
	return kb
}

// SearchFAQ returns the best-matching answer and its similarity score. With an
// empty table or a token-free query the score is 0.
func (kb *Knowledge) SearchFAQ(text string) (string, float32) {
	hits := kb.index.Search(embedding.Embed(text), 1)
	if len(hits) == 0 {
		return "", 0
	}
	return kb.items[hits[0].Index].Answer, hits[0].Score
}
