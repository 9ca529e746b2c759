// Package embedding turns short chat utterances into fixed-size vectors for
// similarity search. The embedder is a deterministic hash bag-of-words: no
// model files, no network, good enough for matching support-chat phrasing.
package embedding

import (
	"hash/fnv"
	"math"
	"regexp"
	"strings"
)

// Dim is the embedding dimension shared by every index in the process.
const Dim = 256

var tokenPattern = regexp.MustCompile(`[a-zа-яё0-9]+`)

// Normalize lowercases the text and collapses all whitespace runs to single
// spaces. Every similarity comparison in the pipeline runs on normalized text.
func Normalize(text string) string {
	value := strings.TrimSpace(strings.ToLower(text))
	return strings.Join(strings.Fields(value), " ")
}

// Tokenize splits normalized text into alphanumeric runs. Latin and Cyrillic
// letters both count; everything else is a separator.
func Tokenize(text string) []string {
	return tokenPattern.FindAllString(Normalize(text), -1)
}

// Embed maps text to a unit-length vector of Dim float32 buckets. Each token
// is hashed (FNV-1a) into a bucket and counted, then the vector is
// L2-normalized. Text with no tokens yields the zero vector, which scores 0
// against everything rather than NaN.
func Embed(text string) []float32 {
	vec := make([]float32, Dim)
	for _, token := range Tokenize(text) {
		hasher := fnv.New32a()
		hasher.Write([]byte(token))
		vec[hasher.Sum32()%Dim]++
	}

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
