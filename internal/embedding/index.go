package embedding

import "sort"

// Hit is one search result: the position of the stored vector and its inner
// product with the query. Stored vectors are unit-length, so the score is the
// cosine similarity in [0, 1] for bag-of-words inputs.
type Hit struct {
	Index int
	Score float32
}

// Index is an append-only store of vectors searched by linear scan. Expected
// scale is tiny (a fixed FAQ set, at most a few dozen utterances per user), so
// no ANN structure is warranted.
type Index struct {
	vectors [][]float32
}

func NewIndex() *Index {
	return &Index{}
}

func (idx *Index) Len() int {
	return len(idx.vectors)
}

// Add appends a vector. The caller keeps any parallel payload slice aligned
// with the returned position.
func (idx *Index) Add(vec []float32) int {
	idx.vectors = append(idx.vectors, vec)
	return len(idx.vectors) - 1
}

// Search returns up to k stored vectors ordered by descending inner product
// with the query. A zero query (no tokens) matches nothing with score 0.
func (idx *Index) Search(query []float32, k int) []Hit {
	if k < 1 || len(idx.vectors) == 0 {
		return nil
	}
	hits := make([]Hit, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		hits = append(hits, Hit{Index: i, Score: innerProduct(query, vec)})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].Score > hits[b].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func innerProduct(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
