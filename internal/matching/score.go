package matching

import (
	"math"
	"strconv"
)

// Result carries the final score with the signals it was blended from.
type Result struct {
	// Score is in [0, 100] with one decimal.
	Score float64 `json:"score" yaml:"score"`
	// Cosine is the tf-idf cosine similarity in [0, 1].
	Cosine float64 `json:"cosine" yaml:"cosine"`
	// Overlap is the share of job keywords found in the resume, in [0, 1].
	Overlap float64 `json:"overlap" yaml:"overlap"`
	// Vocabulary is the number of terms kept by the vectorizer.
	Vocabulary int `json:"vocabulary" yaml:"vocabulary"`
}

// ComputeMatchScore scores resumeText against jobDescriptionText. It is a pure
// function of its inputs and safe for concurrent use.
func ComputeMatchScore(resumeText, jobDescriptionText string, opts ...Option) (float64, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	res, err := Compute(resumeText, jobDescriptionText, o)
	if err != nil {
		return 0, err
	}
	return res.Score, nil
}

// Compute is ComputeMatchScore with explicit options and the intermediate
// signals exposed. Empty texts are valid and score 0 on the cosine side.
func Compute(resumeText, jobDescriptionText string, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	resume := Normalize(resumeText)
	jd := Normalize(jobDescriptionText)

	vectors, err := NewVectorizer(opts.MaxVocabulary).FitTransform(resume, jd)
	if err != nil {
		return nil, err
	}

	cosine := clamp(CosineSimilarity(vectors[0], vectors[1]), 0, 1)
	overlap := Overlap(jd, resume)

	vocabulary := make(map[string]struct{})
	for _, vec := range vectors {
		for term := range vec {
			vocabulary[term] = struct{}{}
		}
	}

	return &Result{
		Score:      Combine(cosine, overlap, opts),
		Cosine:     cosine,
		Overlap:    overlap,
		Vocabulary: len(vocabulary),
	}, nil
}

// Combine blends the signals into a 0-100 score rounded to one decimal.
func Combine(cosine, overlap float64, opts Options) float64 {
	combined := opts.CosineWeight*cosine + opts.OverlapWeight*overlap
	return round1(clamp(combined*100, 0, 100))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// round1 rounds the exact binary value to one decimal with ties to even.
// math.Round(v*10)/10 would push exact ties such as 26.25 upwards.
func round1(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	return r
}
