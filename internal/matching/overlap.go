package matching

const minKeywordLength = 3

// Overlap returns the share of the job description keywords (words longer than
// two characters) that also appear in the resume. Both inputs must already be
// normalized. The denominator never drops below one.
func Overlap(jobDescription, resume string) float64 {
	jd := keywordSet(jobDescription)
	r := keywordSet(resume)

	shared := 0
	for w := range jd {
		if _, ok := r[w]; ok {
			shared++
		}
	}

	return float64(shared) / float64(max(1, len(jd)))
}

func keywordSet(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Tokens(normalized) {
		if len(w) < minKeywordLength {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
