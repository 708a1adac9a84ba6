package discovery

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/williampepple1/trip-extractor/internal/dom"
)

// Weights of the sibling similarity score
const (
	tagWeight      = 0.3
	classWeight    = 0.4
	childrenWeight = 0.3
)

// Similarity scores two elements in [0,1] by tag equality, class overlap and
// child-count proximity
func Similarity(a, b *goquery.Selection) float64 {
	score := 0.0
	if goquery.NodeName(a) == goquery.NodeName(b) {
		score += tagWeight
	}
	score += classWeight * jaccard(dom.Classes(a), dom.Classes(b))

	ca, cb := a.Children().Length(), b.Children().Length()
	if most := max(ca, cb); most == 0 {
		score += childrenWeight
	} else {
		diff := ca - cb
		if diff < 0 {
			diff = -diff
		}
		score += childrenWeight * (1 - float64(diff)/float64(most))
	}
	return score
}

// jaccard of two class lists; two empty lists are identical
func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}

	set := make(map[string]bool, len(a))
	for _, c := range a {
		set[c] = true
	}
	union := len(set)
	inter := 0
	seen := make(map[string]bool, len(b))
	for _, c := range b {
		if seen[c] {
			continue
		}
		seen[c] = true
		if set[c] {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}
