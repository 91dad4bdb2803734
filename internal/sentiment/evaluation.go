package sentiment

import "sort"

// Accuracy returns the share of predictions equal to the truth
func Accuracy(truth, pred []int) float64 {
	if len(truth) == 0 {
		return 0
	}
	correct := 0
	for i := range truth {
		if truth[i] == pred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(truth))
}

// WeightedF1 returns per-class F1 averaged with class support as weight,
// over every class that appears in truth or pred. Zero divisions count as 0.
func WeightedF1(truth, pred []int) float64 {
	type counts struct{ tp, fp, fn, support int }
	perClass := make(map[int]*counts)
	get := func(label int) *counts {
		c, ok := perClass[label]
		if !ok {
			c = &counts{}
			perClass[label] = c
		}
		return c
	}

	for i := range truth {
		t, p := truth[i], pred[i]
		get(t).support++
		if t == p {
			get(t).tp++
			continue
		}
		get(t).fn++
		get(p).fp++
	}

	labels := make([]int, 0, len(perClass))
	for label := range perClass {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	var weighted float64
	total := 0
	for _, label := range labels {
		c := perClass[label]
		weighted += f1(c.tp, c.fp, c.fn) * float64(c.support)
		total += c.support
	}
	if total == 0 {
		return 0
	}
	return weighted / float64(total)
}

func f1(tp, fp, fn int) float64 {
	denom := 2*tp + fp + fn
	if denom == 0 {
		return 0
	}
	return 2 * float64(tp) / float64(denom)
}
