package sentiment

// positiveWords returns positive finance keywords and their strength
func positiveWords() map[string]float64 {
	return map[string]float64{
		// General positive
		"bullish":      1.0,
		"rally":        0.9,
		"rallies":      0.9,
		"surge":        0.8,
		"surges":       0.8,
		"soar":         0.8,
		"soars":        0.8,
		"jump":         0.7,
		"jumps":        0.7,
		"gain":         0.6,
		"gains":        0.6,
		"profit":       0.6,
		"profits":      0.6,
		"profitable":   0.6,
		"win":          0.6,
		"record":       0.5,
		"strong":       0.6,
		"rise":         0.5,
		"rises":        0.5,
		"grow":         0.5,
		"grows":        0.5,
		"growth":       0.5,
		"increase":     0.5,
		"boost":        0.7,
		"boosts":       0.7,
		"positive":     0.5,
		"optimistic":   0.5,
		"breakthrough": 0.6,
		"partnership":  0.5,
		"partners":     0.4,
		"upgrade":      0.5,
		"innovation":   0.5,
		"revive":       0.6,
		"accelerate":   0.6,
		"empower":      0.6,

		// MSME finance
		"subsidy":    0.6,
		"subsidies":  0.6,
		"relief":     0.6,
		"incentive":  0.5,
		"incentives": 0.5,
		"scheme":     0.4,
		"schemes":    0.4,
		"announces":  0.3,
		"approved":   0.6,
		"guarantee":  0.4,
		"cuts":       0.3,
		"recovery":   0.6,
		"expansion":  0.5,
		"investment": 0.4,
		"exports":    0.1,
		"beats":      0.6,
		"upbeat":     0.7,
		"लाभ":        0.7,
		"मुनाफा":     0.7,
		"वृद्धि":     0.6,
		"तेजी":       0.7,
		"राहत":       0.6,
		"सब्सिडी":    0.6,
		"বৃদ্ধি":     0.6,
		"லாபம்":      0.7,
		"వృద్ధి":     0.6,
	}
}

// negativeWords returns negative finance keywords and their strength
func negativeWords() map[string]float64 {
	return map[string]float64{
		// General negative
		"bearish":       1.0,
		"crash":         1.0,
		"crashes":       1.0,
		"plunge":        0.8,
		"plunges":       0.8,
		"fall":          0.6,
		"falls":         0.6,
		"drop":          0.6,
		"drops":         0.6,
		"decline":       0.6,
		"declines":      0.6,
		"loss":          0.7,
		"losses":        0.7,
		"weak":          0.6,
		"disappointing": 0.7,
		"negative":      0.5,
		"pessimistic":   0.5,
		"fear":          0.6,
		"panic":         0.8,
		"selloff":       0.7,
		"slowdown":      0.7,
		"hinder":        0.6,
		"stall":         0.6,
		"severe":        0.6,

		// MSME finance
		"fraud":        1.0,
		"default":      0.8,
		"defaults":     0.8,
		"lawsuit":      0.7,
		"ban":          0.8,
		"crackdown":    0.7,
		"restrictions": 0.7,
		"imposed":      0.4,
		"hikes":        0.5,
		"inflation":    0.5,
		"crunch":       0.7,
		"shortage":     0.6,
		"hurdles":      0.6,
		"burden":       0.6,
		"struggle":     0.7,
		"struggling":   0.7,
		"layoffs":      0.8,
		"closure":      0.7,
		"bankruptcy":   1.0,
		"insolvency":   0.9,
		"घाटा":         0.7,
		"नुकसान":       0.7,
		"गिरावट":       0.6,
		"मंदी":         0.8,
		"संकट":         0.7,
		"ক্ষতি":        0.7,
		"நஷ்டம்":       0.7,
		"నష్టం":        0.7,
	}
}

// lexiconVocabulary returns every lexicon word, sorted, for the tokenizer's
// reserved vocabulary
func lexiconVocabulary() []string {
	pos, neg := positiveWords(), negativeWords()
	words := sortedKeys(pos)
	for _, w := range sortedKeys(neg) {
		if _, dup := pos[w]; !dup {
			words = append(words, w)
		}
	}
	return words
}
