package sentiment

import (
	"math/rand"
	"strings"
)

var headlineTemplates = []string{
	"{entity} announces new {product} for {target}.",
	"{entity} reports {sentiment} Q3 results amid {condition}.",
	"Government introduces {policy} to boost {target} sector.",
	"{target} owners face {challenge} due to rising {factor}.",
	"RBI {action} interest rates, impacting {target} loans.",
	"Exports from {target} sector {verb} by {percentage} this month.",
	"{entity} partners with {partner} to empower {target}.",
	"Budget 2024: New schemes for {target} expected to {impact} growth.",
}

type slot struct {
	name   string
	values []string
}

// filled in this order
var headlineSlots = []slot{
	{"entity", []string{"SBI", "HDFC Bank", "Lendingkart", "SIDBI", "Reliance", "Tata Motors"}},
	{"product", []string{"loan scheme", "credit line", "digital platform", "insurance cover"}},
	{"target", []string{"MSME", "SME", "small business", "textile units", "startups"}},
	{"sentiment", []string{"strong", "weak", "record", "disappointing"}},
	{"condition", []string{"global slowdown", "festive demand", "inflation", "supply chain issues"}},
	{"policy", []string{"PLI scheme", "tax relief", "subsidy", "credit guarantee"}},
	{"challenge", []string{"cash crunch", "labor shortage", "high input costs", "regulatory hurdles"}},
	{"factor", []string{"fuel prices", "raw material costs", "GST rates", "compliance burden"}},
	{"action", []string{"hikes", "cuts", "maintains"}},
	{"verb", []string{"surge", "decline", "fall", "jump"}},
	{"percentage", []string{"10%", "5%", "20%", "15%"}},
	{"partner", []string{"Flipkart", "Amazon", "fintechs", "local trade bodies"}},
	{"impact", []string{"accelerate", "hinder", "stall", "revive"}},
}

// SyntheticGenerator fills headline templates with random slot values
type SyntheticGenerator struct {
	rng *rand.Rand
}

// NewSyntheticGenerator creates a generator; equal seeds give equal output
func NewSyntheticGenerator(seed int64) *SyntheticGenerator {
	return &SyntheticGenerator{rng: rand.New(rand.NewSource(seed))}
}

// Generate returns n headlines. Every occurrence of a placeholder in a
// template gets the same value.
func (g *SyntheticGenerator) Generate(n int) []string {
	headlines := make([]string, 0, n)
	for i := 0; i < n; i++ {
		headline := headlineTemplates[g.rng.Intn(len(headlineTemplates))]
		for _, s := range headlineSlots {
			placeholder := "{" + s.name + "}"
			if strings.Contains(headline, placeholder) {
				headline = strings.ReplaceAll(headline, placeholder, s.values[g.rng.Intn(len(s.values))])
			}
		}
		headlines = append(headlines, headline)
	}
	return headlines
}
