package models

// Inference labels
const (
	LabelPositive = "POSITIVE"
	LabelNegative = "NEGATIVE"
	LabelNeutral  = "NEUTRAL"
	LabelUnknown  = "UNKNOWN"
)

// AnalysisRequest is the body of POST /analyze.
// Text is a pointer so a missing field can be told apart from "".
type AnalysisRequest struct {
	Text *string `json:"text"`
}

// Prediction is the classifier output for one text
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// IsKnown reports whether the label is one of the three sentiment classes
func (p Prediction) IsKnown() bool {
	switch p.Label {
	case LabelPositive, LabelNegative, LabelNeutral:
		return true
	}
	return false
}
