package models

// RetrievedFeedback is one feedback item returned by retrieval, ranked by Score (cosine similarity).
type RetrievedFeedback struct {
	Position int     `json:"position"`
	Text     string  `json:"text"`
	Score    float64 `json:"score"`
}

// Answer is the assistant's response to a question together with the feedback it was grounded on.
type Answer struct {
	Question string              `json:"question"`
	Text     string              `json:"answer"`
	Feedback []RetrievedFeedback `json:"feedback"`
}

// Texts returns the feedback texts in rank order.
func Texts(results []RetrievedFeedback) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].Text
	}

	return out
}
