package models

// RiskLevel buckets a delay probability.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// DelayRiskRequest is the input for a delay risk prediction. DayOfWeek is 0 for Monday through 6 for Sunday.
type DelayRiskRequest struct {
	HourOfDay int `json:"hourOfDay"`
	DayOfWeek int `json:"dayOfWeek"`
}

// DelayRiskPrediction is the estimated probability that an order placed at the given time is delivered late.
type DelayRiskPrediction struct {
	HourOfDay   int       `json:"hourOfDay"`
	DayOfWeek   int       `json:"dayOfWeek"`
	Probability float64   `json:"probability"`
	Level       RiskLevel `json:"level"`
}

// DeliveryOutcome is one historical order used to train the delay model.
type DeliveryOutcome struct {
	HourOfDay int
	DayOfWeek int
	Late      bool
}
