package model

// RiskLevel is the maternal health risk classification.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low risk"
	RiskMid  RiskLevel = "mid risk"
	RiskHigh RiskLevel = "high risk"
)

type RiskAssessmentRequest struct {
	Age         int     `json:"age" binding:"required,gt=0"`
	SystolicBP  int     `json:"systolicBP" binding:"required,gte=40,lte=250"`
	DiastolicBP int     `json:"diastolicBP" binding:"required,gte=30,lte=150"`
	BloodSugar  float64 `json:"bs" binding:"required,gte=1,lte=30"`
	BodyTemp    float64 `json:"bodyTemp" binding:"required"`
	HeartRate   int     `json:"heartRate" binding:"required,gte=30,lte=200"`
}

type RiskAssessmentResponse struct {
	PredictedRiskLevel RiskLevel             `json:"predicted_risk_level"`
	AdviceMessage      string                `json:"advice_message"`
	Probabilities      map[RiskLevel]float64 `json:"probabilities"`
}
