// Package risk classifies maternal health indicators into a risk level
// with matching advice. The scoring is a deterministic rule set over the
// same six vitals the booking app collects.
package risk

import (
	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
)

var adviceMessages = map[model.RiskLevel]string{
	model.RiskLow: "Prediction: Low Risk.\n\n" +
		"This is positive news! Continue with regular prenatal check-ups, " +
		"a balanced diet, plenty of water, moderate doctor-approved exercise, " +
		"adequate rest, and report any new symptoms to your provider.",
	model.RiskMid: "Prediction: Moderate Risk.\n\n" +
		"Pay closer attention to your health: follow your provider's advice " +
		"on diet, activity and medication, attend all scheduled prenatal " +
		"appointments, monitor blood pressure and blood sugar at home if " +
		"recommended, and report warning signs (severe headaches, vision " +
		"changes, significant swelling, abdominal pain, reduced fetal " +
		"movement) immediately.",
	model.RiskHigh: "Prediction: High Risk.\n\n" +
		"This requires careful management and close monitoring. Adhere " +
		"strictly to your healthcare team's plan, attend all appointments " +
		"including specialist consultations, take prescribed medication " +
		"exactly as directed, and seek emergency care for severe headaches, " +
		"vision problems, shortness of breath, chest pain, severe abdominal " +
		"pain, sudden swelling, or changes in fetal movement.",
}

type Service struct {
	logger *logger.Logger
}

func NewService(logger *logger.Logger) *Service {
	return &Service{logger: logger}
}

// Assess normalizes the vitals and scores them. Body temperature below
// 50 is assumed to be Celsius and converted to Fahrenheit, matching the
// intake behavior of the mobile client.
func (s *Service) Assess(req *model.RiskAssessmentRequest) (*model.RiskAssessmentResponse, error) {
	if req.Age < 10 || req.Age > 90 {
		return nil, apperrors.NewValidation("age out of supported range")
	}

	temp := req.BodyTemp
	if temp < 50 {
		temp = temp*9/5 + 32
		s.logger.Debug("converted body temperature from celsius", "fahrenheit", temp)
	}
	if temp < 90 || temp > 110 {
		return nil, apperrors.NewValidation("body temperature out of supported range")
	}

	score := s.score(req, temp)
	level := model.RiskLow
	switch {
	case score >= 5:
		level = model.RiskHigh
	case score >= 2:
		level = model.RiskMid
	}

	return &model.RiskAssessmentResponse{
		PredictedRiskLevel: level,
		AdviceMessage:      adviceMessages[level],
		Probabilities:      probabilities(level),
	}, nil
}

// score accumulates weighted points per abnormal vital. Thresholds follow
// common obstetric reference ranges.
func (s *Service) score(req *model.RiskAssessmentRequest, tempF float64) int {
	var score int

	switch {
	case req.SystolicBP >= 160 || req.DiastolicBP >= 110:
		score += 3
	case req.SystolicBP >= 140 || req.DiastolicBP >= 90:
		score += 2
	case req.SystolicBP < 90 || req.DiastolicBP < 60:
		score++
	}

	switch {
	case req.BloodSugar >= 11:
		score += 3
	case req.BloodSugar >= 8:
		score += 2
	case req.BloodSugar >= 7:
		score++
	}

	if tempF >= 101 {
		score += 2
	} else if tempF >= 99.5 {
		score++
	}

	switch {
	case req.HeartRate >= 120 || req.HeartRate < 50:
		score += 2
	case req.HeartRate >= 100 || req.HeartRate < 60:
		score++
	}

	if req.Age >= 40 || req.Age < 18 {
		score++
	}

	return score
}

// probabilities expresses the rule outcome as a pseudo-probability map to
// keep the response shape of the original model-backed predictor.
func probabilities(level model.RiskLevel) map[model.RiskLevel]float64 {
	switch level {
	case model.RiskHigh:
		return map[model.RiskLevel]float64{model.RiskLow: 0.05, model.RiskMid: 0.25, model.RiskHigh: 0.70}
	case model.RiskMid:
		return map[model.RiskLevel]float64{model.RiskLow: 0.20, model.RiskMid: 0.60, model.RiskHigh: 0.20}
	default:
		return map[model.RiskLevel]float64{model.RiskLow: 0.70, model.RiskMid: 0.25, model.RiskHigh: 0.05}
	}
}
