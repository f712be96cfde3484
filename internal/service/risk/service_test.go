package risk

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamacare/appointment-api/internal/model"
	apperrors "github.com/mamacare/appointment-api/pkg/errors"
	"github.com/mamacare/appointment-api/pkg/logger"
)

func newTestService() *Service {
	return NewService(logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard}))
}

func healthyVitals() *model.RiskAssessmentRequest {
	return &model.RiskAssessmentRequest{
		Age:         28,
		SystolicBP:  115,
		DiastolicBP: 75,
		BloodSugar:  5.5,
		BodyTemp:    98.2,
		HeartRate:   72,
	}
}

func TestAssessHealthyIsLowRisk(t *testing.T) {
	svc := newTestService()

	resp, err := svc.Assess(healthyVitals())
	require.NoError(t, err)
	assert.Equal(t, model.RiskLow, resp.PredictedRiskLevel)
	assert.Contains(t, resp.AdviceMessage, "Low Risk")
	assert.InDelta(t, 1.0, sum(resp.Probabilities), 0.001)
}

func TestAssessSevereVitalsAreHighRisk(t *testing.T) {
	svc := newTestService()

	req := healthyVitals()
	req.SystolicBP = 165
	req.DiastolicBP = 112
	req.BloodSugar = 12.5
	req.BodyTemp = 101.5

	resp, err := svc.Assess(req)
	require.NoError(t, err)
	assert.Equal(t, model.RiskHigh, resp.PredictedRiskLevel)
	assert.Contains(t, resp.AdviceMessage, "High Risk")
}

func TestAssessModerateVitalsAreMidRisk(t *testing.T) {
	svc := newTestService()

	req := healthyVitals()
	req.SystolicBP = 145
	req.DiastolicBP = 92

	resp, err := svc.Assess(req)
	require.NoError(t, err)
	assert.Equal(t, model.RiskMid, resp.PredictedRiskLevel)
}

func TestAssessConvertsCelsius(t *testing.T) {
	svc := newTestService()

	// 36.8C converts to roughly 98.2F and scores as normal.
	req := healthyVitals()
	req.BodyTemp = 36.8

	resp, err := svc.Assess(req)
	require.NoError(t, err)
	assert.Equal(t, model.RiskLow, resp.PredictedRiskLevel)

	// 39C is a fever after conversion.
	feverish := healthyVitals()
	feverish.BodyTemp = 39
	feverish.SystolicBP = 145
	feverish.DiastolicBP = 92

	resp, err = svc.Assess(feverish)
	require.NoError(t, err)
	assert.NotEqual(t, model.RiskLow, resp.PredictedRiskLevel)
}

func TestAssessRangeValidation(t *testing.T) {
	svc := newTestService()

	young := healthyVitals()
	young.Age = 5
	_, err := svc.Assess(young)
	assert.True(t, apperrors.IsValidation(err))

	old := healthyVitals()
	old.Age = 95
	_, err = svc.Assess(old)
	assert.True(t, apperrors.IsValidation(err))

	impossible := healthyVitals()
	impossible.BodyTemp = 120
	_, err = svc.Assess(impossible)
	assert.True(t, apperrors.IsValidation(err))
}

func sum(m map[model.RiskLevel]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}
