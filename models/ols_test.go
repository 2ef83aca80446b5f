package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOLSRegression(t *testing.T) {
	x, y := generateLinearData(40)

	testData := map[string]struct {
		opt       *OLSOptions
		intercept float64
		coef      []float64
	}{
		"with intercept": {
			opt:       &OLSOptions{FitIntercept: true},
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
		"default options": {
			opt:       nil,
			intercept: 2.0,
			coef:      []float64{3.0, 4.0},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model, err := NewOLSRegression(td.opt)
			require.Nil(t, err)
			require.Nil(t, model.Fit(x, y))

			assert.InDelta(t, td.intercept, model.Intercept(), 1e-9)
			assert.InDeltaSlice(t, td.coef, model.Coef(), 1e-9)

			pred, err := model.Predict(x)
			require.Nil(t, err)
			for i, p := range pred {
				assert.InDelta(t, y.At(i, 0), p, 1e-9)
			}
		})
	}
}
