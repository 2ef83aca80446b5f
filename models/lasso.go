package models

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultLambda     = 1.0
	DefaultIterations = 1000
	DefaultTolerance  = 1e-4
)

var (
	ErrNegativeLambda        = errors.New("negative lambda")
	ErrNegativeIterations    = errors.New("negative iterations")
	ErrNegativeTolerance     = errors.New("negative tolerance")
	ErrNegativePenaltyFactor = errors.New("negative penalty factor")
	ErrWarmStartBetaSize     = errors.New("warm start beta does not have the same number of coefficients as training features")
	ErrPenaltyFactorSize     = errors.New("penalty factors do not have the same number of values as training features")
)

// LassoOptions represents input options to run the Lasso Regression
type LassoOptions struct {
	// WarmStartBeta is used to prime the coordinate descent to reduce the training time if a previous
	// fit has been performed.
	WarmStartBeta []float64

	// Lambda represents the L1 multiplier, controlling the regularization. Must be a non-negative. 0.0 results in converging
	// to Ordinary Least Squares (OLS).
	Lambda float64

	// PenaltyFactors scales lambda per feature. A factor of 0 leaves the feature unpenalized. Nil
	// penalizes every feature equally. The intercept is never penalized.
	PenaltyFactors []float64

	// Iterations is the maximum number of times the fit loops through training all coefficients.
	Iterations int

	// Tolerance is the smallest coefficient change on each iteration to determine when to stop iterating.
	Tolerance float64

	// FitIntercept adds a constant 1.0 feature as the first column if set to true
	FitIntercept bool
}

// Validate runs basic validation on Lasso options
func (l *LassoOptions) Validate() (*LassoOptions, error) {
	if l == nil {
		l = NewDefaultLassoOptions()
	}

	if l.Lambda < 0 {
		return nil, ErrNegativeLambda
	}
	if l.Iterations < 0 {
		return nil, ErrNegativeIterations
	}
	if l.Tolerance < 0 {
		return nil, ErrNegativeTolerance
	}
	for _, pf := range l.PenaltyFactors {
		if pf < 0 {
			return nil, ErrNegativePenaltyFactor
		}
	}
	return l, nil
}

// NewDefaultLassoOptions returns a default set of Lasso Regression options
func NewDefaultLassoOptions() *LassoOptions {
	return &LassoOptions{
		Lambda:        DefaultLambda,
		Iterations:    DefaultIterations,
		Tolerance:     DefaultTolerance,
		WarmStartBeta: nil,
		FitIntercept:  true,
	}
}

// LassoRegression computes the lasso regression using coordinate descent. lambda = 0 converges to OLS
type LassoRegression struct {
	opt *LassoOptions

	coef      []float64
	intercept float64
}

// NewLassoRegression initializes a Lasso model ready for fitting
func NewLassoRegression(opt *LassoOptions) (*LassoRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &LassoRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data minimizing
// 1/2 * ||y - Xb||^2 + lambda * sum(pf_j * |b_j|)
func (l *LassoRegression) Fit(x, y mat.Matrix) error {
	x, err := l.fitValidate(x, y)
	if err != nil {
		return err
	}
	_, n := x.Dims()

	beta := make([]float64, n)
	if l.opt.WarmStartBeta != nil {
		copy(beta, l.opt.WarmStartBeta)
	}

	xcols := make([][]float64, n)
	xdot := make([]float64, n)
	gamma := make([]float64, n)
	for j := 0; j < n; j++ {
		xcols[j] = mat.Col(nil, j, x)
		xdot[j] = floats.Dot(xcols[j], xcols[j])
		gamma[j] = l.penalty(j) / xdot[j]
	}

	// residual tracks y - Xb and is updated in place on every coefficient change
	residual := mat.Col(nil, 0, y)
	for j := 0; j < n; j++ {
		if beta[j] != 0 {
			floats.AddScaled(residual, -beta[j], xcols[j])
		}
	}

	for i := 0; i < l.opt.Iterations; i++ {
		maxCoef := 0.0
		maxUpdate := 0.0

		for j := 0; j < n; j++ {
			// all zero feature carries no information
			if xdot[j] == 0 {
				continue
			}
			betaCurr := beta[j]
			betaNext := SoftThreshold(floats.Dot(xcols[j], residual)/xdot[j]+betaCurr, gamma[j])
			if delta := betaNext - betaCurr; delta != 0 {
				floats.AddScaled(residual, -delta, xcols[j])
				beta[j] = betaNext
			}

			maxCoef = math.Max(maxCoef, math.Abs(betaNext))
			maxUpdate = math.Max(maxUpdate, math.Abs(betaNext-betaCurr))
		}

		// break early if we've achieved the desired tolerance
		if maxUpdate <= l.opt.Tolerance*maxCoef {
			break
		}
	}

	if l.opt.FitIntercept {
		l.intercept = beta[0]
		l.coef = beta[1:]
		return nil
	}
	l.coef = beta
	return nil
}

// penalty returns the lambda of the j-th column of the design matrix including the intercept
// column if fit
func (l *LassoRegression) penalty(j int) float64 {
	if l.opt.FitIntercept {
		if j == 0 {
			return 0
		}
		j--
	}
	if l.opt.PenaltyFactors == nil {
		return l.opt.Lambda
	}
	return l.opt.Lambda * l.opt.PenaltyFactors[j]
}

func (l *LassoRegression) fitValidate(x, y mat.Matrix) (mat.Matrix, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	if x == nil {
		return nil, ErrNoTrainingMatrix
	}
	if y == nil {
		return nil, ErrNoTargetMatrix
	}

	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return nil, fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	if l.opt.PenaltyFactors != nil && len(l.opt.PenaltyFactors) != n {
		return nil, fmt.Errorf("penalty factors has %d values instead of %d, %w", len(l.opt.PenaltyFactors), n, ErrPenaltyFactorSize)
	}

	if l.opt.FitIntercept {
		x = withIntercept(x)
		_, n = x.Dims()
	}

	if l.opt.WarmStartBeta != nil && len(l.opt.WarmStartBeta) != n {
		return nil, fmt.Errorf("warm start beta has %d features instead of %d, %w", len(l.opt.WarmStartBeta), n, ErrWarmStartBetaSize)
	}
	return x, nil
}

// Predict using the Lasso model
func (l *LassoRegression) Predict(x mat.Matrix) ([]float64, error) {
	if l.opt == nil {
		return nil, ErrNoOptions
	}
	return predict(x, l.intercept, l.coef, l.opt.FitIntercept)
}

// Score computes the coefficient of determination of the prediction
func (l *LassoRegression) Score(x, y mat.Matrix) (float64, error) {
	return score(l, x, y)
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (l *LassoRegression) Intercept() float64 {
	return l.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (l *LassoRegression) Coef() []float64 {
	coef := make([]float64, len(l.coef))
	copy(coef, l.coef)
	return coef
}

// SoftThreshold returns 0.0 if the value is less than or equal to the gamma input
func SoftThreshold(x, gamma float64) float64 {
	res := math.Max(0, math.Abs(x)-gamma)
	if math.Signbit(x) {
		return -res
	}
	return res
}

func score(model Model, x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := model.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)
	r2 := stat.RSquaredFrom(res, ySlice, nil)
	if math.IsNaN(r2) {
		r2 = 1.0
	}
	return r2, nil
}
