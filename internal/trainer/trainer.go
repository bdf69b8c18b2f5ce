package trainer

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"RateCast/internal/features"
	"RateCast/internal/model"
)

// Trainer fits one currency's lag regression per run. The series is split
// chronologically: coefficients are estimated on the earlier segment,
// validation residuals come from a one-step-ahead walk over the held-out
// tail, and the published model is refit on the full series.
type Trainer struct {
	Spec       model.FeatureSpec
	SplitRatio float64
}

// New creates a trainer.
func New(spec model.FeatureSpec, splitRatio float64) *Trainer {
	return &Trainer{Spec: spec, SplitRatio: splitRatio}
}

// Train fits a model on the series and returns it with both residual sets.
// It fails with model.ErrTrainingDivergence when the least-squares solve
// cannot produce finite coefficients.
func (t *Trainer) Train(s *model.RateSeries) (*model.TrainedModel, error) {
	values := s.Rates()
	n := len(values)
	minIdx := features.MinIndex(t.Spec)

	split := int(float64(n) * t.SplitRatio)
	if split >= n {
		split = n - 1
	}
	// The fit is under-determined with fewer training rows than unknowns.
	if split-minIdx < features.Count(t.Spec)+1 {
		return nil, fmt.Errorf("%s: %d training rows for %d coefficients: %w",
			s.Code, split-minIdx, features.Count(t.Spec)+1, model.ErrTrainingDivergence)
	}

	trainRows, trainTargets, err := features.Matrix(values, minIdx, split, t.Spec)
	if err != nil {
		return nil, fmt.Errorf("%s: build training matrix: %w", s.Code, err)
	}
	fitCoeffs, err := solve(trainRows, trainTargets)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", s.Code, err, model.ErrTrainingDivergence)
	}

	inSample := make([]model.Residual, 0, split-minIdx)
	for i := minIdx; i < split; i++ {
		row, err := features.Row(values, i, t.Spec)
		if err != nil {
			return nil, fmt.Errorf("%s: in-sample row %d: %w", s.Code, i, err)
		}
		inSample = append(inSample, model.Residual{
			Date:      s.Points[i].Date,
			Actual:    values[i],
			Predicted: predict(fitCoeffs, row),
			Filled:    s.Points[i].Filled,
		})
	}

	// Walk-forward over the held-out tail: every prediction uses only the
	// actual history before its own index.
	outOfSample := make([]model.Residual, 0, n-split)
	for i := split; i < n; i++ {
		row, err := features.Row(values, i, t.Spec)
		if err != nil {
			return nil, fmt.Errorf("%s: validation row %d: %w", s.Code, i, err)
		}
		pred := predict(fitCoeffs, row)
		if math.IsNaN(pred) || math.IsInf(pred, 0) {
			return nil, fmt.Errorf("%s: non-finite validation prediction at %s: %w",
				s.Code, s.Points[i].Date.Format("2006-01-02"), model.ErrTrainingDivergence)
		}
		outOfSample = append(outOfSample, model.Residual{
			Date:      s.Points[i].Date,
			Actual:    values[i],
			Predicted: pred,
			Filled:    s.Points[i].Filled,
		})
	}

	// The model that forecasts tomorrow should know about today: refit on
	// the full series once validation errors are banked.
	fullRows, fullTargets, err := features.Matrix(values, minIdx, n, t.Spec)
	if err != nil {
		return nil, fmt.Errorf("%s: build full matrix: %w", s.Code, err)
	}
	coeffs, err := solve(fullRows, fullTargets)
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", s.Code, err, model.ErrTrainingDivergence)
	}

	history := make([]float64, n)
	copy(history, values)

	return &model.TrainedModel{
		Code:        s.Code,
		Spec:        t.Spec,
		Coeffs:      coeffs,
		TrainStart:  s.Points[0].Date,
		TrainEnd:    s.Last().Date,
		FittedAt:    time.Now(),
		History:     history,
		InSample:    inSample,
		OutOfSample: outOfSample,
	}, nil
}

// ridgeLambda is the regularization weight of the least-squares solve.
// Rolling-mean features are linear combinations of the lag features, so the
// plain normal equations are rank-deficient; the ridge term keeps the
// augmented system full rank without noticeably biasing the fit.
const ridgeLambda = 1e-8

// solve computes regularized least-squares coefficients (intercept last)
// for rows against targets via QR factorization of the augmented system.
func solve(rows [][]float64, targets []float64) ([]float64, error) {
	n := len(rows)
	k := len(rows[0])

	X := mat.NewDense(n+k+1, k+1, nil)
	for i, row := range rows {
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("non-finite feature at row %d", i)
			}
			X.Set(i, j, v)
		}
		X.Set(i, k, 1) // intercept column
	}
	for j := 0; j <= k; j++ {
		X.Set(n+j, j, math.Sqrt(ridgeLambda))
	}
	y := mat.NewVecDense(n+k+1, nil)
	for i, t := range targets {
		y.SetVec(i, t)
	}

	var qr mat.QR
	qr.Factorize(X)

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, y); err != nil {
		return nil, fmt.Errorf("least squares solve: %v", err)
	}

	coeffs := make([]float64, k+1)
	for i := range coeffs {
		c := sol.AtVec(i)
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, fmt.Errorf("non-finite coefficient %d", i)
		}
		coeffs[i] = c
	}
	return coeffs, nil
}

func predict(coeffs, row []float64) float64 {
	pred := coeffs[len(coeffs)-1]
	for i, v := range row {
		pred += coeffs[i] * v
	}
	return pred
}
