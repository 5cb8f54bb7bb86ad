package anomaly

import "gonum.org/v1/gonum/stat"

// stdEpsilon guards constant feature columns: small or degenerate batches
// routinely produce zero-variance columns, and dividing by a near-zero
// deviation would propagate NaN/Inf into the model.
const stdEpsilon = 1e-12

// standardize returns a copy of the feature matrix with each column shifted
// to zero mean and scaled to unit variance, fit on this batch only. Columns
// with (near-)zero variance are centered but left unscaled.
func standardize(matrix [][]float64) [][]float64 {
	if len(matrix) == 0 {
		return nil
	}

	cols := len(matrix[0])
	column := make([]float64, len(matrix))
	means := make([]float64, cols)
	scales := make([]float64, cols)
	for c := 0; c < cols; c++ {
		for r := range matrix {
			column[r] = matrix[r][c]
		}
		means[c] = stat.Mean(column, nil)
		scales[c] = stat.PopStdDev(column, nil)
		if scales[c] < stdEpsilon {
			scales[c] = 1
		}
	}

	scaled := make([][]float64, len(matrix))
	for r := range matrix {
		scaled[r] = make([]float64, cols)
		for c := 0; c < cols; c++ {
			scaled[r][c] = (matrix[r][c] - means[c]) / scales[c]
		}
	}
	return scaled
}
