// Frame quality metrics computed with OpenCV
package metrics

import (
	"fmt"
	"math"

	"gocv.io/x/gocv"
)

// Metric compares a source frame with its processed counterpart
type Metric interface {
	Calculate(original, processed gocv.Mat) (float64, error)
	GetName() string
}

// Evaluator holds the metrics sampled from the processing loop
type Evaluator struct {
	metrics map[string]Metric
}

func NewEvaluator() *Evaluator {
	e := &Evaluator{metrics: make(map[string]Metric)}
	e.Register("mse", MSE{})
	e.Register("psnr", PSNR{})
	return e
}

func (e *Evaluator) Register(name string, metric Metric) {
	e.metrics[name] = metric
}

// CalculateAll skips metrics that fail for the given pair
func (e *Evaluator) CalculateAll(original, processed gocv.Mat) map[string]float64 {
	results := make(map[string]float64, len(e.metrics))
	for name, metric := range e.metrics {
		if value, err := metric.Calculate(original, processed); err == nil {
			results[name] = value
		}
	}
	return results
}

// MSE is the mean squared per-channel difference
type MSE struct{}

func (MSE) GetName() string { return "Mean Squared Error" }

func (MSE) Calculate(original, processed gocv.Mat) (float64, error) {
	return meanSquaredError(original, processed)
}

// PSNR is the peak signal-to-noise ratio in dB; +Inf for identical frames
type PSNR struct{}

func (PSNR) GetName() string { return "Peak Signal-to-Noise Ratio" }

func (PSNR) Calculate(original, processed gocv.Mat) (float64, error) {
	mse, err := meanSquaredError(original, processed)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 20 * math.Log10(255.0/math.Sqrt(mse)), nil
}

func meanSquaredError(original, processed gocv.Mat) (float64, error) {
	if original.Empty() || processed.Empty() {
		return 0, fmt.Errorf("empty frames")
	}
	if original.Rows() != processed.Rows() || original.Cols() != processed.Cols() ||
		original.Channels() != processed.Channels() {
		return 0, fmt.Errorf("frame dimensions mismatch")
	}

	a := gocv.NewMat()
	defer a.Close()
	b := gocv.NewMat()
	defer b.Close()
	original.ConvertTo(&a, gocv.MatTypeCV32F)
	processed.ConvertTo(&b, gocv.MatTypeCV32F)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Subtract(a, b, &diff)

	sq := gocv.NewMat()
	defer sq.Close()
	gocv.Multiply(diff, diff, &sq)

	mean := sq.Mean()
	channels := original.Channels()
	sum := mean.Val1
	if channels > 1 {
		sum += mean.Val2
	}
	if channels > 2 {
		sum += mean.Val3
	}
	if channels > 3 {
		sum += mean.Val4
	}
	return sum / float64(channels), nil
}
