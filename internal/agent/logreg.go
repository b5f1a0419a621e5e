package agent

import (
	"encoding/json"
	"errors"
	"math"
)

const (
	logregEpochs       = 400
	logregLearningRate = 0.1
)

// WinModel is a logistic regression over standardized features predicting
// the probability that a trade taken in the given market context wins.
type WinModel struct {
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// TrainWinModel fits the model with batch gradient descent. Labels are 1 for
// a winning trade and 0 otherwise.
func TrainWinModel(samples [][]float64, labels []float64) (*WinModel, error) {
	if len(samples) == 0 {
		return nil, errors.New("empty training dataset")
	}
	if len(samples) != len(labels) {
		return nil, errors.New("sample/label length mismatch")
	}
	featureCount := len(samples[0])
	if featureCount == 0 {
		return nil, errors.New("empty feature vectors")
	}

	means, stds := fitNormalizer(samples)
	normalized := normalizeBatch(samples, means, stds)

	m := &WinModel{
		Means:   means,
		Stds:    stds,
		Weights: make([]float64, featureCount),
	}

	n := float64(len(normalized))
	for epoch := 0; epoch < logregEpochs; epoch++ {
		gradW := make([]float64, featureCount)
		var gradB float64
		for i, x := range normalized {
			err := sigmoid(dot(m.Weights, x)+m.Bias) - labels[i]
			for j := range gradW {
				gradW[j] += err * x[j]
			}
			gradB += err
		}
		for j := range m.Weights {
			m.Weights[j] -= logregLearningRate * gradW[j] / n
		}
		m.Bias -= logregLearningRate * gradB / n
	}

	return m, nil
}

// PredictWinProbability returns P(win) for one feature vector, 0.5 on any
// shape mismatch.
func (m *WinModel) PredictWinProbability(sample []float64) float64 {
	if m == nil || len(sample) != len(m.Weights) {
		return 0.5
	}
	x := normalize(sample, m.Means, m.Stds)
	p := sigmoid(dot(m.Weights, x) + m.Bias)
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return 0.5
	}
	return p
}

func (m *WinModel) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	return json.Marshal(m)
}

func UnmarshalWinModel(blob []byte) (*WinModel, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var m WinModel
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, err
	}
	if len(m.Weights) == 0 || len(m.Weights) != len(m.Means) || len(m.Means) != len(m.Stds) {
		return nil, errors.New("invalid artifact")
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func fitNormalizer(samples [][]float64) ([]float64, []float64) {
	featureCount := len(samples[0])
	means := make([]float64, featureCount)
	stds := make([]float64, featureCount)
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			means[j] += samples[i][j]
		}
		means[j] /= float64(len(samples))
		for i := range samples {
			d := samples[i][j] - means[j]
			stds[j] += d * d
		}
		stds[j] = math.Sqrt(stds[j] / float64(len(samples)))
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalizeBatch(samples [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i := range samples {
		out[i] = normalize(samples[i], means, stds)
	}
	return out
}

func normalize(in, means, stds []float64) []float64 {
	out := make([]float64, len(in))
	for i := range in {
		out[i] = (in[i] - means[i]) / stds[i]
	}
	return out
}
