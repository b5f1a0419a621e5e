package agent

import (
	"encoding/json"
	"errors"
	"math"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
)

const (
	anomalyNumTrees   = 100
	anomalySampleSize = 64
	anomalyThreshold  = 0.6
)

// AnomalyModel flags market contexts that look unlike anything in the
// training window. Anomalous contexts get their trade confidence damped
// rather than being traded at full size.
type AnomalyModel struct {
	artifact anomalyArtifact
	forest   *goiforest.IsolationForest
}

type anomalyArtifact struct {
	Means   []float64             `json:"means"`
	Stds    []float64             `json:"stds"`
	Options goiforest.Options     `json:"options"`
	Trees   []*goiforest.TreeNode `json:"trees"`
}

func TrainAnomalyModel(samples [][]float64) (*AnomalyModel, error) {
	if len(samples) == 0 {
		return nil, errors.New("empty training dataset")
	}
	if len(samples[0]) == 0 {
		return nil, errors.New("empty feature vectors")
	}

	means, stds := fitNormalizer(samples)
	normalized := normalizeBatch(samples, means, stds)

	options := goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     anomalyThreshold,
		NumTrees:      anomalyNumTrees,
		SampleSize:    anomalySampleSize,
	}
	forest := goiforest.NewWithOptions(options)
	forest.Fit(normalized)

	return &AnomalyModel{
		artifact: anomalyArtifact{
			Means:   means,
			Stds:    stds,
			Options: *forest.Options,
			Trees:   forest.Trees,
		},
		forest: forest,
	}, nil
}

// Score returns the anomaly score in [0,1], 0 on any shape mismatch.
func (m *AnomalyModel) Score(sample []float64) float64 {
	if m == nil || m.forest == nil || len(sample) != len(m.artifact.Means) {
		return 0
	}
	normalized := normalize(sample, m.artifact.Means, m.artifact.Stds)
	scores := m.forest.Score([][]float64{normalized})
	if len(scores) == 0 {
		return 0
	}
	score := scores[0]
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Anomalous reports whether the sample clears the detection threshold.
func (m *AnomalyModel) Anomalous(sample []float64) bool {
	return m.Score(sample) >= anomalyThreshold
}

func (m *AnomalyModel) MarshalBinary() ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil model")
	}
	return json.Marshal(m.artifact)
}

func UnmarshalAnomalyModel(blob []byte) (*AnomalyModel, error) {
	if len(blob) == 0 {
		return nil, errors.New("empty artifact")
	}
	var a anomalyArtifact
	if err := json.Unmarshal(blob, &a); err != nil {
		return nil, err
	}
	if len(a.Means) == 0 || len(a.Means) != len(a.Stds) || len(a.Trees) == 0 {
		return nil, errors.New("invalid artifact")
	}
	forest := goiforest.NewWithOptions(a.Options)
	forest.Trees = a.Trees
	return &AnomalyModel{artifact: a, forest: forest}, nil
}
