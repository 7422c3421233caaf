package delaymodel

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/quickcommerce/insights/internal/models"
)

// ErrSingleClass is returned when the training data has only on-time or only late orders.
var ErrSingleClass = errors.New("delay model: training data must contain both late and on-time orders")

// DefaultSeed seeds the train/test split when TrainOptions.Seed is nil.
const DefaultSeed uint64 = 42

// TrainOptions configures Train. Zero values select the defaults.
type TrainOptions struct {
	TestFraction float64 // default 0.2
	Seed         *uint64 // nil selects DefaultSeed; 0 is a valid seed
	MaxIter      int     // default 1000
	LearningRate float64 // default 0.5
	// C is the inverse L2 regularization strength on standardized features (default 1).
	C float64
}

func (o *TrainOptions) applyDefaults() {
	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		o.TestFraction = 0.2
	}

	if o.Seed == nil {
		seed := DefaultSeed
		o.Seed = &seed
	}

	if o.MaxIter <= 0 {
		o.MaxIter = 1000
	}

	if o.LearningRate <= 0 {
		o.LearningRate = 0.5
	}

	if o.C <= 0 {
		o.C = 1
	}
}

// TrainResult describes a training run.
type TrainResult struct {
	Model     *Model
	TrainSize int
	TestSize  int
	AUC       float64
}

// Train fits the model on a stratified split of samples and reports ROC AUC on the held-out part.
func Train(samples []models.DeliveryOutcome, opts TrainOptions) (TrainResult, error) {
	opts.applyDefaults()

	train, test, err := stratifiedSplit(samples, opts.TestFraction, *opts.Seed)
	if err != nil {
		return TrainResult{}, err
	}

	m := fit(train, opts)

	scores := make([]float64, len(test))
	labels := make([]bool, len(test))

	for i, s := range test {
		scores[i] = m.PredictProba(s.HourOfDay, s.DayOfWeek)
		labels[i] = s.Late
	}

	auc, err := ROCAUC(scores, labels)
	if err != nil {
		return TrainResult{}, fmt.Errorf("evaluate: %w", err)
	}

	m.AUC = auc
	m.TrainedAt = time.Now().UTC()

	return TrainResult{Model: m, TrainSize: len(train), TestSize: len(test), AUC: auc}, nil
}

func stratifiedSplit(samples []models.DeliveryOutcome, testFraction float64, seed uint64) (train, test []models.DeliveryOutcome, err error) {
	var late, onTime []models.DeliveryOutcome

	for _, s := range samples {
		if s.Late {
			late = append(late, s)
		} else {
			onTime = append(onTime, s)
		}
	}

	if len(late) < 2 || len(onTime) < 2 {
		return nil, nil, ErrSingleClass
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	for _, class := range [][]models.DeliveryOutcome{late, onTime} {
		class = slices.Clone(class)
		rng.Shuffle(len(class), func(i, j int) { class[i], class[j] = class[j], class[i] })

		n := max(1, int(math.Round(testFraction*float64(len(class)))))
		n = min(n, len(class)-1)

		test = append(test, class[:n]...)
		train = append(train, class[n:]...)
	}

	return train, test, nil
}

// fit runs batch gradient descent on standardized features, then folds the scaling back into
// raw-feature coefficients so PredictProba works on plain hour/day values.
func fit(samples []models.DeliveryOutcome, opts TrainOptions) *Model {
	n := float64(len(samples))

	var mean, sd [2]float64

	for _, s := range samples {
		mean[0] += float64(s.HourOfDay)
		mean[1] += float64(s.DayOfWeek)
	}

	mean[0] /= n
	mean[1] /= n

	for _, s := range samples {
		sd[0] += math.Pow(float64(s.HourOfDay)-mean[0], 2)
		sd[1] += math.Pow(float64(s.DayOfWeek)-mean[1], 2)
	}

	for j := range sd {
		sd[j] = math.Sqrt(sd[j] / n)
		if sd[j] == 0 {
			sd[j] = 1
		}
	}

	xs := make([][2]float64, len(samples))
	ys := make([]float64, len(samples))

	for i, s := range samples {
		xs[i] = [2]float64{
			(float64(s.HourOfDay) - mean[0]) / sd[0],
			(float64(s.DayOfWeek) - mean[1]) / sd[1],
		}

		if s.Late {
			ys[i] = 1
		}
	}

	var w [2]float64

	var b float64

	for range opts.MaxIter {
		var gw [2]float64

		var gb float64

		for i, x := range xs {
			diff := sigmoid(b+w[0]*x[0]+w[1]*x[1]) - ys[i]
			gw[0] += diff * x[0]
			gw[1] += diff * x[1]
			gb += diff
		}

		for j := range w {
			w[j] -= opts.LearningRate * (gw[j]/n + w[j]/(opts.C*n))
		}

		b -= opts.LearningRate * gb / n
	}

	coef := []float64{w[0] / sd[0], w[1] / sd[1]}
	intercept := b - w[0]*mean[0]/sd[0] - w[1]*mean[1]/sd[1]

	return &Model{
		Features:     slices.Clone(expectedFeatures),
		Coefficients: coef,
		Intercept:    intercept,
	}
}

// ROCAUC returns the area under the ROC curve via the rank-sum formulation; tied scores share their average rank.
func ROCAUC(scores []float64, labels []bool) (float64, error) {
	if len(scores) != len(labels) {
		return 0, errors.New("scores and labels length mismatch")
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}

	slices.SortFunc(order, func(a, b int) int {
		switch {
		case scores[a] < scores[b]:
			return -1
		case scores[a] > scores[b]:
			return 1
		default:
			return 0
		}
	})

	ranks := make([]float64, len(scores))

	for i := 0; i < len(order); {
		j := i
		for j+1 < len(order) && scores[order[j+1]] == scores[order[i]] {
			j++
		}

		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}

		i = j + 1
	}

	var pos, neg, rankSum float64

	for i, l := range labels {
		if l {
			pos++
			rankSum += ranks[i]
		} else {
			neg++
		}
	}

	if pos == 0 || neg == 0 {
		return 0, ErrSingleClass
	}

	return (rankSum - pos*(pos+1)/2) / (pos * neg), nil
}
