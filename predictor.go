package main

import (
	"log"
	"math"
	"math/rand"
	"sort"
	"sync/atomic"
)

// DropPredictor scores the likelihood of a near-term price drop from a
// product's feature vector. It wraps an ensemble of bagged regression
// trees trained on the full historical corpus, the trained model lives
// behind an atomically swappable pointer so retraining is never visible
// half-done to concurrent readers.
type DropPredictor struct {
	model atomic.Pointer[forestModel]
}

// TrainingSample pairs a product's features with its drop label.
type TrainingSample struct {
	Features PriceFeatures
	Label    float64
}

const (
	forestSize     = 50
	forestMaxDepth = 6
	forestMinLeaf  = 2
	forestSeed     = 42
)

func NewDropPredictor() *DropPredictor {
	return &DropPredictor{}
}

// Trained reports whether a model is available for predictions.
func (p *DropPredictor) Trained() bool {
	return p.model.Load() != nil
}

// Train fits a fresh forest from the corpus and swaps it in. The old
// model keeps serving concurrent Predict calls until the swap. Training
// with an empty corpus returns ErrInsufficientData and leaves any
// previous model in place.
func (p *DropPredictor) Train(samples []TrainingSample) error {
	if len(samples) == 0 {
		return ErrInsufficientData
	}

	xs := make([][2]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = [2]float64{s.Features.Std, s.Features.ChangeRatio}
		ys[i] = s.Label
	}

	sc := fitScaler(xs)
	scaled := make([][2]float64, len(xs))
	for i, x := range xs {
		scaled[i] = sc.transform(x)
	}

	rng := rand.New(rand.NewSource(forestSeed))
	trees := make([]*treeNode, forestSize)
	for t := range trees {
		// Bootstrap sample with replacement
		bx := make([][2]float64, len(scaled))
		by := make([]float64, len(scaled))
		for i := range bx {
			j := rng.Intn(len(scaled))
			bx[i] = scaled[j]
			by[i] = ys[j]
		}
		trees[t] = growTree(bx, by, 0)
	}

	p.model.Store(&forestModel{trees: trees, scaler: sc})
	log.Printf("Predictor trained on %d products", len(samples))
	return nil
}

// Predict maps a feature pair to a drop-likelihood score in [0,100].
// Returns ErrPredictionUnavailable when no model has been trained.
func (p *DropPredictor) Predict(f PriceFeatures) (int, error) {
	m := p.model.Load()
	if m == nil {
		return 0, ErrPredictionUnavailable
	}

	x := m.scaler.transform([2]float64{f.Std, f.ChangeRatio})
	sum := 0.0
	for _, t := range m.trees {
		sum += t.predict(x)
	}
	score := int(sum / float64(len(m.trees)))

	// Clip to the legitimate score range
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, nil
}

type forestModel struct {
	trees  []*treeNode
	scaler scaler
}

// scaler standardizes each feature to zero mean, unit variance.
type scaler struct {
	mean [2]float64
	std  [2]float64
}

func fitScaler(xs [][2]float64) scaler {
	var sc scaler
	n := float64(len(xs))
	for _, x := range xs {
		sc.mean[0] += x[0]
		sc.mean[1] += x[1]
	}
	sc.mean[0] /= n
	sc.mean[1] /= n
	for _, x := range xs {
		sc.std[0] += (x[0] - sc.mean[0]) * (x[0] - sc.mean[0])
		sc.std[1] += (x[1] - sc.mean[1]) * (x[1] - sc.mean[1])
	}
	sc.std[0] = math.Sqrt(sc.std[0] / n)
	sc.std[1] = math.Sqrt(sc.std[1] / n)
	// Constant features pass through unscaled
	if sc.std[0] == 0 {
		sc.std[0] = 1
	}
	if sc.std[1] == 0 {
		sc.std[1] = 1
	}
	return sc
}

func (sc scaler) transform(x [2]float64) [2]float64 {
	return [2]float64{
		(x[0] - sc.mean[0]) / sc.std[0],
		(x[1] - sc.mean[1]) / sc.std[1],
	}
}

// treeNode is one node of a regression tree. Leaves carry the mean
// label of the samples that reached them.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
	leaf      bool
}

func (t *treeNode) predict(x [2]float64) float64 {
	node := t
	for !node.leaf {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func growTree(xs [][2]float64, ys []float64, depth int) *treeNode {
	if depth >= forestMaxDepth || len(ys) < 2*forestMinLeaf || constant(ys) {
		return &treeNode{leaf: true, value: mean(ys)}
	}

	feature, threshold, ok := bestSplit(xs, ys)
	if !ok {
		return &treeNode{leaf: true, value: mean(ys)}
	}

	var lx, rx [][2]float64
	var ly, ry []float64
	for i, x := range xs {
		if x[feature] <= threshold {
			lx = append(lx, x)
			ly = append(ly, ys[i])
		} else {
			rx = append(rx, x)
			ry = append(ry, ys[i])
		}
	}
	if len(ly) < forestMinLeaf || len(ry) < forestMinLeaf {
		return &treeNode{leaf: true, value: mean(ys)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(lx, ly, depth+1),
		right:     growTree(rx, ry, depth+1),
	}
}

// bestSplit scans both features for the threshold minimizing the summed
// squared error of the two children.
func bestSplit(xs [][2]float64, ys []float64) (int, float64, bool) {
	bestScore := math.Inf(1)
	bestFeature, bestThreshold := 0, 0.0
	found := false

	n := len(ys)
	order := make([]int, n)

	for f := 0; f < 2; f++ {
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, b int) bool {
			return xs[order[a]][f] < xs[order[b]][f]
		})

		// Running sums let each candidate split score in O(1)
		leftSum, leftSq := 0.0, 0.0
		totalSum, totalSq := 0.0, 0.0
		for _, y := range ys {
			totalSum += y
			totalSq += y * y
		}

		for i := 0; i < n-1; i++ {
			y := ys[order[i]]
			leftSum += y
			leftSq += y * y

			cur, next := xs[order[i]][f], xs[order[i+1]][f]
			if cur == next {
				continue
			}

			nl := float64(i + 1)
			nr := float64(n - i - 1)
			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			score := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (cur + next) / 2
				found = true
			}
		}
	}

	return bestFeature, bestThreshold, found
}

func mean(ys []float64) float64 {
	if len(ys) == 0 {
		return 0
	}
	sum := 0.0
	for _, y := range ys {
		sum += y
	}
	return sum / float64(len(ys))
}

func constant(ys []float64) bool {
	for _, y := range ys {
		if y != ys[0] {
			return false
		}
	}
	return true
}
