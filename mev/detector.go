package mev

import (
	"log/slog"
	"sort"

	MapSet "github.com/deckarep/golang-set/v2"

	"mevscan/config"
	"mevscan/logger"
	"mevscan/types"
)

// Detector classifies transaction windows for sandwich and front-run
// patterns and estimates the imposed loss. It holds no mutable state: every
// call computes from its inputs, so a Detector may be shared across
// concurrent analyses.
type Detector struct {
	cfg        config.Detection
	registry   *Registry
	estimators []LossEstimator
	log        *slog.Logger
}

func NewDetector(cfg config.Detection, registry *Registry) *Detector {
	log := logger.MevLogger
	if log == nil {
		log = logger.GlobalLogger
	}
	d := &Detector{
		cfg:      cfg,
		registry: registry,
		log:      log,
	}
	d.estimators = defaultEstimators(d)
	return d
}

// DetectSandwichAttack looks for the sandwich pattern around the target:
// a swap-like front within two positions before and a swap-like back within
// two positions after, whose intersections with the target's writable
// account set are similar enough. The first qualifying pair in
// nearest-to-farthest order wins; there is no global optimum search.
func (d *Detector) DetectSandwichAttack(window types.Transactions, targetSignature string) *types.SandwichDetails {
	targetIndex := indexOfSignature(window, targetSignature)
	if targetIndex < 0 {
		return nil
	}
	target := window[targetIndex]

	if !d.IsDexTransaction(target) {
		return nil
	}

	targetAccounts := d.ExtractFilteredAccounts(target)
	if targetAccounts.Cardinality() == 0 {
		return nil
	}
	d.log.Debug("Target filtered account set", "tx", targetSignature, "count", targetAccounts.Cardinality())

	type candidate struct {
		tx           *types.Transaction
		intersection MapSet.Set[string]
	}

	// Up to two candidates on each side, nearest first.
	var fronts []candidate
	for i := 0; i < config.SANDWICH_CANDIDATE_SPAN && targetIndex-1-i >= 0; i++ {
		frontTx := window[targetIndex-1-i]
		if !d.IsDexTransaction(frontTx) {
			continue
		}
		intersection := targetAccounts.Intersect(d.ExtractFilteredAccounts(frontTx))
		if intersection.Cardinality() > 0 {
			fronts = append(fronts, candidate{frontTx, intersection})
		}
	}

	var backs []candidate
	for i := 0; i < config.SANDWICH_CANDIDATE_SPAN && targetIndex+1+i < len(window); i++ {
		backTx := window[targetIndex+1+i]
		if !d.IsDexTransaction(backTx) {
			continue
		}
		intersection := targetAccounts.Intersect(d.ExtractFilteredAccounts(backTx))
		if intersection.Cardinality() > 0 {
			backs = append(backs, candidate{backTx, intersection})
		}
	}

	for _, front := range fronts {
		for _, back := range backs {
			similarity := IntersectionSimilarity(front.intersection, back.intersection)
			if similarity < d.cfg.SimilarityThreshold {
				continue
			}

			evidence := front.intersection.Union(back.intersection).ToSlice()
			sort.Strings(evidence)
			d.log.Info("Sandwich pattern found",
				"front_tx", front.tx.Signature, "victim_tx", targetSignature, "back_tx", back.tx.Signature,
				"similarity", similarity, "shared_accounts", len(evidence))

			return &types.SandwichDetails{
				FrontTx:             front.tx.Signature,
				BackTx:              back.tx.Signature,
				VictimTx:            targetSignature,
				AccountIntersection: evidence,
				Similarity:          similarity,
			}
		}
	}

	return nil
}

// DetectFrontrunAttack scans backward from the target for the nearest
// swap-like transaction sharing writable accounts with it.
func (d *Detector) DetectFrontrunAttack(window types.Transactions, targetSignature string) *types.FrontrunDetails {
	targetIndex := indexOfSignature(window, targetSignature)
	if targetIndex < 0 {
		return nil
	}
	target := window[targetIndex]

	if !d.IsDexTransaction(target) {
		return nil
	}

	targetAccounts := d.ExtractFilteredAccounts(target)
	if targetAccounts.Cardinality() == 0 {
		return nil
	}

	for i := targetIndex - 1; i >= 0; i-- {
		frontTx := window[i]
		if !d.IsDexTransaction(frontTx) {
			continue
		}

		intersection := targetAccounts.Intersect(d.ExtractFilteredAccounts(frontTx))
		if intersection.Cardinality() == 0 {
			continue
		}

		evidence := intersection.ToSlice()
		sort.Strings(evidence)
		d.log.Info("Front-run pattern found",
			"front_tx", frontTx.Signature, "victim_tx", targetSignature, "shared_accounts", len(evidence))

		return &types.FrontrunDetails{
			FrontTx:             frontTx.Signature,
			VictimTx:            targetSignature,
			AccountIntersection: evidence,
		}
	}

	return nil
}

// IntersectionSimilarity is the Jaccard index |A∩B| / |A∪B| over account
// sets. Two empty sets are fully similar; one empty set against a non-empty
// one is fully dissimilar.
func IntersectionSimilarity(a, b MapSet.Set[string]) float64 {
	if a.Cardinality() == 0 && b.Cardinality() == 0 {
		return 1.0
	}
	if a.Cardinality() == 0 || b.Cardinality() == 0 {
		return 0.0
	}

	unionCount := a.Union(b).Cardinality()
	if unionCount == 0 {
		return 0.0
	}
	return float64(a.Intersect(b).Cardinality()) / float64(unionCount)
}

func indexOfSignature(window types.Transactions, signature string) int {
	for i, tx := range window {
		if tx != nil && tx.Signature == signature {
			return i
		}
	}
	return -1
}
