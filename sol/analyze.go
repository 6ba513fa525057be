package sol

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/viper"

	"mevscan/config"
	"mevscan/db"
	"mevscan/logger"
	"mevscan/mev"
	"mevscan/types"
	"mevscan/utils"
)

// Analyzer runs the full pipeline for one target signature: window fetch,
// tip location, sandwich/front-run detection, loss estimation.
type Analyzer struct {
	client   Client
	detector *mev.Detector
	cache    *utils.SigCache
}

func NewAnalyzer(client Client, detector *mev.Detector) *Analyzer {
	return &Analyzer{
		client:   client,
		detector: detector,
		cache:    utils.NewSigCache(0),
	}
}

// SeedAnalyzed marks signatures as already analyzed, so targets recorded in
// earlier runs are skipped.
func (a *Analyzer) SeedAnalyzed(signatures []string) {
	a.cache.Seed(signatures)
}

// RunAnalyzeCmd analyzes the given target signatures plus any configured
// under mev.auto-detect-hashes, and records one report per target.
func RunAnalyzeCmd(signatures []string) error {
	ch := db.NewClickhouse()
	defer ch.Close()

	detector := mev.NewDetector(config.LoadDetection(), mev.NewRegistryFromViper())
	analyzer := NewAnalyzer(NewClient(), detector)

	// Skip targets recorded by earlier runs.
	if analyzed, err := ch.QueryAnalyzedSignatures(utils.DefaultSigCacheCapacity); err != nil {
		logger.MevLogger.Warn("Could not load previously analyzed signatures", "err", err)
	} else {
		analyzer.SeedAnalyzed(analyzed)
		logger.MevLogger.Info("Seeded de-dup cache from recorded reports", "count", len(analyzed))
	}
	if lastSlot, err := ch.QueryLastAnalyzedSlot(); err != nil {
		logger.MevLogger.Warn("Could not query last analyzed slot", "err", err)
	} else {
		logger.MevLogger.Info("Last analyzed slot in DB", "slot", lastSlot)
	}

	targets := make([]string, 0, len(signatures))
	targets = append(targets, signatures...)
	targets = append(targets, viper.GetStringSlice("mev.auto-detect-hashes")...)

	ctx := context.Background()
	reports := make([]*types.AnalysisReport, 0, len(targets))
	for _, signature := range targets {
		report, err := analyzer.Analyze(ctx, signature)
		if err != nil {
			logger.MevLogger.Error("Analysis failed", "tx", signature, "err", err)
			continue
		}
		if report == nil {
			continue // duplicate target, already analyzed this session
		}
		reports = append(reports, report)
	}

	if err := ch.InsertAnalysisReports(reports); err != nil {
		return err
	}
	logger.MevLogger.Info("Recorded analysis reports", "count", len(reports))
	return nil
}

// Analyze runs the pipeline for one target. A nil report with nil error
// means the target was already analyzed in this session.
func (a *Analyzer) Analyze(ctx context.Context, signature string) (*types.AnalysisReport, error) {
	if a.cache.Has(signature) {
		return nil, nil
	}
	a.cache.Add(signature)

	window, targetIndex, err := a.client.GetNearbyTransactions(ctx, signature)
	if err != nil {
		return nil, err
	}
	target := window[targetIndex]

	report := &types.AnalysisReport{
		Signature:  signature,
		Slot:       target.Slot,
		AnalyzedAt: time.Now(),
	}

	// Vote and stake maintenance traffic cannot be sandwiched; report as clean.
	if a.detector.IsVoteTransaction(target) {
		logger.MevLogger.Info("Target is vote/stake traffic, skipping detection", "tx", signature)
		return report, nil
	}

	if bundle := a.detector.CheckTipInNearbyTransactions(window, targetIndex); bundle != nil {
		report.InBundle = true
		report.TipLamports = bundle.TipLamports
	}

	if sandwich := a.detector.DetectSandwichAttack(window, signature); sandwich != nil {
		sandwich.UserLoss = a.estimateLoss(ctx, window, sandwich)
		report.SandwichFound = true
		report.FrontTx = sandwich.FrontTx
		report.BackTx = sandwich.BackTx
		if loss := sandwich.UserLoss; loss != nil {
			report.LossLamports = loss.EstimatedLossLamports
			report.LossPercentage = loss.LossPercentage
			report.LossMethod = loss.CalculationMethod
			report.AttackerProfit = loss.AttackerProfit
			report.Confidence = loss.Confidence
			logger.MevLogger.Info("Victim loss estimated",
				"victim_tx", signature, "loss_sol", float64(loss.EstimatedLossLamports)/utils.SOL_UNIT,
				"method", loss.CalculationMethod, "confidence", loss.Confidence)
		}
		return report, nil
	}

	if frontrun := a.detector.DetectFrontrunAttack(window, signature); frontrun != nil {
		report.FrontrunFound = true
		report.FrontTx = frontrun.FrontTx
	}
	return report, nil
}

// estimateLoss prefers the balance-based path and falls back to
// instruction-based estimation when the node cannot serve balance data.
// Transport failures surface as a nil loss; detection results stand on
// their own.
func (a *Analyzer) estimateLoss(ctx context.Context, window types.Transactions, sandwich *types.SandwichDetails) *types.UserLoss {
	loss, err := a.detector.CalculatePreciseLoss(
		ctx, a.client, sandwich.FrontTx, sandwich.VictimTx, sandwich.BackTx, sandwich.AccountIntersection)
	if err == nil {
		return loss
	}

	if errors.Is(err, ErrBalanceUnavailable) || errors.Is(err, ErrTxNotFound) {
		logger.MevLogger.Warn("Balance data unavailable, falling back to instruction-based estimation",
			"victim_tx", sandwich.VictimTx, "err", err)
		front := findBySignature(window, sandwich.FrontTx)
		victim := findBySignature(window, sandwich.VictimTx)
		back := findBySignature(window, sandwich.BackTx)
		if front == nil || victim == nil || back == nil {
			return nil
		}
		return a.detector.CalculateInstructionBasedLoss(front, victim, back, sandwich.AccountIntersection)
	}

	logger.MevLogger.Error("Loss estimation failed", "victim_tx", sandwich.VictimTx, "err", err)
	return nil
}

func findBySignature(window types.Transactions, signature string) *types.Transaction {
	for _, tx := range window {
		if tx != nil && tx.Signature == signature {
			return tx
		}
	}
	return nil
}
