package mev

import (
	"testing"

	MapSet "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mevscan/config"
	"mevscan/types"
)

func TestDetectSandwichAttack(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	// Front and back intersect the victim on {pond2, pond3} out of the union
	// {pond1..pond4}: Jaccard 2/4 = 0.5, exactly at the default threshold.
	front := swapTx("frontSig", "attacker1", "pond1", "pond2", "pond3")
	victim := swapTx("victimSig", "victim1", "pond1", "pond2", "pond3", "pond4")
	back := swapTx("backSig", "attacker1", "pond2", "pond3", "pond4")
	window := types.Transactions{front, victim, back}

	details := d.DetectSandwichAttack(window, "victimSig")
	require.NotNil(t, details)
	assert.Equal(t, "frontSig", details.FrontTx)
	assert.Equal(t, "backSig", details.BackTx)
	assert.Equal(t, "victimSig", details.VictimTx)
	assert.InDelta(t, 0.5, details.Similarity, 1e-9)
	assert.Equal(t, []string{"pond1", "pond2", "pond3", "pond4"}, details.AccountIntersection)
}

func TestDetectSandwichAttackStricterThreshold(t *testing.T) {
	cfg := config.DefaultDetection()
	cfg.SimilarityThreshold = 0.7
	d := NewDetector(cfg, NewRegistry())

	// The same 0.5-similarity window no longer clears the bar.
	front := swapTx("frontSig", "attacker1", "pond1", "pond2", "pond3")
	victim := swapTx("victimSig", "victim1", "pond1", "pond2", "pond3", "pond4")
	back := swapTx("backSig", "attacker1", "pond2", "pond3", "pond4")
	window := types.Transactions{front, victim, back}

	assert.Nil(t, d.DetectSandwichAttack(window, "victimSig"))
}

func TestDetectSandwichAttackIsIdempotent(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1", "pond2")
	victim := swapTx("victimSig", "victim1", "pond1", "pond2")
	back := swapTx("backSig", "attacker1", "pond1", "pond2")
	window := types.Transactions{front, victim, back}

	first := d.DetectSandwichAttack(window, "victimSig")
	second := d.DetectSandwichAttack(window, "victimSig")
	require.NotNil(t, first)
	assert.Equal(t, first, second)
}

func TestDetectSandwichAttackBelowThreshold(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	// Intersections {pond1} and {pond4} are disjoint: similarity 0.
	front := swapTx("frontSig", "attacker1", "pond1")
	victim := swapTx("victimSig", "victim1", "pond1", "pond4")
	back := swapTx("backSig", "attacker2", "pond4")
	window := types.Transactions{front, victim, back}

	assert.Nil(t, d.DetectSandwichAttack(window, "victimSig"))
}

func TestDetectSandwichAttackNonDexTarget(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond1")
	victim := transferTx("victimSig", "victim1", "dest1", 2_000_000)
	back := swapTx("backSig", "attacker1", "pond1")
	window := types.Transactions{front, victim, back}

	assert.Nil(t, d.DetectSandwichAttack(window, "victimSig"))
}

func TestDetectSandwichAttackUnknownTarget(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())
	window := types.Transactions{swapTx("aSig", "signer1", "pond1")}
	assert.Nil(t, d.DetectSandwichAttack(window, "missingSig"))
}

func TestDetectFrontrunAttack(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	// Nearest preceding swap sharing accounts wins, the farther one is ignored.
	farther := swapTx("fartherSig", "attacker2", "pond1", "pond2")
	nearer := swapTx("nearerSig", "attacker1", "pond2")
	victim := swapTx("victimSig", "victim1", "pond1", "pond2")
	window := types.Transactions{farther, nearer, victim}

	details := d.DetectFrontrunAttack(window, "victimSig")
	require.NotNil(t, details)
	assert.Equal(t, "nearerSig", details.FrontTx)
	assert.Equal(t, []string{"pond2"}, details.AccountIntersection)
}

func TestDetectFrontrunAttackNoSharedAccounts(t *testing.T) {
	d := NewDetector(config.DefaultDetection(), NewRegistry())

	front := swapTx("frontSig", "attacker1", "pond9")
	victim := swapTx("victimSig", "victim1", "pond1")
	window := types.Transactions{front, victim}

	assert.Nil(t, d.DetectFrontrunAttack(window, "victimSig"))
}

func TestIntersectionSimilarity(t *testing.T) {
	setOf := func(items ...string) MapSet.Set[string] {
		s := MapSet.NewSet[string]()
		for _, item := range items {
			s.Add(item)
		}
		return s
	}

	assert.Equal(t, 1.0, IntersectionSimilarity(setOf(), setOf()))
	assert.Equal(t, 0.0, IntersectionSimilarity(setOf("a"), setOf()))
	assert.Equal(t, 0.0, IntersectionSimilarity(setOf(), setOf("a")))
	assert.Equal(t, 1.0, IntersectionSimilarity(setOf("a", "b"), setOf("a", "b")))
	assert.InDelta(t, 1.0/3.0, IntersectionSimilarity(setOf("a", "b"), setOf("b", "c")), 1e-9)

	// Similarity is always within [0, 1].
	sim := IntersectionSimilarity(setOf("a", "b", "c"), setOf("c", "d"))
	assert.GreaterOrEqual(t, sim, 0.0)
	assert.LessOrEqual(t, sim, 1.0)
}
