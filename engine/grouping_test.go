package engine

import (
	"testing"
)

// hand is shorthand for building an ordered hand in tests.
func hand(cards ...Card) []Card { return cards }

func joker() Card { return NewCard(KindJokerA, 0) }

// TestAscendingRunGroups verifies a plain three-card ascending run is fully
// groupable and scores zero.
func TestAscendingRunGroups(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankFive),
	)
	if !CanGoOut(h, RankSeven) {
		t.Fatal("CanGoOut = false for 3♠ 4♠ 5♠")
	}
	if score := ScoreHand(h, RankSeven); score != 0 {
		t.Errorf("ScoreHand = %d, want 0", score)
	}
}

// TestDescendingRunGroups verifies runs group in either direction.
func TestDescendingRunGroups(t *testing.T) {
	h := hand(
		CardOf(SuitHearts, RankNine),
		CardOf(SuitHearts, RankEight),
		CardOf(SuitHearts, RankSeven),
	)
	if !CanGoOut(h, RankTwo) {
		t.Fatal("CanGoOut = false for 9♥ 8♥ 7♥")
	}
}

// TestSameRankGroups verifies a set of identical ranks across suits.
func TestSameRankGroups(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankNine),
		CardOf(SuitHearts, RankNine),
		CardOf(SuitDiamonds, RankNine),
	)
	if !CanGoOut(h, RankTwo) {
		t.Fatal("CanGoOut = false for 9♠ 9♥ 9♦")
	}
}

// TestRunWithLeftoverScores verifies an ungrouped card contributes its point
// value while the melded run contributes nothing.
func TestRunWithLeftoverScores(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankFive),
		CardOf(SuitHearts, RankNine),
	)
	if CanGoOut(h, RankSeven) {
		t.Fatal("CanGoOut = true with an ungroupable 9♥")
	}
	if score := ScoreHand(h, RankSeven); score != 10 {
		t.Errorf("ScoreHand = %d, want 10", score)
	}
}

// TestWildSubstitutesInRun verifies a wildcard-rank card stands in for a
// missing run member: 3♠ 7♦ 5♠ reads as 3-4-5 when sevens are wild.
func TestWildSubstitutesInRun(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitDiamonds, RankSeven),
		CardOf(SuitSpades, RankFive),
	)
	if !CanGoOut(h, RankSeven) {
		t.Fatal("CanGoOut = false for 3♠ 7♦(wild) 5♠")
	}
}

// TestJokerIsAlwaysWild verifies jokers substitute regardless of the round's
// wildcard rank.
func TestJokerIsAlwaysWild(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankNine),
		joker(),
		CardOf(SuitDiamonds, RankNine),
	)
	if !CanGoOut(h, RankTwo) {
		t.Fatal("CanGoOut = false for 9♠ Joker 9♦")
	}
}

// TestAllWildsGroup verifies a stretch of nothing but wilds melds.
func TestAllWildsGroup(t *testing.T) {
	h := hand(joker(), NewCard(KindJokerB, 0), joker())
	if !CanGoOut(h, RankTwo) {
		t.Fatal("CanGoOut = false for three jokers")
	}
}

// TestLeadingWildAnchorsOnFirstReal verifies a wild opening a stretch takes
// the meld type from the first non-wild card.
func TestLeadingWildAnchorsOnFirstReal(t *testing.T) {
	h := hand(
		CardOf(SuitDiamonds, RankSeven),
		CardOf(SuitSpades, RankNine),
		CardOf(SuitHearts, RankNine),
	)
	if !CanGoOut(h, RankSeven) {
		t.Fatal("CanGoOut = false for 7♦(wild) 9♠ 9♥")
	}
}

// TestTwoCardsNeverMeld verifies pairs are not melds.
func TestTwoCardsNeverMeld(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankNine),
		CardOf(SuitHearts, RankNine),
	)
	if CanGoOut(h, RankTwo) {
		t.Fatal("CanGoOut = true for a bare pair")
	}
}

// TestShorterMeldBeatsGreedyLongest verifies the search backtracks: taking
// the maximal 3♠-4♠-5♠-6♠ run would orphan the two remaining sixes, while
// stopping the run at 5♠ lets the sixes form a set and covers everything.
func TestShorterMeldBeatsGreedyLongest(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankFive),
		CardOf(SuitSpades, RankSix),
		CardOf(SuitHearts, RankSix),
		CardOf(SuitDiamonds, RankSix),
	)
	if !CanGoOut(h, RankKing) {
		t.Fatal("CanGoOut = false; search did not back off the maximal run")
	}
}

// TestUngroupedMiddleCard verifies a dead card between two melds is skipped
// over, not forced into either.
func TestUngroupedMiddleCard(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankFive),
		CardOf(SuitClubs, RankKing),
		CardOf(SuitSpades, RankNine),
		CardOf(SuitHearts, RankNine),
		CardOf(SuitDiamonds, RankNine),
	)
	res := GroupCards(h, RankSeven)
	if len(res.Grouped) != 2 {
		t.Fatalf("grouped %d melds, want 2", len(res.Grouped))
	}
	if len(res.Ungrouped) != 1 || res.Ungrouped[0].Rank() != RankKing {
		t.Fatalf("ungrouped = %v, want the lone K♣", res.Ungrouped)
	}
	if score := ScoreHand(h, RankSeven); score != 10 {
		t.Errorf("ScoreHand = %d, want 10", score)
	}
}

// TestOrderingMatters verifies grouping reads the hand as arranged: the same
// cards meld in one order and not in another.
func TestOrderingMatters(t *testing.T) {
	melds := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankFive),
	)
	scrambled := hand(
		CardOf(SuitSpades, RankFour),
		CardOf(SuitSpades, RankThree),
		CardOf(SuitSpades, RankFive),
	)
	if !CanGoOut(melds, RankKing) {
		t.Fatal("CanGoOut = false for ordered run")
	}
	if CanGoOut(scrambled, RankKing) {
		t.Fatal("CanGoOut = true for scrambled run; ordering should matter")
	}
}

// TestAcesMeldOnlyAsSets verifies aces form same-rank sets but never runs:
// the ace sits at the bottom of the run scale in a way that keeps it from
// neighboring the two.
func TestAcesMeldOnlyAsSets(t *testing.T) {
	set := hand(
		CardOf(SuitSpades, RankAce),
		CardOf(SuitHearts, RankAce),
		CardOf(SuitDiamonds, RankAce),
	)
	if !CanGoOut(set, RankKing) {
		t.Fatal("CanGoOut = false for A♠ A♥ A♦")
	}

	run := hand(
		CardOf(SuitSpades, RankAce),
		CardOf(SuitSpades, RankTwo),
		CardOf(SuitSpades, RankThree),
	)
	if CanGoOut(run, RankKing) {
		t.Fatal("CanGoOut = true for A♠ 2♠ 3♠; aces do not run")
	}
}

// TestEmptyHandGroups verifies the degenerate empty hand is trivially
// covered.
func TestEmptyHandGroups(t *testing.T) {
	if !CanGoOut(nil, RankTwo) {
		t.Error("CanGoOut = false for empty hand")
	}
	if score := ScoreHand(nil, RankTwo); score != 0 {
		t.Errorf("ScoreHand = %d, want 0", score)
	}
}

// TestNoWildAfterRotation verifies that with no wild rank in effect, former
// wildcard ranks count as ordinary cards.
func TestNoWildAfterRotation(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankThree),
		CardOf(SuitDiamonds, RankSeven),
		CardOf(SuitSpades, RankFive),
	)
	if CanGoOut(h, RankInvalid) {
		t.Fatal("CanGoOut = true with no wild rank; 7♦ should not substitute")
	}
}

// TestGroupCardsPartition verifies the partition accounts for every card
// exactly once and in hand order.
func TestGroupCardsPartition(t *testing.T) {
	h := hand(
		CardOf(SuitClubs, RankQueen),
		CardOf(SuitSpades, RankNine),
		CardOf(SuitHearts, RankNine),
		CardOf(SuitDiamonds, RankNine),
		CardOf(SuitHearts, RankTwo),
	)
	res := GroupCards(h, RankSeven)

	total := len(res.Ungrouped)
	for _, meld := range res.Grouped {
		if len(meld) < 3 {
			t.Errorf("meld of size %d; melds need 3+", len(meld))
		}
		total += len(meld)
	}
	if total != len(h) {
		t.Fatalf("partition covers %d cards, hand has %d", total, len(h))
	}
	if score := ScoreHand(h, RankSeven); score != 10+3 {
		t.Errorf("ScoreHand = %d, want 13 (Q♣ + 2♥)", score)
	}
}

// TestScoreHandPointValues verifies leftover scoring uses the rank-dependent
// point table.
func TestScoreHandPointValues(t *testing.T) {
	h := hand(
		CardOf(SuitSpades, RankAce),
		CardOf(SuitHearts, RankJack),
		CardOf(SuitClubs, RankFour),
		joker(),
	)
	// Nothing melds: 20 + 10 + 5 + ... the joker is wild and alone.
	// A single wild cannot meld by itself (melds need 3 cards), so it is
	// ungrouped and scores 50.
	if score := ScoreHand(h, RankKing); score != 20+10+5+50 {
		t.Errorf("ScoreHand = %d, want 85", score)
	}
}
