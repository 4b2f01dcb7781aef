package engine

// Meld grouping. A meld is three or more cards of identical rank, or three
// or more same-suit cards forming a consecutive ascending or descending run.
// Wild cards (the round's wildcard rank, plus jokers) substitute for any
// position but cannot by themselves establish what kind of meld is forming.
//
// Grouping works over the hand in the order given: the caller's arrangement
// decides which contiguous stretches are candidate melds. The search first
// computes, per start index, the longest contiguous stretch that still forms
// one valid meld, then finds the interval partition that covers the most
// cards via backtracking over meld lengths with a best-so-far memo.

type streakType uint8

const (
	streakNone streakType = iota
	streakSame
	streakAsc
	streakDesc
)

type stepDir int8

const (
	stepAsc  stepDir = 1
	stepDesc stepDir = -1
)

// isWild reports whether the card substitutes freely: the round's wildcard
// rank, or any joker.
func isWild(c Card, wild Rank) bool {
	r := c.Rank()
	return (wild != RankInvalid && r == wild) || r == RankJoker
}

// runValue returns the card's position in a run: the rank ordinal, except
// that an ace counts as 0 when it opens an ascending measurement or closes a
// descending one. Both cards reaching here are known non-wild.
func runValue(c Card, dir stepDir, atStart bool) int {
	if c.Rank() == RankAce && ((dir == stepAsc && atStart) || (dir == stepDesc && !atStart)) {
		return 0
	}
	return int(c.Rank())
}

// areNStepApart reports whether b sits exactly n steps from a in the given
// direction within the same suit.
func areNStepApart(a, b Card, dir stepDir, n int) bool {
	if a.Suit() != b.Suit() {
		return false
	}
	return runValue(b, dir, false)-runValue(a, dir, true) == int(dir)*n
}

// isInDirection reports whether b lies anywhere beyond a in the given
// direction within the same suit.
func isInDirection(a, b Card, dir stepDir) bool {
	if a.Suit() != b.Suit() {
		return false
	}
	delta := runValue(b, dir, false) - runValue(a, dir, true)
	return (delta > 0) == (dir == stepAsc) && delta != 0
}

// streakTypeOf classifies what kind of meld two adjacent non-wild cards
// begin. Wild cards establish nothing.
func streakTypeOf(a, b Card, wild Rank) streakType {
	if isWild(a, wild) || isWild(b, wild) {
		return streakNone
	}
	if a.Rank() == b.Rank() {
		return streakSame
	}
	if isInDirection(a, b, stepAsc) {
		return streakAsc
	}
	if isInDirection(a, b, stepDesc) {
		return streakDesc
	}
	return streakNone
}

// continuesStreak reports whether card extends a streak of the given type
// when it sits gap positions after prev. Wild cards extend anything.
func continuesStreak(prev, card Card, streak streakType, gap int, wild Rank) bool {
	if isWild(card, wild) || isWild(prev, wild) {
		return true
	}
	switch streak {
	case streakSame:
		return prev.Rank() == card.Rank()
	case streakAsc:
		return areNStepApart(prev, card, stepAsc, gap)
	case streakDesc:
		return areNStepApart(prev, card, stepDesc, gap)
	}
	return false
}

// runLengths computes, for every start index, the maximal contiguous stretch
// beginning there that forms one valid meld. The scan anchors on the first
// non-wild card it meets; until then wilds extend the stretch unconditionally
// and the streak type stays open. Each further card must continue the streak
// both against its neighbor and against the anchor at the full gap, so wilds
// in the middle stand in for exactly one rank step.
func runLengths(cards []Card, wild Rank) []int {
	lengths := make([]int, len(cards))
	if len(cards) == 0 {
		return lengths
	}

	for i := 0; i < len(cards)-1; i++ {
		size := 1
		streak := streakNone
		firstReal := -1

		for i+size < len(cards) {
			j := i + size

			if firstReal == -1 && !isWild(cards[j-1], wild) {
				firstReal = j - 1
			}
			if streak == streakNone && firstReal != -1 {
				streak = streakTypeOf(cards[firstReal], cards[j], wild)
			}

			if continuesStreak(cards[j-1], cards[j], streak, 1, wild) &&
				(firstReal == -1 || continuesStreak(cards[firstReal], cards[j], streak, j-firstReal, wild)) {
				size++
			} else {
				break
			}
		}

		lengths[i] = size
	}

	lengths[len(cards)-1] = 1
	return lengths
}

// Group is one meld in a partition: Size cards starting at Start in the
// hand's arrangement.
type Group struct {
	Start int
	Size  int
}

func totalGrouped(groups []Group) int {
	total := 0
	for _, g := range groups {
		total += g.Size
	}
	return total
}

// bestGroups finds the partition of cards[index:] into melds that covers the
// most cards. At each index it tries consuming a meld of every length from
// the maximal run down to 3, or skipping ahead ungrouped; best[index] prunes
// branches that arrive with less coverage than an earlier visit. Ties go to
// the first partition found, which the descending-length order biases toward
// longer melds.
func bestGroups(runLens []int, index int, groups []Group, best []int) []Group {
	if index >= len(runLens) {
		return groups
	}

	if best[index] > totalGrouped(groups) {
		return groups
	}

	mostGrouped := 0
	var result []Group
	for i := runLens[index]; i > 0; i-- {
		clone := make([]Group, len(groups), len(groups)+1)
		copy(clone, groups)
		if i > 2 {
			clone = append(clone, Group{Start: index, Size: i})
		}

		candidate := bestGroups(runLens, index+i, clone, best)
		if grouped := totalGrouped(candidate); grouped > mostGrouped {
			mostGrouped = grouped
			result = candidate
		}
	}

	best[index] = mostGrouped
	return result
}

// BestGroups returns the meld partition of the hand, in its given order,
// that covers the most cards under the round's wildcard rank.
func BestGroups(hand []Card, wild Rank) []Group {
	return bestGroups(runLengths(hand, wild), 0, nil, make([]int, len(hand)))
}

// CanGoOut reports whether the hand, in its given order, partitions fully
// into melds with nothing left over.
func CanGoOut(hand []Card, wild Rank) bool {
	return totalGrouped(BestGroups(hand, wild)) == len(hand)
}

// ScoreHand returns the summed point value of the cards the best partition
// leaves ungrouped; melded cards score nothing.
func ScoreHand(hand []Card, wild Rank) int {
	score := 0
	for _, c := range GroupCards(hand, wild).Ungrouped {
		score += c.PointValue()
	}
	return score
}

// GroupResult splits a hand into its melds and its leftover cards, both in
// hand order.
type GroupResult struct {
	Grouped   [][]Card `json:"grouped"`
	Ungrouped []Card   `json:"ungrouped"`
}

// GroupCards partitions the hand under the best grouping found. Used to
// validate and score hands and to render a player's melds after a round.
func GroupCards(hand []Card, wild Rank) GroupResult {
	groups := BestGroups(hand, wild)

	result := GroupResult{Grouped: make([][]Card, 0, len(groups))}
	next := 0
	for _, g := range groups {
		result.Ungrouped = append(result.Ungrouped, hand[next:g.Start]...)
		result.Grouped = append(result.Grouped, hand[g.Start:g.Start+g.Size])
		next = g.Start + g.Size
	}
	result.Ungrouped = append(result.Ungrouped, hand[next:]...)
	return result
}
