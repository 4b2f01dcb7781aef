package engine

// Player actions. Every exported method here validates the request fully
// before touching game state, so a returned RuleError guarantees nothing
// changed; accepted actions mutate the aggregate and append their events in
// one step.

// DrawFromDeck moves the top card of the draw stack into the acting player's
// hand. If the draw stack is empty, the discard pile below its top card is
// shuffled back in first; only when that is impossible is the draw rejected.
func (g *Game) DrawFromDeck(playerID string) (Card, error) {
	card, err := g.drawFrom(playerID, true)
	if err != nil {
		return Card{}, err
	}
	g.appendEvent(&DrawFromDeckEvent{PlayerID: playerID})
	return card, nil
}

// DrawFromPile moves the top card of the discard pile into the acting
// player's hand.
func (g *Game) DrawFromPile(playerID string) (Card, error) {
	card, err := g.drawFrom(playerID, false)
	if err != nil {
		return Card{}, err
	}
	g.appendEvent(&DrawFromPileEvent{PlayerID: playerID})
	return card, nil
}

func (g *Game) drawFrom(playerID string, fromDeck bool) (Card, error) {
	if g.State != StatePlaying {
		return Card{}, reject("the game isn't in progress")
	}
	player, err := g.FindPlayer(playerID)
	if err != nil {
		return Card{}, err
	}
	if g.CurrentPlayer() != player {
		return Card{}, reject("it's not your turn")
	}

	numDrawn := len(player.Hand) - HandSizeForRound(g.Round)
	if numDrawn >= g.MaxDrawable() {
		return Card{}, reject("you can't draw any more cards, you need to discard now")
	}
	if g.TurnPhase != PhaseDrawing {
		return Card{}, reject("you can't draw after you start discarding")
	}

	source := &g.Pile
	if fromDeck {
		source = &g.Deck
		if len(g.Deck) == 0 {
			g.reshuffleFromPile()
		}
	}
	if len(*source) == 0 {
		return Card{}, reject("you can't draw from an empty pile")
	}

	card := (*source)[len(*source)-1]
	*source = (*source)[:len(*source)-1]
	player.Hand = append(player.Hand, card)

	if numDrawn+1 >= g.MaxDrawable() {
		g.TurnPhase = PhaseDiscarding
	}
	return card, nil
}

// reshuffleFromPile rebuilds an empty draw stack from the discard pile,
// leaving the pile's top card in place. A no-op when the pile has nothing to
// give up.
func (g *Game) reshuffleFromPile() {
	if len(g.Pile) <= 1 {
		return
	}

	top := g.Pile[len(g.Pile)-1]
	g.Deck = append(g.Deck, g.Pile[:len(g.Pile)-1]...)
	g.Pile = []Card{top}

	for i := len(g.Deck) - 1; i > 0; i-- {
		j := g.rng.IntN(i + 1)
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	}

	g.appendEvent(&ReshuffleDeckEvent{DeckSize: len(g.Deck), Pile: append([]Card(nil), g.Pile...)})
}

// Discard moves a named card from the acting player's hand onto the pile.
// The player must hold at least one card beyond the round's base hand size.
func (g *Game) Discard(playerID string, kind Kind) (Card, error) {
	if g.State != StatePlaying {
		return Card{}, reject("the game isn't in progress")
	}
	player, err := g.FindPlayer(playerID)
	if err != nil {
		return Card{}, err
	}
	if g.CurrentPlayer() != player {
		return Card{}, reject("it's not your turn")
	}
	if len(player.Hand)-HandSizeForRound(g.Round) <= 0 {
		return Card{}, reject("you have insufficient cards to discard one")
	}

	card, ok := player.removeCard(kind)
	if !ok {
		return Card{}, reject("you don't have that card")
	}
	g.Pile = append(g.Pile, card)
	g.TurnPhase = PhaseDiscarding

	g.appendEvent(&DiscardEvent{PlayerID: playerID, Card: card})
	return card, nil
}

// GoOut is the acting player's claim that their hand fully partitions into
// melds. The claimed hand fixes the arrangement the melds are read from and
// must hold exactly the cards the engine tracks for the player, which
// catches clients acting on stale state. On success the player scores 0 for
// the round and, if nobody has yet, becomes the round's closer.
func (g *Game) GoOut(playerID string, claimedHand []Card) error {
	if g.State != StatePlaying {
		return reject("the game isn't in progress")
	}
	player, err := g.FindPlayer(playerID)
	if err != nil {
		return err
	}
	if g.CurrentPlayer() != player {
		return reject("it's not your turn")
	}

	extraCards := len(player.Hand) - HandSizeForRound(g.Round)
	if g.TurnPhase == PhaseDrawing || extraCards > 0 {
		return reject("you can't go out until you've drawn and discarded")
	}
	if !sameCards(claimedHand, player.Hand) {
		return reject("your hand is out of date, refresh and try again")
	}
	if !CanGoOut(claimedHand, WildForRound(g.Round)) {
		return reject("you can't go out with your current hand")
	}

	// Keep the claimed arrangement so the melds render as the player laid
	// them out.
	player.Hand = append([]Card(nil), claimedHand...)

	if g.PlayerWentOut == "" {
		g.PlayerWentOut = playerID
	}

	g.appendEvent(&PlayerWentOutEvent{PlayerID: playerID})
	g.scorePlayerForRound(player, 0)
	g.advanceTurn()

	// A later player going out hands the turn straight back to the round's
	// closer, which ends the round just as it would from EndTurn.
	if g.CurrentPlayer().ID == g.PlayerWentOut {
		g.advanceRound()
	}
	return nil
}

// EndTurn passes play to the next player. Once somebody has gone out, each
// later player's hand is scored as their turn comes back around, and the
// round closes when the turn returns to the player who went out.
func (g *Game) EndTurn(playerID string) error {
	if g.State != StatePlaying {
		return reject("the game isn't in progress")
	}
	player, err := g.FindPlayer(playerID)
	if err != nil {
		return err
	}
	if g.CurrentPlayer() != player {
		return reject("it's not your turn")
	}
	if len(player.Hand)-HandSizeForRound(g.Round) > 0 {
		return reject("you can't end your turn until you have discarded")
	}
	if g.TurnPhase == PhaseDrawing {
		return reject("you can't end your turn before drawing")
	}

	// Score the player once somebody has gone out, unless they already have
	// a score for this round (they were the one who went out).
	if g.PlayerWentOut != "" && len(player.ScorePerRound) <= g.Round {
		g.scorePlayerForRound(player, ScoreHand(player.Hand, WildForRound(g.Round)))
	}

	g.advanceTurn()

	if g.PlayerWentOut != "" && g.CurrentPlayer().ID == g.PlayerWentOut {
		g.advanceRound()
	}
	return nil
}

// scorePlayerForRound records a player's final score for the current round:
// the running total, the per-round sequence, and the hand snapshot used to
// render their melds afterwards.
func (g *Game) scorePlayerForRound(player *Player, roundScore int) {
	player.Score += roundScore
	player.ScorePerRound = append(player.ScorePerRound, roundScore)
	player.HandHistory = append(player.HandHistory, append([]Card(nil), player.Hand...))

	g.appendEvent(&PlayerDoneForRoundEvent{
		PlayerID:    player.ID,
		DisplayName: player.DisplayName,
		RoundScore:  roundScore,
		TotalScore:  player.Score,
	})
}

// advanceTurn hands play to the next player in seating order.
func (g *Game) advanceTurn() {
	g.TurnIndex = (g.TurnIndex + 1) % len(g.Players)
	g.TurnPhase = PhaseDrawing
	g.appendEvent(&AdvanceTurnEvent{TurnIndex: g.TurnIndex})
}

// advanceRound re-deals for the next round, rotating the starting seat so no
// player perpetually goes first, or ends the game after the final round.
func (g *Game) advanceRound() {
	g.Round++
	g.PlayerWentOut = ""
	g.appendEvent(&AdvanceRoundEvent{Round: g.Round})

	if g.Round > g.NumRounds {
		g.endGame()
		return
	}

	g.initDeck()
	g.dealCards()
	g.TurnIndex = g.Round % len(g.Players)
	g.TurnPhase = PhaseDrawing
}

func (g *Game) endGame() {
	g.State = StateFinished
	g.appendEvent(&GameEndEvent{})
}

// sameCards reports multiset equality of two hands by (kind, deck index).
func sameCards(a, b []Card) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[Card]int, len(a))
	for _, c := range a {
		counts[c]++
	}
	for _, c := range b {
		if counts[c] == 0 {
			return false
		}
		counts[c]--
	}
	return true
}
