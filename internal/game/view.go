package game

import (
	"github.com/tfritzy/AcesCore/engine"
)

// PlayerView is the game as one player is allowed to see it: their own hand
// in full, everyone else reduced to hand sizes and scores. The pile is
// public. The projection is pure; the same game and player always produce
// the same view.
type PlayerView struct {
	Hand      []engine.Card    `json:"hand"`
	DeckSize  int              `json:"deckSize"`
	Pile      []engine.Card    `json:"pile"`
	Players   []PlayerSummary  `json:"players"`
	Turn      int              `json:"turn"`
	TurnPhase engine.TurnPhase `json:"turnPhase"`
	Round     int              `json:"round"`
	State     engine.GameState `json:"state"`
}

// PlayerSummary is the public face of one player, including the meld layout
// of their most recent completed round so clients can render how everyone
// ended up.
type PlayerSummary struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	HandSize      int    `json:"handSize"`
	Score         int    `json:"score"`
	ScorePerRound []int  `json:"scorePerRound"`

	MostRecentGroupedCards   [][]engine.Card `json:"mostRecentGroupedCards"`
	MostRecentUngroupedCards []engine.Card   `json:"mostRecentUngroupedCards"`
}

// viewFor projects g for the given player. Assumes the game's lock is held.
func viewFor(g *engine.Game, playerID string) (PlayerView, error) {
	player, err := g.FindPlayer(playerID)
	if err != nil {
		return PlayerView{}, err
	}

	view := PlayerView{
		Hand:      append([]engine.Card(nil), player.Hand...),
		DeckSize:  len(g.Deck),
		Pile:      append([]engine.Card(nil), g.Pile...),
		Turn:      g.TurnIndex,
		TurnPhase: g.TurnPhase,
		Round:     g.Round,
		State:     g.State,
	}

	view.Players = make([]PlayerSummary, len(g.Players))
	for i, p := range g.Players {
		summary := PlayerSummary{
			ID:            p.ID,
			DisplayName:   p.DisplayName,
			HandSize:      len(p.Hand),
			Score:         p.Score,
			ScorePerRound: append([]int(nil), p.ScorePerRound...),
		}

		// Re-derive the meld layout of the player's last completed round
		// from its hand snapshot, under that round's wild rank.
		if n := len(p.HandHistory); n > 0 {
			grouped := engine.GroupCards(p.HandHistory[n-1], engine.WildForRound(n-1))
			summary.MostRecentGroupedCards = grouped.Grouped
			summary.MostRecentUngroupedCards = grouped.Ungrouped
		}

		view.Players[i] = summary
	}

	return view, nil
}
