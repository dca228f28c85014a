package blackjack

import (
	"github.com/wfunc/bugg-bot/internal/utils"
)

var (
	ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
	suits = []string{"♠", "♥", "♦", "♣"}
)

// Card 一张牌
type Card struct {
	Rank string `json:"rank"`
	Suit string `json:"suit"`
}

func (c Card) String() string {
	return c.Rank + c.Suit
}

// Value A 记 11，人头牌记 10
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

// HandValue 计算点数，A 在爆牌时依次降为 1；soft 表示仍有 A 按 11 计
func HandValue(hand []Card) (total int, soft bool) {
	aces := 0
	for _, c := range hand {
		total += c.Value()
		if c.Rank == "A" {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// IsBlackjack 首两张即 21 点
func IsBlackjack(hand []Card) bool {
	total, _ := HandValue(hand)
	return len(hand) == 2 && total == 21
}

// IsBust 爆牌
func IsBust(hand []Card) bool {
	total, _ := HandValue(hand)
	return total > 21
}

// NewShoe 生成 decks 副牌并洗牌
func NewShoe(decks int, rng utils.RNG) []Card {
	shoe := make([]Card, 0, decks*52)
	for d := 0; d < decks; d++ {
		for _, r := range ranks {
			for _, s := range suits {
				shoe = append(shoe, Card{Rank: r, Suit: s})
			}
		}
	}
	rng.Shuffle(len(shoe), func(i, j int) { shoe[i], shoe[j] = shoe[j], shoe[i] })
	return shoe
}
