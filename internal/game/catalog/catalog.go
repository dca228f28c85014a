// Package catalog 按配置组装所有游戏类型的工厂
package catalog

import (
	"github.com/wfunc/bugg-bot/internal/config"
	"github.com/wfunc/bugg-bot/internal/game"
	"github.com/wfunc/bugg-bot/internal/game/blackjack"
	"github.com/wfunc/bugg-bot/internal/game/board"
	"github.com/wfunc/bugg-bot/internal/game/deathroll"
	"github.com/wfunc/bugg-bot/internal/game/duel"
	"github.com/wfunc/bugg-bot/internal/game/pokemon"
)

// New 返回 Kind -> Factory 映射
func New(cfg config.GameConfig) map[game.Kind]game.Factory {
	return map[game.Kind]game.Factory{
		game.KindBlackjack: blackjack.Factory(blackjack.Config{
			Decks:          cfg.Blackjack.Decks,
			MaxPlayers:     cfg.Blackjack.MaxPlayers,
			ReshuffleBelow: cfg.Blackjack.ReshuffleBelow,
			DealerStand:    cfg.Blackjack.DealerStand,
		}),
		game.KindPokemon: pokemon.Factory(pokemon.Config{
			DefaultLevel: cfg.Pokemon.DefaultLevel,
			MaxTeamSize:  cfg.Pokemon.MaxTeamSize,
		}),
		game.KindConnect4:  board.Connect4Factory,
		game.KindTicTacToe: board.TicTacToeFactory,
		game.KindDeathRoll: deathroll.Factory(deathroll.Config{
			DefaultCeiling: cfg.DeathRoll.DefaultCeiling,
			MinCeiling:     cfg.DeathRoll.MinCeiling,
			MaxCeiling:     cfg.DeathRoll.MaxCeiling,
		}),
		game.KindDuel: duel.Factory(duel.Config{
			MinDelay:  cfg.Duel.MinDelay,
			MaxDelay:  cfg.Duel.MaxDelay,
			TieWindow: cfg.Duel.TieWindow,
		}),
	}
}

// RegistryConfig 从配置提取会话表参数
func RegistryConfig(cfg config.GameConfig) game.RegistryConfig {
	return game.RegistryConfig{
		MoveTimeout:       cfg.MoveTimeout,
		WaitingTimeout:    cfg.WaitingTimeout,
		FinishedRetention: cfg.FinishedRetention,
		MaxSessions:       cfg.MaxSessions,
	}
}
