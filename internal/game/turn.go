package game

import (
	apperr "github.com/wfunc/bugg-bot/internal/errors"
)

// CheckActor 校验 actor 此刻能否出手
//
// 离场动作任何在座玩家都可以发起；等待阶段只要求在座；
// 同时出手的变体跳过轮次检查，OutOfTurn 声明的动作亦然。
func CheckActor(st *State, actor string, mv Move) error {
	if st.Finished() {
		return apperr.New(apperr.ErrGameOver)
	}
	if !st.Seated(actor) {
		return apperr.Newf(apperr.ErrNotYourTurn, "%s 不在本局中", actor)
	}
	if mv.Action == ActionLeave || st.Phase == PhaseWaiting {
		return nil
	}
	if s, ok := st.Board.(Simultaneous); ok && s.Simultaneous() {
		return nil
	}
	if o, ok := st.Board.(OutOfTurn); ok && o.AnyTurn(mv.Action) {
		return nil
	}
	if st.Current() != actor {
		return apperr.Newf(apperr.ErrNotYourTurn, "当前轮到 %s", st.Current())
	}
	return nil
}

// NextTurn 计算下一个未弃权玩家的下标
func NextTurn(st *State) (int, error) {
	n := len(st.Players)
	if n == 0 {
		return 0, apperr.New(apperr.ErrGameStateError, "没有玩家")
	}
	for step := 1; step <= n; step++ {
		i := (st.Turn + step) % n
		if !st.Players[i].Forfeited {
			return i, nil
		}
	}
	return 0, apperr.New(apperr.ErrGameStateError, "没有可出手的玩家")
}

// Advance 轮到下一个未弃权玩家
func Advance(st *State) error {
	next, err := NextTurn(st)
	if err != nil {
		return err
	}
	st.Turn = next
	return nil
}

// FirstActive 从 from 开始（含）第一个未弃权玩家
func FirstActive(st *State, from int) (int, bool) {
	n := len(st.Players)
	for step := 0; step < n; step++ {
		i := (from + step) % n
		if !st.Players[i].Forfeited {
			return i, true
		}
	}
	return 0, false
}

// Forfeit 标记玩家弃权，若轮到此人则顺延
func Forfeit(st *State, actor string) error {
	i := st.PlayerIndex(actor)
	if i < 0 {
		return apperr.Newf(apperr.ErrNotFound, "玩家 %s 不在本局中", actor)
	}
	st.Players[i].Forfeited = true
	if st.Turn == i {
		if next, ok := FirstActive(st, i); ok {
			st.Turn = next
		}
	}
	return nil
}

// ForfeitHeadsUp 两人局中一方离场，另一方获胜
func ForfeitHeadsUp(st *State, actor string) error {
	if err := Forfeit(st, actor); err != nil {
		return err
	}
	return st.Finish(Result{Winner: st.Opponent(actor), Loser: actor, Reason: "forfeit"})
}
