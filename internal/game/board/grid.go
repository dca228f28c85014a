// Package board 实现网格类游戏：四子棋与井字棋
package board

import (
	apperr "github.com/wfunc/bugg-bot/internal/errors"
	"github.com/wfunc/bugg-bot/internal/game"
)

// 方向：横、竖、右下斜、左下斜
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// Grid 网格棋盘，Cells 中 0 为空，1/2 分别对应先后手
type Grid struct {
	GameKind game.Kind `json:"kind"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"cols"`
	Connect  int       `json:"connect"`
	Gravity  bool      `json:"gravity"`
	Cells    [][]int   `json:"cells"`
	LastRow  int       `json:"last_row"`
	LastCol  int       `json:"last_col"`
}

func newGrid(kind game.Kind, rows, cols, connect int, gravity bool) *Grid {
	cells := make([][]int, rows)
	for r := range cells {
		cells[r] = make([]int, cols)
	}
	return &Grid{
		GameKind: kind,
		Rows:     rows,
		Cols:     cols,
		Connect:  connect,
		Gravity:  gravity,
		Cells:    cells,
		LastRow:  -1,
		LastCol:  -1,
	}
}

// NewConnect4 6行7列，四子连线，棋子下落
func NewConnect4() *Grid {
	return newGrid(game.KindConnect4, 6, 7, 4, true)
}

// NewTicTacToe 3x3，三子连线
func NewTicTacToe() *Grid {
	return newGrid(game.KindTicTacToe, 3, 3, 3, false)
}

func headsUp(st *game.State) error {
	if len(st.Players) != 2 {
		return apperr.Newf(apperr.ErrInvalidParam, "需要 2 名玩家，实际 %d", len(st.Players))
	}
	return nil
}

// Connect4Factory 四子棋工厂
func Connect4Factory(st *game.State, _ game.Env, _ game.Options) (game.Variant, error) {
	if err := headsUp(st); err != nil {
		return nil, err
	}
	return NewConnect4(), nil
}

// TicTacToeFactory 井字棋工厂
func TicTacToeFactory(st *game.State, _ game.Env, _ game.Options) (game.Variant, error) {
	if err := headsUp(st); err != nil {
		return nil, err
	}
	return NewTicTacToe(), nil
}

func (g *Grid) Kind() game.Kind { return g.GameKind }

// Target 计算一步落子的格子；四子棋 Index 为列，井字棋 Index 为格子编号
func (g *Grid) Target(index int) (row, col int, err error) {
	if g.Gravity {
		if index < 0 || index >= g.Cols {
			return 0, 0, apperr.Newf(apperr.ErrInvalidMove, "列 %d 超出范围 0-%d", index, g.Cols-1)
		}
		for r := g.Rows - 1; r >= 0; r-- {
			if g.Cells[r][index] == 0 {
				return r, index, nil
			}
		}
		return 0, 0, apperr.Newf(apperr.ErrInvalidMove, "列 %d 已满", index)
	}

	if index < 0 || index >= g.Rows*g.Cols {
		return 0, 0, apperr.Newf(apperr.ErrInvalidMove, "格子 %d 超出范围 0-%d", index, g.Rows*g.Cols-1)
	}
	row, col = index/g.Cols, index%g.Cols
	if g.Cells[row][col] != 0 {
		return 0, 0, apperr.Newf(apperr.ErrInvalidMove, "格子 %d 已被占用", index)
	}
	return row, col, nil
}

func (g *Grid) Apply(st *game.State, _ game.Env, actor string, mv game.Move) error {
	switch mv.Action {
	case game.ActionLeave:
		return game.ForfeitHeadsUp(st, actor)
	case "", "place":
	default:
		return apperr.Newf(apperr.ErrInvalidMove, "未知动作 %q", mv.Action)
	}

	row, col, err := g.Target(mv.Index)
	if err != nil {
		return err
	}
	g.Cells[row][col] = st.Turn + 1
	g.LastRow, g.LastCol = row, col
	return game.Advance(st)
}

// Winner 返回连线的标记，0 表示无
func (g *Grid) Winner() int {
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			mark := g.Cells[r][c]
			if mark == 0 {
				continue
			}
			for _, d := range directions {
				if g.line(r, c, d[0], d[1], mark) {
					return mark
				}
			}
		}
	}
	return 0
}

func (g *Grid) line(r, c, dr, dc, mark int) bool {
	for i := 1; i < g.Connect; i++ {
		rr, cc := r+dr*i, c+dc*i
		if rr < 0 || rr >= g.Rows || cc < 0 || cc >= g.Cols || g.Cells[rr][cc] != mark {
			return false
		}
	}
	return true
}

// Full 棋盘是否已满
func (g *Grid) Full() bool {
	for _, row := range g.Cells {
		for _, v := range row {
			if v == 0 {
				return false
			}
		}
	}
	return true
}

func (g *Grid) IsTerminal(st *game.State) *game.Result {
	if mark := g.Winner(); mark > 0 {
		winner := st.Players[mark-1].ID
		return &game.Result{Winner: winner, Loser: st.Opponent(winner), Reason: "line"}
	}
	if g.Full() {
		return &game.Result{Draw: true, Reason: "board full"}
	}
	return nil
}

func (g *Grid) LegalMoves(st *game.State, actor string) []game.Move {
	if st.Current() != actor {
		return nil
	}
	var moves []game.Move
	if g.Gravity {
		for c := 0; c < g.Cols; c++ {
			if g.Cells[0][c] == 0 {
				moves = append(moves, game.Move{Action: "place", Index: c})
			}
		}
		return moves
	}
	for i := 0; i < g.Rows*g.Cols; i++ {
		if g.Cells[i/g.Cols][i%g.Cols] == 0 {
			moves = append(moves, game.Move{Action: "place", Index: i})
		}
	}
	return moves
}

// DefaultAction 棋类超时直接判弃局
func (g *Grid) DefaultAction(*game.State) (string, game.Move, bool) {
	return "", game.Move{}, false
}

func (g *Grid) Clone() game.Variant {
	c := *g
	c.Cells = make([][]int, len(g.Cells))
	for i, row := range g.Cells {
		c.Cells[i] = append([]int(nil), row...)
	}
	return &c
}
