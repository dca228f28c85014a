package pokemon

// Type 属性，采用第二至五世代的 17 种属性（无妖精）
type Type string

const (
	Normal   Type = "normal"
	Fire     Type = "fire"
	Water    Type = "water"
	Electric Type = "electric"
	Grass    Type = "grass"
	Ice      Type = "ice"
	Fighting Type = "fighting"
	Poison   Type = "poison"
	Ground   Type = "ground"
	Flying   Type = "flying"
	Psychic  Type = "psychic"
	Bug      Type = "bug"
	Rock     Type = "rock"
	Ghost    Type = "ghost"
	Dragon   Type = "dragon"
	Dark     Type = "dark"
	Steel    Type = "steel"
)

// Types 全部属性，顺序即克制表的行列顺序
var Types = []Type{
	Normal, Fire, Water, Electric, Grass, Ice, Fighting, Poison, Ground,
	Flying, Psychic, Bug, Rock, Ghost, Dragon, Dark, Steel,
}

var (
	superEffective = map[Type][]Type{
		Fire:     {Grass, Ice, Bug, Steel},
		Water:    {Fire, Ground, Rock},
		Grass:    {Water, Ground, Rock},
		Electric: {Water, Flying},
		Ice:      {Grass, Ground, Flying, Dragon},
		Fighting: {Normal, Ice, Rock, Dark, Steel},
		Poison:   {Grass},
		Ground:   {Fire, Electric, Poison, Rock, Steel},
		Flying:   {Grass, Fighting, Bug},
		Psychic:  {Fighting, Poison},
		Bug:      {Grass, Psychic, Dark},
		Rock:     {Fire, Ice, Flying, Bug},
		Ghost:    {Psychic, Ghost},
		Dragon:   {Dragon},
		Dark:     {Psychic, Ghost},
		Steel:    {Ice, Rock},
	}

	notVeryEffective = map[Type][]Type{
		Normal:   {Rock, Steel},
		Fire:     {Fire, Water, Rock, Dragon},
		Water:    {Water, Grass, Dragon},
		Grass:    {Fire, Grass, Poison, Flying, Bug, Dragon, Steel},
		Electric: {Electric, Grass, Dragon},
		Ice:      {Fire, Water, Ice, Steel},
		Fighting: {Poison, Flying, Psychic, Bug},
		Poison:   {Poison, Ground, Rock, Ghost},
		Ground:   {Grass, Bug},
		Flying:   {Electric, Rock, Steel},
		Psychic:  {Psychic, Steel},
		Bug:      {Fire, Fighting, Poison, Flying, Ghost, Steel},
		Rock:     {Fighting, Ground, Steel},
		Ghost:    {Dark, Steel},
		Dragon:   {Steel},
		Dark:     {Fighting, Dark, Steel},
		Steel:    {Fire, Water, Electric, Steel},
	}

	noEffect = map[Type][]Type{
		Normal:   {Ghost},
		Electric: {Ground},
		Fighting: {Ghost},
		Poison:   {Steel},
		Ground:   {Flying},
		Psychic:  {Dark},
		Ghost:    {Normal},
	}
)

// chart 17×17 克制表，chart[攻击][防御]
var chart = buildChart()

func typeIndex(t Type) int {
	for i, x := range Types {
		if x == t {
			return i
		}
	}
	return -1
}

func buildChart() [][]float64 {
	n := len(Types)
	c := make([][]float64, n)
	for i := range c {
		c[i] = make([]float64, n)
		for j := range c[i] {
			c[i][j] = 1
		}
	}
	fill := func(m map[Type][]Type, v float64) {
		for atk, defs := range m {
			for _, def := range defs {
				c[typeIndex(atk)][typeIndex(def)] = v
			}
		}
	}
	fill(superEffective, 2)
	fill(notVeryEffective, 0.5)
	fill(noEffect, 0)
	return c
}

// Valid 是否为已知属性
func (t Type) Valid() bool { return typeIndex(t) >= 0 }

// Effectiveness 返回 atk 属性招式打 def 属性的倍率，取值 0、0.5、1、2；未知属性按 1 处理
func Effectiveness(atk, def Type) float64 {
	i, j := typeIndex(atk), typeIndex(def)
	if i < 0 || j < 0 {
		return 1
	}
	return chart[i][j]
}
