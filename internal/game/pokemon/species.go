package pokemon

import (
	"sort"
	"strings"
)

// MoveSpec 招式
type MoveSpec struct {
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Power int    `json:"power"`
}

// Tackle 没有招式时使用的默认招式
var Tackle = MoveSpec{Name: "Tackle", Type: Normal, Power: 40}

// Species 种族基础数据
type Species struct {
	Name    string
	Type    Type
	HP      int
	Attack  int
	Defense int
	Speed   int
	Moves   []MoveSpec
}

// roster 内置图鉴，每种属性一只
var roster = map[string]Species{
	"bulbasaur":  {"Bulbasaur", Grass, 45, 49, 49, 45, []MoveSpec{{"Vine Whip", Grass, 45}, Tackle}},
	"charmander": {"Charmander", Fire, 39, 52, 43, 65, []MoveSpec{{"Ember", Fire, 40}, {"Scratch", Normal, 40}}},
	"squirtle":   {"Squirtle", Water, 44, 48, 65, 43, []MoveSpec{{"Water Gun", Water, 40}, Tackle}},
	"pikachu":    {"Pikachu", Electric, 35, 55, 40, 90, []MoveSpec{{"Thunder Shock", Electric, 40}, {"Quick Attack", Normal, 40}}},
	"eevee":      {"Eevee", Normal, 55, 55, 50, 55, []MoveSpec{Tackle, {"Bite", Dark, 60}}},
	"sneasel":    {"Sneasel", Ice, 55, 95, 55, 115, []MoveSpec{{"Ice Shard", Ice, 40}, {"Faint Attack", Dark, 60}}},
	"machop":     {"Machop", Fighting, 70, 80, 50, 35, []MoveSpec{{"Karate Chop", Fighting, 50}, {"Low Kick", Fighting, 50}}},
	"ekans":      {"Ekans", Poison, 35, 60, 44, 55, []MoveSpec{{"Poison Sting", Poison, 15}, {"Acid", Poison, 40}, {"Bite", Dark, 60}}},
	"sandshrew":  {"Sandshrew", Ground, 50, 75, 85, 40, []MoveSpec{{"Mud-Slap", Ground, 20}, {"Magnitude", Ground, 70}, {"Scratch", Normal, 40}}},
	"pidgey":     {"Pidgey", Flying, 40, 45, 40, 56, []MoveSpec{{"Gust", Flying, 40}, Tackle}},
	"abra":       {"Abra", Psychic, 25, 20, 15, 90, []MoveSpec{{"Confusion", Psychic, 50}}},
	"weedle":     {"Weedle", Bug, 40, 35, 30, 50, []MoveSpec{{"Bug Bite", Bug, 60}, {"Poison Sting", Poison, 15}}},
	"geodude":    {"Geodude", Rock, 40, 80, 100, 20, []MoveSpec{{"Rock Throw", Rock, 50}, Tackle}},
	"gastly":     {"Gastly", Ghost, 30, 35, 30, 80, []MoveSpec{{"Lick", Ghost, 30}, {"Night Shade", Ghost, 50}}},
	"dratini":    {"Dratini", Dragon, 41, 64, 45, 50, []MoveSpec{{"Twister", Dragon, 40}, {"Slam", Normal, 80}}},
	"houndour":   {"Houndour", Dark, 45, 60, 30, 65, []MoveSpec{{"Bite", Dark, 60}, {"Ember", Fire, 40}}},
	"magnemite":  {"Magnemite", Steel, 25, 35, 70, 45, []MoveSpec{{"Metal Sound", Steel, 40}, {"Thunder Shock", Electric, 40}}},
}

// LookupSpecies 按名称（不区分大小写）查找
func LookupSpecies(name string) (Species, bool) {
	s, ok := roster[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

// SpeciesNames 图鉴中的全部名称，已排序
func SpeciesNames() []string {
	names := make([]string, 0, len(roster))
	for n := range roster {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
