package game

// Weapon is one of the fixed firing options. Shots are gated by ammo, which
// players earn by answering quiz questions.
type Weapon struct {
	Name    string
	Damage  float64
	Cost    int
	Freezes bool
}

const MaxAmmo = 10

var Weapons = map[string]Weapon{
	"basic":  {Name: "Basic Shot", Damage: 10, Cost: 1},
	"double": {Name: "Double Shot", Damage: 25, Cost: 2},
	"triple": {Name: "Triple Shot", Damage: 40, Cost: 3},
	"freeze": {Name: "Freeze Shot", Damage: 20, Cost: 2, Freezes: true},
}
