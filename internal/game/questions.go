package game

import (
	"fmt"
	"math/rand"
)

// Question is one quiz prompt with its expected answer. Question content is
// an external collaborator; QuestionSource is the boundary, and
// GenerateQuestion is the built-in arithmetic default used by the headless
// client's ammo economy.
type Question struct {
	Prompt string
	Answer int
}

type QuestionSource func(wave int) Question

// GenerateQuestion produces a difficulty-scaled arithmetic question.
// Subtraction enters at wave 2 and multiplication at wave 3.
func GenerateQuestion(wave int) Question {
	if wave < 1 {
		wave = 1
	}

	ops := 1 + min(wave-1, 2)

	switch rand.Intn(ops) {
	case 1:
		a := between(wave*10, wave*20)
		b := between(1, wave*10)
		if b > a {
			a, b = b, a
		}
		return Question{Prompt: fmt.Sprintf("%d - %d = ?", a, b), Answer: a - b}
	case 2:
		a := between(2, wave+5)
		b := between(2, min(wave+3, 12))
		return Question{Prompt: fmt.Sprintf("%d × %d = ?", a, b), Answer: a * b}
	default:
		a := between(wave*5, wave*15)
		b := between(1, wave*10)
		return Question{Prompt: fmt.Sprintf("%d + %d = ?", a, b), Answer: a + b}
	}
}

// between returns a random int in [lo, hi].
func between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.Intn(hi-lo+1)
}
