package client

import (
	"time"

	"github.com/quizdefense/quizdefense/internal/game"
)

// Autoplay tuning: how long the headless player "thinks" before answering
// a question, and the ammo reward for a correct answer.
const (
	answerDelay     = 1500 * time.Millisecond
	ammoPerAnswer   = 2
	tripleAmmoFloor = 3
)

// autoplay is the built-in headless player: solve the pending question once
// the thinking deadline passes (bots always answer correctly), then spend
// ammo on the monster closest to the defense line.
func (s *Session) autoplay(now time.Time) {
	if !s.questionDeadline.IsZero() && !now.Before(s.questionDeadline) {
		s.ammo += ammoPerAnswer
		if s.ammo > game.MaxAmmo {
			s.ammo = game.MaxAmmo
		}
		s.stats.Ammo = s.ammo
		s.statsDirty = true
		s.nextQuestion(now)
	}

	target := s.pickTarget()
	if target == nil {
		return
	}

	weapon := game.Weapons["basic"]
	if target.IsBoss && s.ammo >= tripleAmmoFloor {
		weapon = game.Weapons["triple"]
	}
	if s.ammo < weapon.Cost {
		return
	}

	s.ammo -= weapon.Cost
	s.stats.Ammo = s.ammo

	var score int
	if s.authority != nil {
		score = s.authority.ApplyShot(target.ID, weapon, now)
	} else if s.reconciler != nil {
		score = s.reconciler.ApplyShot(target.ID, weapon, now)
	}

	if score > 0 {
		s.stats.Score += score
		s.stats.Kills++
	}
	s.statsDirty = true
}

// nextQuestion rolls a fresh question and re-arms the answer deadline.
func (s *Session) nextQuestion(now time.Time) {
	s.question = game.GenerateQuestion(s.currentWave())
	s.questionDeadline = now.Add(answerDelay)
}

func (s *Session) currentWave() int {
	if s.authority != nil {
		return s.authority.Wave().Wave
	}
	if s.reconciler != nil {
		return s.reconciler.Wave().Wave
	}
	return 1
}

// pickTarget returns the live monster nearest the defense line.
func (s *Session) pickTarget() *game.Monster {
	var monsters []*game.Monster
	if s.authority != nil {
		monsters = s.authority.Monsters()
	} else if s.reconciler != nil {
		monsters = s.reconciler.Monsters()
	}

	var target *game.Monster
	for _, m := range monsters {
		if target == nil || m.Y > target.Y {
			target = m
		}
	}
	return target
}
