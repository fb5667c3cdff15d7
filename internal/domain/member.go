package domain

import (
	"strings"

	"github.com/quizdefense/quizdefense/internal/infrastructure/validate"
)

// Member is one connected player. The ID is assigned by the transport when
// the connection is accepted and is stable only for the life of that
// connection; a reconnect is a new member.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
	Ready  bool   `json:"ready"`
}

func NewMember(id, rawName string) (*Member, error) {
	validateName := validate.Compose(
		validate.Required(),
		validate.MinLength(2),
		validate.MaxLength(24),
		// Allow letters, numbers, spaces, underscore, hyphen
		validate.Matches(`^[a-zA-Z0-9][a-zA-Z0-9 _-]*$`,
			"player name can only contain letters, numbers, spaces, underscores, and hyphens"),
	)

	if err := validateName(rawName); err != nil {
		return nil, err
	}

	return &Member{
		ID:   id,
		Name: strings.TrimSpace(rawName),
	}, nil
}
