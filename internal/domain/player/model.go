package player

import (
	"fmt"
	"time"
)

// Player is a club member who funds boards from a running balance. The
// balance itself is never stored on the player; it is derived from the ledger.
type Player struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}

	return nil
}
