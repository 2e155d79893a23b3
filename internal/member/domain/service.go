package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// Service grants collective memberships.
type Service interface {
	// Grant adds the role to the user at most once; re-granting an
	// existing membership returns the existing row.
	Grant(ctx context.Context, userID, collectiveID snowflake.ID, role Role) (*Member, error)
}
