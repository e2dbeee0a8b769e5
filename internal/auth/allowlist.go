// Package auth decides which operators may issue commands.
package auth

// Allowlist authorizes a fixed set of user ids. An empty allowlist
// authorizes nobody.
type Allowlist struct {
	ids map[int64]struct{}
}

// NewAllowlist authorizes exactly ids.
func NewAllowlist(ids []int64) *Allowlist {
	a := &Allowlist{ids: make(map[int64]struct{}, len(ids))}
	for _, id := range ids {
		a.ids[id] = struct{}{}
	}
	return a
}

// IsAllowed reports whether the user may operate the bot.
func (a *Allowlist) IsAllowed(userID int64) bool {
	_, ok := a.ids[userID]
	return ok
}

// Len returns the number of authorized ids.
func (a *Allowlist) Len() int { return len(a.ids) }
