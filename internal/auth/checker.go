package auth

import "context"

// Checker answers whether a session token belongs to a logged in admin.
type Checker interface {
	IsLogged(ctx context.Context, token string) (bool, error)
}
