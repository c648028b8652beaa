package models

import (
	"time"
)

// Claim is the authenticated identity extracted from verified
// credentials or a valid token. Transient, never persisted.
type Claim struct {
	Username string
	Role     Role
}

type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Token pair issued by TokenManager on login and reissue
type TokenPair struct {
	Access  IssuedToken
	Refresh IssuedToken
}
