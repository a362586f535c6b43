package domain

import "time"

// RoleAdmin is the only role that can use the panel
const RoleAdmin = "admin"

// AdminSession is an issued panel session
type AdminSession struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TTL is the remaining lifetime at now
func (s *AdminSession) TTL(now time.Time) time.Duration {
	return s.ExpiresAt.Sub(now)
}
