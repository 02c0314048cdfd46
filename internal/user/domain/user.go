package domain

import "time"

type ID string

type User struct {
	ID        ID
	Name      string
	CreatedAt time.Time
	LastSeen  time.Time
}
