package domain

import (
	"time"

	userdomain "github.com/yuizumi/chatspace/internal/user/domain"
)

type ID string

// Message is immutable once created. User carries the owning user when the
// row was fetched with its owner joined in.
type Message struct {
	ID        ID
	Content   string
	CreatedAt time.Time
	UserID    userdomain.ID
	User      *userdomain.User
}
