package usecase

import "github.com/google/uuid"

type Role string

const (
	RoleWorker   Role = "WORKER"
	RoleBusiness Role = "BUSINESS"
)

// Caller is the authenticated party behind a request.
type Caller struct {
	ID   uuid.UUID
	Role Role
}

func (c Caller) IsWorker() bool   { return c.ID != uuid.Nil && c.Role == RoleWorker }
func (c Caller) IsBusiness() bool { return c.ID != uuid.Nil && c.Role == RoleBusiness }
