package session

import (
	"context"
	"time"

	"marketflow/authority"

	"github.com/fundwit/go-commons/types"
)

type Session struct {
	Token     string                `json:"token"`
	Identity  Identity              `json:"identity"`
	Perms     authority.Permissions `json:"perms"`
	AreaRoles authority.AreaRoles   `json:"areaRoles"`

	SigningTime time.Time       `json:"-"`
	Context     context.Context `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Nickname string   `json:"nickname"`
}

func (s *Session) Clone() Session {
	c := Session{Token: s.Token, Identity: s.Identity, SigningTime: s.SigningTime}
	c.Perms = append(authority.Permissions{}, s.Perms...)
	c.AreaRoles = append(authority.AreaRoles{}, s.AreaRoles...)
	return c
}
