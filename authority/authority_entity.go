package authority

import (
	"strings"

	"github.com/fundwit/go-commons/types"
)

const (
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Position of a member inside an Area. At most one HEAD and one
// COORDINATOR per area; any number of STAFF.
type Position string

const (
	PositionHead        Position = "HEAD"
	PositionCoordinator Position = "COORDINATOR"
	PositionStaff       Position = "STAFF"
)

func (p Position) IsValid() bool {
	return p == PositionHead || p == PositionCoordinator || p == PositionStaff
}

type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAdminRole() bool {
	return c.HasRole(RoleAdmin) || c.HasRole(RoleSuperAdmin)
}

func (c Permissions) HasSuperAdminRole() bool {
	return c.HasRole(RoleSuperAdmin)
}

// AreaRole is one area membership carried in the session.
type AreaRole struct {
	AreaID   types.ID `json:"areaId"`
	AreaSlug string   `json:"areaSlug"`
	Position Position `json:"position"`
}

type AreaRoles []AreaRole

func (c AreaRoles) HasArea(areaId types.ID) bool {
	for _, v := range c {
		if v.AreaID == areaId {
			return true
		}
	}
	return false
}

// HasAreaPosition reports membership in the given area holding one of the
// wanted positions. An empty positions set means any position qualifies.
func (c AreaRoles) HasAreaPosition(areaId types.ID, positions []Position) bool {
	for _, v := range c {
		if v.AreaID != areaId {
			continue
		}
		if len(positions) == 0 {
			return true
		}
		for _, p := range positions {
			if v.Position == p {
				return true
			}
		}
	}
	return false
}

// HasSlugPosition reports membership in one of the slug-named areas holding
// one of the wanted positions.
func (c AreaRoles) HasSlugPosition(slugs []string, positions []Position) bool {
	for _, v := range c {
		for _, slug := range slugs {
			if v.AreaSlug != slug {
				continue
			}
			for _, p := range positions {
				if v.Position == p {
					return true
				}
			}
		}
	}
	return false
}
