package adflow

import (
	"marketflow/authority"
)

// AdAction names one approval in the ad pipeline and who may perform it.
// ApproverAreaSlugs is an OR set; an empty set means no area restriction.
type AdAction struct {
	Phase             int
	Action            string
	ApproverAreaSlugs []string
	ApproverPositions []authority.Position
}

// AdActions is the complete approval map of the six-phase pipeline.
var AdActions = map[string]AdAction{
	// phase 1
	"aprovar_briefing": {
		Phase: 1, Action: "aprovar_briefing",
		ApproverAreaSlugs: []string{"content-manager", "growth"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},

	// phase 2
	"escrever_roteiro": {
		Phase: 2, Action: "escrever_roteiro",
		ApproverAreaSlugs: []string{"copywriting", "oslo"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator, authority.PositionStaff},
	},
	"validar_roteiro_compliance": {
		Phase: 2, Action: "validar_roteiro_compliance",
		ApproverAreaSlugs: []string{"compliance", "medico"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},
	"validar_roteiro_medico": {
		Phase: 2, Action: "validar_roteiro_medico",
		ApproverAreaSlugs: []string{"compliance", "medico"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},

	// phase 3
	"selecionar_elenco": {
		Phase: 3, Action: "selecionar_elenco",
		ApproverAreaSlugs: []string{"ugc-manager", "oslo"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},
	"aprovar_elenco": {
		Phase: 3, Action: "aprovar_elenco",
		ApproverAreaSlugs: []string{"growth"},
		ApproverPositions: []authority.Position{authority.PositionHead},
	},
	"pre_producao": {
		Phase: 3, Action: "pre_producao",
		ApproverAreaSlugs: []string{"oslo", "design"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator, authority.PositionStaff},
	},
	"aprovar_pre_producao": {
		Phase: 3, Action: "aprovar_pre_producao",
		ApproverAreaSlugs: []string{"growth"},
		ApproverPositions: []authority.Position{authority.PositionHead},
	},

	// phase 4
	"producao_entrega": {
		Phase: 4, Action: "producao_entrega",
		ApproverAreaSlugs: []string{"oslo", "ugc-manager"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator, authority.PositionStaff},
	},

	// phase 5
	"revisao_conteudo": {
		Phase: 5, Action: "revisao_conteudo",
		ApproverAreaSlugs: []string{"growth", "trafego"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},
	"revisao_design": {
		Phase: 5, Action: "revisao_design",
		ApproverAreaSlugs: []string{"design"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},
	"validacao_final": {
		Phase: 5, Action: "validacao_final",
		ApproverAreaSlugs: []string{"compliance", "medico"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},

	// phase 6
	"aprovacao_final": {
		Phase: 6, Action: "aprovacao_final",
		ApproverAreaSlugs: []string{"growth", "trafego", "content-manager"},
		ApproverPositions: []authority.Position{authority.PositionHead},
	},
	"nomenclatura": {
		Phase: 6, Action: "nomenclatura",
		ApproverAreaSlugs: []string{"trafego"},
		ApproverPositions: []authority.Position{authority.PositionHead, authority.PositionCoordinator},
	},
}

// CanPerformAdAction decides from the session alone: SUPER_ADMIN bypasses
// everything, an action without area slugs is open, otherwise the actor
// needs one of the listed positions in one of the listed areas.
func CanPerformAdAction(action AdAction, perms authority.Permissions, areaRoles authority.AreaRoles) bool {
	if perms.HasSuperAdminRole() {
		return true
	}
	if len(action.ApproverAreaSlugs) == 0 {
		return true
	}
	return areaRoles.HasSlugPosition(action.ApproverAreaSlugs, action.ApproverPositions)
}
