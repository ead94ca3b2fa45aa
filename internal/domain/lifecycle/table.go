// Package lifecycle holds the exchange state machine and the authorization
// policy gating each transition.
package lifecycle

import (
	"github.com/okian/skillswap/internal/domain/model"
	"github.com/samber/lo"
)

// transitions lists the statuses reachable in one step from each status.
// Terminal statuses map to nil. A status never reaches itself.
var transitions = map[model.Status][]model.Status{
	model.StatusPending:   {model.StatusAccepted, model.StatusDeclined, model.StatusCancelled},
	model.StatusAccepted:  {model.StatusCompleted, model.StatusCancelled},
	model.StatusDeclined:  nil,
	model.StatusCancelled: nil,
	model.StatusCompleted: nil,
}

// grant allows roles to request a target status while the exchange is in from.
type grant struct {
	from  model.Status
	roles []model.Role
}

// policy is keyed by target status. It is the only place that says who may
// request what.
var policy = map[model.Status][]grant{
	model.StatusAccepted: {
		{from: model.StatusPending, roles: []model.Role{model.RoleProvider}},
	},
	model.StatusDeclined: {
		{from: model.StatusPending, roles: []model.Role{model.RoleProvider}},
	},
	model.StatusCancelled: {
		{from: model.StatusPending, roles: []model.Role{model.RoleRequester}},
		{from: model.StatusAccepted, roles: []model.Role{model.RoleRequester, model.RoleProvider}},
	},
	model.StatusCompleted: {
		{from: model.StatusAccepted, roles: []model.Role{model.RoleProvider}},
	},
}

// Reachable reports whether to is one step away from from.
func Reachable(from, to model.Status) bool {
	return lo.Contains(transitions[from], to)
}

// Next returns the statuses reachable from s.
func Next(s model.Status) []model.Status {
	out := make([]model.Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// Authorize reports whether role may move an exchange from current to target.
func Authorize(role model.Role, current, target model.Status) bool {
	for _, g := range policy[target] {
		if g.from != current {
			continue
		}
		if lo.Contains(g.roles, role) {
			return true
		}
	}
	return false
}

// mayRequest reports whether role may request target from any status.
// Used to reject role violations before looking at the current status.
func mayRequest(role model.Role, target model.Status) bool {
	return lo.SomeBy(policy[target], func(g grant) bool {
		return lo.Contains(g.roles, role)
	})
}
