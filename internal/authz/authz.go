// Package authz maps each role to the rows it may read and the writes it may
// perform on machines, maintenances and complaints.
//
// Catalogs are not scoped: any authenticated actor reads them and nobody
// writes them through the API.
package authz

import "silant-backend/internal/model"

// Resource is a scoped entity type.
type Resource string

const (
	ResourceMachine     Resource = "machine"
	ResourceMaintenance Resource = "maintenance"
	ResourceComplaint   Resource = "complaint"
)

// Action is a write operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Owner names the Machine association that ties a scoped row to its actor.
type Owner string

const (
	OwnerClient         Owner = "client"
	OwnerServiceCompany Owner = "service_company"
)

// Scope is the read predicate for one actor. Maintenances and complaints are
// scoped through their machine.
type Scope struct {
	all     bool
	owner   Owner
	actorID uint
}

// All reports whether the scope is unrestricted.
func (s Scope) All() bool { return s.all }

// Empty reports whether the scope admits no row.
func (s Scope) Empty() bool { return !s.all && s.owner == "" }

// Owner returns which machine association must equal ActorID.
func (s Scope) Owner() Owner { return s.owner }

// ActorID is the actor the owner association is compared against.
func (s Scope) ActorID() uint { return s.actorID }

// AllowsMachine evaluates the scope against a loaded machine.
func (s Scope) AllowsMachine(m *model.Machine) bool {
	switch {
	case s.all:
		return true
	case m == nil:
		return false
	case s.owner == OwnerClient:
		return m.ClientID == s.actorID
	case s.owner == OwnerServiceCompany:
		return m.ServiceCompanyID == s.actorID
	}
	return false
}

type policy struct {
	scope func(actorID uint) Scope
	write map[Resource][]Action
}

func everything(uint) Scope { return Scope{all: true} }

func ownedBy(owner Owner) func(uint) Scope {
	return func(actorID uint) Scope { return Scope{owner: owner, actorID: actorID} }
}

// policies is the complete role table. Any role missing here is denied
// everything.
var policies = map[model.Role]policy{
	model.RoleManager: {
		scope: everything,
		write: map[Resource][]Action{
			ResourceMachine:     {ActionCreate, ActionUpdate, ActionDelete},
			ResourceMaintenance: {ActionCreate, ActionUpdate, ActionDelete},
			ResourceComplaint:   {ActionCreate, ActionUpdate, ActionDelete},
		},
	},
	// Service companies may file maintenances and complaints for any machine,
	// not only the ones they service.
	model.RoleServiceCompany: {
		scope: ownedBy(OwnerServiceCompany),
		write: map[Resource][]Action{
			ResourceMaintenance: {ActionCreate, ActionUpdate},
			ResourceComplaint:   {ActionCreate, ActionUpdate},
		},
	},
	model.RoleClient: {
		scope: ownedBy(OwnerClient),
	},
}

// ScopeFor returns the read scope of an actor. A nil actor or an unknown role
// yields the empty scope. The scope does not depend on the resource: every
// scoped resource is narrowed through the machine it belongs to.
func ScopeFor(actor *model.User) Scope {
	if actor == nil {
		return Scope{}
	}
	p, ok := policies[actor.Role]
	if !ok {
		return Scope{}
	}
	return p.scope(actor.ID)
}

// Can reports whether actor may perform action on resource.
func Can(actor *model.User, resource Resource, action Action) bool {
	if actor == nil {
		return false
	}
	p, ok := policies[actor.Role]
	if !ok {
		return false
	}
	for _, allowed := range p.write[resource] {
		if allowed == action {
			return true
		}
	}
	return false
}
