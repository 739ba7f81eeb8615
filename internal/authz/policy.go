// Package authz decides whether a caller may perform an operation on a
// resource. Evaluate is pure: it reads only its arguments.
package authz

import (
	"github.com/google/uuid"
	"github.com/phrazzld/taskboard-api/internal/domain"
)

// Operation names a protected action.
type Operation string

const (
	OpUserList        Operation = "user.list"
	OpUserGet         Operation = "user.get"
	OpUserUpdate      Operation = "user.update"
	OpUserDelete      Operation = "user.delete"
	OpUserUpdateRoles Operation = "user.update_roles"

	OpTaskCreate Operation = "task.create"
	OpTaskGet    Operation = "task.get"
	OpTaskList   Operation = "task.list"
	OpTaskUpdate Operation = "task.update"
	OpTaskDelete Operation = "task.delete"

	OpCommentCreate Operation = "comment.create"
	OpCommentGet    Operation = "comment.get"
	OpCommentList   Operation = "comment.list"
	OpCommentDelete Operation = "comment.delete"
)

// Denial reasons surfaced to clients.
const (
	ReasonRoleRequired     = "Access denied"
	ReasonNotOwner         = "Only the owner or an administrator may do this"
	ReasonUnassignedTask   = "Cannot delete task without an assigned user."
	ReasonBaseRoleAssignee = "ROLE_USER are not allowed to modify."
	ReasonBaseRoleTarget   = "ROLE_USER are not allowed to delete."
)

// Resource describes the target of an operation. Owner is the author of a
// comment, the assignee of a task, or the user record itself.
type Resource struct {
	// Known is false when the target has not been loaded yet; only role
	// gates are evaluated then.
	Known      bool
	OwnerID    uuid.UUID
	OwnerRoles domain.Roles
}

// NoResource evaluates role gates only.
var NoResource = Resource{}

// Owned describes a loaded resource owned by ownerID.
func Owned(ownerID uuid.UUID, ownerRoles domain.Roles) Resource {
	return Resource{Known: true, OwnerID: ownerID, OwnerRoles: ownerRoles}
}

type rule struct {
	// roles the caller needs one of; empty means any authenticated caller.
	roles []domain.Role
	// resource is applied once the target is Known.
	resource func(id Identity, res Resource) Decision
}

var (
	anyMember = []domain.Role{domain.RoleUser, domain.RoleAdmin}
	adminOnly = []domain.Role{domain.RoleAdmin}
)

var rules = map[Operation]rule{
	OpUserList:        {},
	OpUserGet:         {},
	OpUserUpdate:      {resource: ownerOrElevated},
	OpUserDelete:      {roles: adminOnly, resource: targetNotBaseOnly},
	OpUserUpdateRoles: {roles: adminOnly},

	OpTaskCreate: {roles: anyMember},
	OpTaskGet:    {roles: anyMember},
	OpTaskList:   {roles: adminOnly},
	OpTaskUpdate: {roles: anyMember},
	OpTaskDelete: {roles: adminOnly, resource: assigneeNotBaseOnly},

	OpCommentCreate: {},
	OpCommentGet:    {},
	OpCommentList:   {},
	OpCommentDelete: {resource: ownerOrElevated},
}

// Evaluate decides whether id may perform op on res. Operations without a
// rule are denied.
func Evaluate(id Identity, op Operation, res Resource) Decision {
	if !id.Authenticated() {
		return Decision{Effect: Unauthenticated, Reason: ErrUnauthenticated.Error()}
	}

	r, ok := rules[op]
	if !ok {
		return deny(ReasonRoleRequired)
	}

	if len(r.roles) > 0 && !id.Roles.HasAny(r.roles...) {
		return deny(ReasonRoleRequired)
	}

	if r.resource != nil && res.Known {
		return r.resource(id, res)
	}

	return allow()
}

// Check is Evaluate followed by Decision.Err.
func Check(id Identity, op Operation, res Resource) error {
	return Evaluate(id, op, res).Err()
}

func ownerOrElevated(id Identity, res Resource) Decision {
	if id.IsElevated() {
		return allow()
	}
	if res.OwnerID != uuid.Nil && id.UserID == res.OwnerID {
		return allow()
	}
	return deny(ReasonNotOwner)
}

func targetNotBaseOnly(_ Identity, res Resource) Decision {
	if res.OwnerRoles.BaseOnly() {
		return deny(ReasonBaseRoleTarget)
	}
	return allow()
}

func assigneeNotBaseOnly(_ Identity, res Resource) Decision {
	if res.OwnerID == uuid.Nil {
		return deny(ReasonUnassignedTask)
	}
	if res.OwnerRoles.BaseOnly() {
		return deny(ReasonBaseRoleAssignee)
	}
	return allow()
}
