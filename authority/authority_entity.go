package authority

import (
	"github.com/fundwit/go-commons/types"
)

// Action is a named capability checked against a route's logical verb,
// scoped to one entity table.
type Action struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	ActionName string   `json:"actionName" gorm:"unique_index:uni_action_entity" binding:"required"`
	EntityName string   `json:"entityName" gorm:"unique_index:uni_action_entity" binding:"required"`
}

func (a *Action) TableName() string {
	return "actions"
}

type Role struct {
	ID                 types.ID `json:"id" gorm:"primary_key"`
	Name               string   `json:"name" gorm:"unique_index:uni_role_name" binding:"required"`
	Description        string   `json:"description"`
	IsRegistrationRole bool     `json:"isRegistrationRole"`
}

func (r *Role) TableName() string {
	return "roles"
}

// Property describes how a grant behaves, decoupled from which action it grants.
type Property struct {
	ID      types.ID `json:"id" gorm:"primary_key"`
	IsOwner bool     `json:"isOwner"`
}

func (p *Property) TableName() string {
	return "properties"
}

type RoleActionBinding struct {
	ID         types.ID `json:"id" gorm:"primary_key"`
	RoleID     types.ID `json:"roleId" gorm:"unique_index:uni_role_action"`
	ActionID   types.ID `json:"actionId" gorm:"unique_index:uni_role_action"`
	PropertyID types.ID `json:"propertyId"`

	// comma separated column names hidden from non-owners
	ExcludedFields string `json:"excludedFields"`
}

func (b *RoleActionBinding) TableName() string {
	return "role_action"
}

type UserRoleBinding struct {
	ID     types.ID `json:"id" gorm:"primary_key"`
	UserID types.ID `json:"userId" gorm:"unique_index:uni_user_role"`
	RoleID types.ID `json:"roleId" gorm:"unique_index:uni_user_role"`
}

func (b *UserRoleBinding) TableName() string {
	return "user_role"
}

// Grant is one resolved (action, behavior) tuple reachable through a user's roles.
type Grant struct {
	ActionName     string `json:"actionName"`
	EntityName     string `json:"entityName"`
	IsOwner        bool   `json:"isOwner"`
	ExcludedFields string `json:"excludedFields"`
}

// GrantDecision is the outcome of resolving one action for one principal.
type GrantDecision struct {
	Allowed         bool
	OwnershipScoped bool
	ExcludedFields  []string
}
