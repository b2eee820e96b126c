package authority

import (
	"crudcore/idgen"
	"crudcore/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	idWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateRoleFunc     = CreateRole
	QueryRolesFunc     = QueryRoles
	AssignUserRoleFunc = AssignUserRole
	RevokeUserRoleFunc = RevokeUserRole
)

type RoleCreation struct {
	Name               string `json:"name" binding:"required,lte=255"`
	Description        string `json:"description"`
	IsRegistrationRole bool   `json:"isRegistrationRole"`
}

type RoleGrantCreation struct {
	ActionName     string `json:"actionName" binding:"required"`
	EntityName     string `json:"entityName" binding:"required"`
	IsOwner        bool   `json:"isOwner"`
	ExcludedFields string `json:"excludedFields"`
}

type UserRoleAssignment struct {
	UserID types.ID `json:"userId" binding:"required"`
	RoleID types.ID `json:"roleId" binding:"required"`
}

func CreateRole(c *RoleCreation) (*Role, error) {
	r := Role{ID: idgen.NextID(idWorker), Name: c.Name, Description: c.Description, IsRegistrationRole: c.IsRegistrationRole}
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Create(&r).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

func QueryRoles() ([]Role, error) {
	roles := []Role{}
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

// GrantActionToRole binds an action to a role through a property row
// describing the grant's behavior.
func GrantActionToRole(roleID types.ID, c *RoleGrantCreation) (*RoleActionBinding, error) {
	var binding *RoleActionBinding
	err := persistence.ActiveDataSourceManager.GormDB(nil).Transaction(func(tx *gorm.DB) error {
		action := Action{ActionName: c.ActionName, EntityName: c.EntityName}
		if err := tx.Where(&action).First(&action).Error; err == gorm.ErrRecordNotFound {
			action.ID = idgen.NextID(idWorker)
			if err := tx.Create(&action).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		property := Property{IsOwner: c.IsOwner}
		if err := tx.Where("is_owner = ?", c.IsOwner).First(&property).Error; err == gorm.ErrRecordNotFound {
			property.ID = idgen.NextID(idWorker)
			if err := tx.Create(&property).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		binding = &RoleActionBinding{
			ID: idgen.NextID(idWorker), RoleID: roleID, ActionID: action.ID,
			PropertyID: property.ID, ExcludedFields: c.ExcludedFields,
		}
		return tx.Create(binding).Error
	})
	if err != nil {
		return nil, err
	}

	// role definitions changed under every user holding the role
	FlushGrantCache()
	return binding, nil
}

func AssignUserRole(c *UserRoleAssignment) (*UserRoleBinding, error) {
	binding := UserRoleBinding{ID: idgen.NextID(idWorker), UserID: c.UserID, RoleID: c.RoleID}
	if err := persistence.ActiveDataSourceManager.GormDB(nil).Create(&binding).Error; err != nil {
		return nil, err
	}
	InvalidateUserGrants(c.UserID)
	return &binding, nil
}

func RevokeUserRole(c *UserRoleAssignment) error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)
	if err := db.Delete(UserRoleBinding{}, "user_id = ? AND role_id = ?", c.UserID, c.RoleID).Error; err != nil {
		return err
	}
	InvalidateUserGrants(c.UserID)
	return nil
}

// DefaultAuthorityConfiguration seeds the five verb actions for each given
// entity table and an admin role granted all of them unrestricted.
func DefaultAuthorityConfiguration(entityNames ...string) error {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	adminRole := Role{Name: "admin"}
	if err := db.Where(&adminRole).First(&adminRole).Error; err == gorm.ErrRecordNotFound {
		adminRole.ID = idgen.NextID(idWorker)
		adminRole.Description = "unrestricted access to every registered entity"
		if err := db.Create(&adminRole).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	for _, entityName := range entityNames {
		for _, actionName := range ActionNames {
			var count int
			err := db.Model(&RoleActionBinding{}).
				Joins("INNER JOIN actions ON actions.id = role_action.action_id").
				Where("role_action.role_id = ? AND actions.action_name = ? AND actions.entity_name = ?",
					adminRole.ID, actionName, entityName).
				Count(&count).Error
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			grant := RoleGrantCreation{ActionName: actionName, EntityName: entityName, IsOwner: false}
			if _, err := GrantActionToRole(adminRole.ID, &grant); err != nil {
				return err
			}
		}
	}
	return nil
}
