package authority

import (
	"crudcore/persistence"
	"crudcore/session"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/patrickmn/go-cache"
)

const (
	ActionIndex   = "index"
	ActionShow    = "show"
	ActionStore   = "store"
	ActionUpdate  = "update"
	ActionDestroy = "destroy"
)

var ActionNames = []string{ActionIndex, ActionShow, ActionStore, ActionUpdate, ActionDestroy}

const GrantCacheTTL = 24 * time.Hour

var grantCache = cache.New(GrantCacheTTL, 10*time.Minute)

var (
	LoadUserGrantsFunc = loadUserGrants
	UserGrantsFunc     = UserGrants
)

// UserGrants returns the cached grant set of a user, loading it on the first
// request after expiry. Concurrent recomputation on expiry is tolerated.
func UserGrants(uid types.ID) ([]Grant, error) {
	if value, found := grantCache.Get(uid.String()); found {
		if grants, ok := value.([]Grant); ok {
			return grants, nil
		}
	}

	grants, err := LoadUserGrantsFunc(uid)
	if err != nil {
		return nil, err
	}
	grantCache.Set(uid.String(), grants, cache.DefaultExpiration)
	return grants, nil
}

func InvalidateUserGrants(uid types.ID) {
	grantCache.Delete(uid.String())
}

func FlushGrantCache() {
	grantCache.Flush()
}

// loadUserGrants is a single joined read across
// user_role -> roles -> role_action -> properties -> actions.
func loadUserGrants(uid types.ID) ([]Grant, error) {
	db := persistence.ActiveDataSourceManager.GormDB(nil)

	grants := []Grant{}
	err := db.Model(&Action{}).
		Select("actions.action_name, actions.entity_name, properties.is_owner, role_action.excluded_fields").
		Joins("INNER JOIN role_action ON role_action.action_id = actions.id").
		Joins("LEFT JOIN properties ON properties.id = role_action.property_id").
		Joins("INNER JOIN roles ON roles.id = role_action.role_id").
		Joins("INNER JOIN user_role ON user_role.role_id = roles.id").
		Where("user_role.user_id = ?", uid).
		Scan(&grants).Error
	if err != nil {
		return nil, err
	}
	return grants, nil
}

// ResolveAction decides whether the session's principal may perform the named
// action against the named entity table. When every matching grant carries
// is_owner, the decision is ownership scoped; a single unrestricted grant
// makes access unrestricted.
func ResolveAction(sess *session.Session, entityName, actionName string) (GrantDecision, error) {
	if !sess.Authenticated() {
		return GrantDecision{}, nil
	}

	grants, err := UserGrantsFunc(sess.Identity.ID)
	if err != nil {
		return GrantDecision{}, err
	}

	matched := false
	ownerOnly := true
	excluded := []string{}
	for _, g := range grants {
		if g.ActionName != actionName || g.EntityName != entityName {
			continue
		}
		matched = true
		if !g.IsOwner {
			ownerOnly = false
		}
		for _, field := range strings.Split(g.ExcludedFields, ",") {
			if field = strings.TrimSpace(field); field != "" {
				excluded = append(excluded, field)
			}
		}
	}

	if !matched {
		return GrantDecision{}, nil
	}
	return GrantDecision{Allowed: true, OwnershipScoped: ownerOnly, ExcludedFields: excluded}, nil
}

// CheckRowOwnership compares the authenticated principal against a row's
// owner key value. Zero ownerID means the row does not exist yet, which
// trivially passes (the create path stamps ownership afterwards).
func CheckRowOwnership(sess *session.Session, ownerID types.ID) bool {
	if ownerID.IsZero() {
		return true
	}
	return sess.Authenticated() && sess.Identity.ID == ownerID
}
