package crud

import (
	"crudcore/authority"
	"crudcore/bizerror"
	"crudcore/common"
	"crudcore/idgen"
	"crudcore/metadata"
	"crudcore/persistence"
	"crudcore/query"
	"crudcore/querylang"
	"crudcore/session"
	"strconv"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	recordIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	IndexRecordsFunc  = IndexRecords
	DetailRecordFunc  = DetailRecord
	CreateRecordFunc  = CreateRecord
	UpdateRecordFunc  = UpdateRecord
	DeleteRecordFunc  = DeleteRecord
	ResolveActionFunc = authority.ResolveAction
)

// IndexRecords lists records visible to the session's principal. The result
// shape follows the raw parameters: a count, a paged envelope, or a plain
// list.
func IndexRecords(desc query.Descriptor, raw map[string]string, langID types.ID, s *session.Session) (interface{}, error) {
	decision, err := ResolveActionFunc(s, desc.TableName, authority.ActionIndex)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	if raw[querylang.ParamCount] != "" {
		var total int
		if err := query.CompileList(db, desc, withoutOrdering(raw), langID, s.Identity.ID, decision).Count(&total).Error; err != nil {
			return nil, err
		}
		return total, nil
	}

	if pageSizeRaw := raw[querylang.ParamPaginate]; pageSizeRaw != "" {
		if pageSize, err := strconv.Atoi(pageSizeRaw); err == nil && pageSize > 0 {
			return paginateRecords(db, desc, raw, langID, s, decision, pageSize)
		}
	}

	q := query.CompileList(db, desc, withEagerForeignKeys(db, desc, raw), langID, s.Identity.ID, decision)
	records, err := scanRecords(q)
	if err != nil {
		return nil, err
	}
	if err := attachEagerLoads(db, records, query.CompileEagerLoads(db, desc, raw[querylang.ParamWith])); err != nil {
		return nil, err
	}
	return records, nil
}

func paginateRecords(db *gorm.DB, desc query.Descriptor, raw map[string]string, langID types.ID,
	s *session.Session, decision authority.GrantDecision, pageSize int) (*common.PageBody, error) {

	page := 1
	if pageRaw := raw[querylang.ParamPage]; pageRaw != "" {
		if n, err := strconv.Atoi(pageRaw); err == nil && n > 0 {
			page = n
		}
	}

	// explicit bounds do not interfere with page math
	bounded := map[string]string{}
	for name, value := range raw {
		if name == querylang.ParamLimit || name == querylang.ParamOffset {
			continue
		}
		bounded[name] = value
	}

	var total int
	if err := query.CompileList(db, desc, withoutOrdering(bounded), langID, s.Identity.ID, decision).Count(&total).Error; err != nil {
		return nil, err
	}

	q := query.CompileList(db, desc, withEagerForeignKeys(db, desc, bounded), langID, s.Identity.ID, decision).
		Limit(pageSize).Offset((page - 1) * pageSize)
	records, err := scanRecords(q)
	if err != nil {
		return nil, err
	}
	if err := attachEagerLoads(db, records, query.CompileEagerLoads(db, desc, bounded[querylang.ParamWith])); err != nil {
		return nil, err
	}

	return &common.PageBody{Data: records, Total: total, Page: page, PageSize: pageSize}, nil
}

// DetailRecord returns one merged record by id.
func DetailRecord(desc query.Descriptor, raw map[string]string, entityID types.ID, langID types.ID, s *session.Session) (Record, error) {
	decision, err := ResolveActionFunc(s, desc.TableName, authority.ActionShow)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	q := query.CompileOne(db, desc, withEagerForeignKeys(db, desc, raw), entityID, langID, s.Identity.ID, decision)
	records, err := scanRecords(q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		common.Log.Warnf("cannot show %s %s: not found", desc.TableName, entityID)
		return nil, bizerror.ErrNotFound
	}
	if err := attachEagerLoads(db, records, query.CompileEagerLoads(db, desc, raw[querylang.ParamWith])); err != nil {
		return nil, err
	}
	return records[0], nil
}

// CreateRecord stamps the owner key with the acting principal, inserts the
// primary row and, for translatable entities, a paired translation row from
// the same payload, and returns the merged attributes.
func CreateRecord(desc query.Descriptor, payload map[string]interface{}, langID types.ID, s *session.Session) (Record, error) {
	decision, err := ResolveActionFunc(s, desc.TableName, authority.ActionStore)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, bizerror.ErrForbidden
	}

	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	row := filterPayload(db, desc.TableName, payload)
	delete(row, "id")
	entityID := idgen.NextID(recordIdWorker)
	row["id"] = uint64(entityID)
	if metadata.HasColumn(db, desc.TableName, desc.OwnerColumn()) {
		row[desc.OwnerColumn()] = uint64(s.Identity.ID)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := insertRow(tx, desc.TableName, row); err != nil {
			return err
		}
		if desc.Translatable {
			if err := insertTranslationRow(tx, desc, entityID, langID, payload); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		common.Log.Errorf("record creation failed for %s: %v", desc.TableName, err)
		return nil, bizerror.ConflictOf(err)
	}

	return loadMergedRecord(db, desc, entityID, langID)
}

// UpdateRecord applies changes to the primary row and upserts the paired
// translation row keyed by (entity id, language id).
func UpdateRecord(desc query.Descriptor, entityID types.ID, payload map[string]interface{}, langID types.ID, s *session.Session) (Record, error) {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	existing, err := loadPrimaryRow(db, desc, entityID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		common.Log.Warnf("cannot update %s %s: not found", desc.TableName, entityID)
		return nil, bizerror.ErrNotFound
	}

	if err := checkMutationPermission(desc, authority.ActionUpdate, existing, s); err != nil {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		changes := filterPayload(tx, desc.TableName, payload)
		delete(changes, "id")
		delete(changes, desc.OwnerColumn())
		if len(changes) > 0 {
			if err := tx.Table(desc.TableName).Where("id = ?", entityID).Updates(changes).Error; err != nil {
				return err
			}
		}
		if desc.Translatable {
			return upsertTranslationRow(tx, desc, entityID, langID, payload)
		}
		return nil
	})
	if err != nil {
		common.Log.Errorf("record update failed for %s %s: %v", desc.TableName, entityID, err)
		return nil, bizerror.ConflictOf(err)
	}

	return loadMergedRecord(db, desc, entityID, langID)
}

// DeleteRecord removes the row after the permission and ownership checks.
// Translation rows go with it inside the same transaction.
func DeleteRecord(desc query.Descriptor, entityID types.ID, s *session.Session) error {
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)

	existing, err := loadPrimaryRow(db, desc, entityID)
	if err != nil {
		return err
	}
	if existing == nil {
		common.Log.Warnf("cannot delete %s %s: not found", desc.TableName, entityID)
		return bizerror.ErrNotFound
	}

	if err := checkMutationPermission(desc, authority.ActionDestroy, existing, s); err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if desc.Translatable {
			if err := tx.Exec("DELETE FROM "+desc.TranslationTableName()+
				" WHERE "+desc.TranslationForeignKey()+" = ?", entityID).Error; err != nil {
				return err
			}
		}
		return tx.Exec("DELETE FROM "+desc.TableName+" WHERE id = ?", entityID).Error
	})
	if err != nil {
		common.Log.Errorf("record deletion failed for %s %s: %v", desc.TableName, entityID, err)
		return bizerror.ConflictOf(err)
	}
	return nil
}

func checkMutationPermission(desc query.Descriptor, actionName string, existing Record, s *session.Session) error {
	decision, err := ResolveActionFunc(s, desc.TableName, actionName)
	if err != nil {
		return err
	}
	if !decision.Allowed {
		common.Log.Warnf("cannot %s %s: no grant for user %s", actionName, desc.TableName, s.Identity.ID)
		return bizerror.ErrForbidden
	}
	if decision.OwnershipScoped {
		if !authority.CheckRowOwnership(s, ownerIDOf(existing, desc.OwnerColumn())) {
			common.Log.Warnf("cannot %s %s: ownership check failed for user %s", actionName, desc.TableName, s.Identity.ID)
			return bizerror.ErrForbidden
		}
	}
	return nil
}

func ownerIDOf(record Record, ownerColumn string) types.ID {
	value, found := record[ownerColumn]
	if !found || value == nil {
		return types.ID(0)
	}
	switch v := value.(type) {
	case int64:
		return types.ID(v)
	case uint64:
		return types.ID(v)
	case string:
		id, err := types.ParseID(v)
		if err != nil {
			return types.ID(0)
		}
		return id
	default:
		return types.ID(0)
	}
}

func loadPrimaryRow(db *gorm.DB, desc query.Descriptor, entityID types.ID) (Record, error) {
	records, err := scanRecords(db.Table(desc.TableName).Where("id = ?", entityID))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func loadTranslationRow(db *gorm.DB, desc query.Descriptor, entityID types.ID, langID types.ID) (Record, error) {
	records, err := scanRecords(db.Table(desc.TranslationTableName()).
		Where(desc.TranslationForeignKey()+" = ? AND language_id = ?", entityID, langID))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func loadMergedRecord(db *gorm.DB, desc query.Descriptor, entityID types.ID, langID types.ID) (Record, error) {
	primary, err := loadPrimaryRow(db, desc, entityID)
	if err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, bizerror.ErrNotFound
	}
	if !desc.Translatable {
		return primary, nil
	}

	translation, err := loadTranslationRow(db, desc, entityID, langID)
	if err != nil {
		return nil, err
	}
	if translation == nil {
		return primary, nil
	}
	return mergeAttributes(primary, translation, desc.ProtectedTranslationKeys()), nil
}

func insertTranslationRow(tx *gorm.DB, desc query.Descriptor, entityID types.ID, langID types.ID, payload map[string]interface{}) error {
	row := filterPayload(tx, desc.TranslationTableName(), payload)
	delete(row, "id")
	row["id"] = uint64(idgen.NextID(recordIdWorker))
	row[desc.TranslationForeignKey()] = uint64(entityID)
	row["language_id"] = uint64(langID)
	return insertRow(tx, desc.TranslationTableName(), row)
}

func upsertTranslationRow(tx *gorm.DB, desc query.Descriptor, entityID types.ID, langID types.ID, payload map[string]interface{}) error {
	existing, err := loadTranslationRow(tx, desc, entityID, langID)
	if err != nil {
		return err
	}
	if existing == nil {
		return insertTranslationRow(tx, desc, entityID, langID, payload)
	}

	changes := filterPayload(tx, desc.TranslationTableName(), payload)
	delete(changes, "id")
	delete(changes, desc.TranslationForeignKey())
	delete(changes, "language_id")
	if len(changes) == 0 {
		return nil
	}
	return tx.Table(desc.TranslationTableName()).
		Where(desc.TranslationForeignKey()+" = ? AND language_id = ?", entityID, langID).
		Updates(changes).Error
}

// count queries never order
func withoutOrdering(raw map[string]string) map[string]string {
	if raw[querylang.ParamOrderByField] == "" {
		return raw
	}
	unordered := map[string]string{}
	for name, value := range raw {
		if name == querylang.ParamOrderByField {
			continue
		}
		unordered[name] = value
	}
	return unordered
}

// withEagerForeignKeys widens an explicit selected_fields list with the
// foreign keys the requested eager loads attach by, so the attach step can
// find them on the scanned rows.
func withEagerForeignKeys(db *gorm.DB, desc query.Descriptor, raw map[string]string) map[string]string {
	selected := raw[querylang.ParamSelectedFields]
	withParam := raw[querylang.ParamWith]
	if selected == "" || withParam == "" {
		return raw
	}

	widened := map[string]string{}
	for name, value := range raw {
		widened[name] = value
	}
	for _, load := range query.CompileEagerLoads(db, desc, withParam) {
		selected += "," + load.Relation.ForeignKey
	}
	widened[querylang.ParamSelectedFields] = selected
	return widened
}
