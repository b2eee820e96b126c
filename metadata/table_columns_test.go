package metadata

import (
	"crudcore/testinfra"
	"errors"
	"testing"

	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func TestColumns(t *testing.T) {
	RegisterTestingT(t)
	testDatabase := testinfra.StartMysqlTestDatabase("crudcore")
	defer testinfra.StopMysqlTestDatabase(testDatabase)
	db := testDatabase.DS.GormDB(nil)

	Expect(db.Exec("CREATE TABLE demo_entities (id BIGINT UNSIGNED PRIMARY KEY, user_id BIGINT UNSIGNED, year INT)").
		Error).To(BeNil())

	t.Run("should introspect the live schema", func(t *testing.T) {
		Flush()

		columns, err := Columns(db, "demo_entities")
		Expect(err).To(BeNil())
		Expect(columns).To(Equal(map[string]bool{"id": true, "user_id": true, "year": true}))
	})

	t.Run("should report an empty set for unknown tables", func(t *testing.T) {
		Flush()

		columns, err := Columns(db, "no_such_table")
		Expect(err).To(BeNil())
		Expect(columns).To(BeEmpty())
	})

	t.Run("should serve from cache until flushed", func(t *testing.T) {
		Flush()
		Expect(HasColumn(db, "demo_entities", "year")).To(BeTrue())

		loads := 0
		LoadTableColumnsFunc = func(db *gorm.DB, tableName string) (map[string]bool, error) {
			loads++
			return map[string]bool{"other": true}, nil
		}
		defer func() { LoadTableColumnsFunc = loadTableColumns }()

		Expect(HasColumn(db, "demo_entities", "year")).To(BeTrue())
		Expect(loads).To(Equal(0))

		Flush()
		Expect(HasColumn(db, "demo_entities", "year")).To(BeFalse())
		Expect(HasColumn(db, "demo_entities", "other")).To(BeTrue())
		Expect(loads).To(BeNumerically(">", 0))
	})

	t.Run("should propagate loader failures", func(t *testing.T) {
		Flush()
		LoadTableColumnsFunc = func(db *gorm.DB, tableName string) (map[string]bool, error) {
			return nil, errors.New("schema unavailable")
		}
		defer func() { LoadTableColumnsFunc = loadTableColumns }()

		_, err := Columns(db, "demo_entities")
		Expect(err).ToNot(BeNil())
		Expect(HasColumn(db, "demo_entities", "year")).To(BeFalse())
	})
}
