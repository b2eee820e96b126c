package crud

import (
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/stretchr/testify/assert"
)

func TestMergeAttributes(t *testing.T) {
	primary := map[string]interface{}{"id": int64(1), "user_id": int64(10), "year": int64(2015)}
	translation := map[string]interface{}{
		"id": int64(101), "post_id": int64(1), "language_id": int64(1),
		"title": "hello", "year": int64(9999),
	}

	merged := mergeAttributes(primary, translation, []string{"id", "language_id", "post_id"})

	assert.Equal(t, Record{
		"id": int64(1), "user_id": int64(10), "year": int64(2015), "title": "hello",
	}, merged)
}

func TestOwnerIDOf(t *testing.T) {
	assert.Equal(t, types.ID(10), ownerIDOf(Record{"user_id": int64(10)}, "user_id"))
	assert.Equal(t, types.ID(10), ownerIDOf(Record{"user_id": uint64(10)}, "user_id"))
	assert.Equal(t, types.ID(10), ownerIDOf(Record{"user_id": "10"}, "user_id"))

	assert.Equal(t, types.ID(0), ownerIDOf(Record{}, "user_id"))
	assert.Equal(t, types.ID(0), ownerIDOf(Record{"user_id": nil}, "user_id"))
	assert.Equal(t, types.ID(0), ownerIDOf(Record{"user_id": "abc"}, "user_id"))
	assert.Equal(t, types.ID(0), ownerIDOf(Record{"user_id": 3.14}, "user_id"))
}

func TestWithoutOrdering(t *testing.T) {
	raw := map[string]string{"order_by_field": "year:desc", "year": "2015"}
	assert.Equal(t, map[string]string{"year": "2015"}, withoutOrdering(raw))
	// the original mapping is left alone
	assert.Equal(t, "year:desc", raw["order_by_field"])

	unordered := map[string]string{"year": "2015"}
	assert.Equal(t, unordered, withoutOrdering(unordered))
}
