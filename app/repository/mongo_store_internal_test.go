package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

func duplicateKeyError(index string) error {
	return mongo.WriteException{
		WriteErrors: []mongo.WriteError{{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: mood_tracker.users index: " + index + " dup key: { : \"alice\" }",
		}},
	}
}

func TestTranslateMongoErrorMapsUniqueIndexes(t *testing.T) {
	tests := map[string]string{
		"uq_users_username":        FieldUsername,
		"uq_users_canonical_email": FieldEmail,
		"_id_":                     "id",
	}

	for index, field := range tests {
		err := translateMongoError(duplicateKeyError(index))
		got, ok := IsDuplicate(err)
		assert.True(t, ok, "index %s", index)
		assert.Equal(t, field, got, "index %s", index)
	}
}

func TestTranslateMongoErrorPassesThroughOtherErrors(t *testing.T) {
	assert.NoError(t, translateMongoError(nil))

	writeConflict := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 112, Message: "WriteConflict"}}}
	err := translateMongoError(writeConflict)
	_, ok := IsDuplicate(err)
	assert.False(t, ok)

	plain := errors.New("connection reset")
	assert.Same(t, plain, translateMongoError(plain))
}

func TestUserUpdateDocOnlySetsProvidedFields(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	theme := "dark"

	doc := userUpdateDoc(entity.UserUpdate{Theme: &theme, UpdatedAt: now})

	assert.Equal(t, bson.D{{Key: "$set", Value: bson.D{
		{Key: "updated_at", Value: now},
		{Key: "theme", Value: "dark"},
	}}}, doc)
}

func TestMoodListQueryScopesToOwner(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "owner_id", Value: "user-1"}}, moodListQuery("user-1", entity.MoodFilter{}))

	query := moodListQuery("user-1", entity.MoodFilter{Color: "blue", From: "2026-03-01", To: "2026-03-31", Limit: 5})
	assert.Equal(t, bson.D{
		{Key: "owner_id", Value: "user-1"},
		{Key: "color", Value: "blue"},
		{Key: "date", Value: bson.D{{Key: "$gte", Value: "2026-03-01"}, {Key: "$lte", Value: "2026-03-31"}}},
	}, query)
}

func TestOwnedFilterCarriesOwner(t *testing.T) {
	assert.Equal(t, bson.D{{Key: "_id", Value: "mood-1"}, {Key: "owner_id", Value: "user-1"}}, ownedFilter("user-1", "mood-1"))
}
