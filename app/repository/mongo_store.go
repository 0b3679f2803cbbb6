package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const (
	mongoUsersCollection    = "users"
	mongoMoodsCollection    = "moods"
	mongoSessionsCollection = "sessions"
)

// MongoStore implements UserStore and MoodStore on top of a single MongoDB
// database; Sessions returns the matching SessionStore.
type MongoStore struct {
	users    *mongo.Collection
	moods    *mongo.Collection
	sessions *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users:    db.Collection(mongoUsersCollection),
		moods:    db.Collection(mongoMoodsCollection),
		sessions: db.Collection(mongoSessionsCollection),
	}
}

// EnsureIndexes creates the unique user indexes, the owner listing index and a
// TTL index that lets MongoDB drop expired sessions on its own.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_username"),
		},
		{
			Keys:    bson.D{{Key: "canonical_email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uq_users_canonical_email"),
		},
	})
	if err != nil {
		return err
	}

	_, err = s.moods.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("idx_moods_owner_created"),
	})
	if err != nil {
		return err
	}

	_, err = s.sessions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(0).SetName("ttl_sessions_expires_at"),
	})
	return err
}

func (s *MongoStore) Create(ctx context.Context, user *entity.User) error {
	_, err := s.users.InsertOne(ctx, user)
	return translateMongoError(err)
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.findUser(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *MongoStore) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	return s.findUser(ctx, bson.D{{Key: "username", Value: username}})
}

func (s *MongoStore) FindByCanonicalEmail(ctx context.Context, canonicalEmail string) (*entity.User, error) {
	return s.findUser(ctx, bson.D{{Key: "canonical_email", Value: canonicalEmail}})
}

func (s *MongoStore) UpdateFields(ctx context.Context, id string, update entity.UserUpdate) error {
	result, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: id}}, userUpdateDoc(update))
	if err != nil {
		return translateMongoError(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) MarkVerified(ctx context.Context, id string, at time.Time) (bool, error) {
	filter := bson.D{{Key: "_id", Value: id}, {Key: "verified", Value: false}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "verified", Value: true},
		{Key: "verified_at", Value: at},
		{Key: "updated_at", Value: at},
	}}}

	result, err := s.users.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

func (s *MongoStore) Insert(ctx context.Context, entry *entity.MoodEntry) error {
	_, err := s.moods.InsertOne(ctx, entry)
	return err
}

func (s *MongoStore) FindOwned(ctx context.Context, ownerID, id string) (*entity.MoodEntry, error) {
	entry := &entity.MoodEntry{}
	err := s.moods.FindOne(ctx, ownedFilter(ownerID, id)).Decode(entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *MongoStore) ListOwned(ctx context.Context, ownerID string, filter entity.MoodFilter) ([]*entity.MoodEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := s.moods.Find(ctx, moodListQuery(ownerID, filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]*entity.MoodEntry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *MongoStore) UpdateOwned(ctx context.Context, ownerID string, entry *entity.MoodEntry) (bool, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "date", Value: entry.Date},
		{Key: "time", Value: entry.Time},
		{Key: "color", Value: entry.Color},
		{Key: "trigger", Value: entry.Trigger},
		{Key: "emotion", Value: entry.Emotion},
		{Key: "detail", Value: entry.Detail},
		{Key: "updated_at", Value: entry.UpdatedAt},
	}}}

	result, err := s.moods.UpdateOne(ctx, ownedFilter(ownerID, entry.ID), update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (s *MongoStore) DeleteOwned(ctx context.Context, ownerID, id string) (bool, error) {
	result, err := s.moods.DeleteOne(ctx, ownedFilter(ownerID, id))
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

// Sessions exposes the session half of the store under the SessionStore
// method names, which clash with UserStore.Create.
func (s *MongoStore) Sessions() *MongoSessionStore {
	return &MongoSessionStore{coll: s.sessions}
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.D) (*entity.User, error) {
	user := &entity.User{}
	err := s.users.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

type MongoSessionStore struct {
	coll *mongo.Collection
}

func (s *MongoSessionStore) Create(ctx context.Context, session *entity.Session) error {
	_, err := s.coll.InsertOne(ctx, session)
	return err
}

func (s *MongoSessionStore) Find(ctx context.Context, id string) (*entity.Session, error) {
	session := &entity.Session{}
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

func (s *MongoSessionStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (s *MongoSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := s.coll.DeleteMany(ctx, bson.D{{Key: "expires_at", Value: bson.D{{Key: "$lt", Value: now}}}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// userUpdateDoc sets updated_at plus every non-nil field of update.
func userUpdateDoc(update entity.UserUpdate) bson.D {
	set := bson.D{{Key: "updated_at", Value: update.UpdatedAt}}
	if update.Username != nil {
		set = append(set, bson.E{Key: "username", Value: *update.Username})
	}
	if update.PasswordHash != nil {
		set = append(set, bson.E{Key: "password_hash", Value: *update.PasswordHash})
	}
	if update.Theme != nil {
		set = append(set, bson.E{Key: "theme", Value: *update.Theme})
	}
	if update.PasswordResetAt != nil {
		set = append(set, bson.E{Key: "password_reset_at", Value: *update.PasswordResetAt})
	}
	return bson.D{{Key: "$set", Value: set}}
}

func moodListQuery(ownerID string, filter entity.MoodFilter) bson.D {
	query := bson.D{{Key: "owner_id", Value: ownerID}}
	if filter.Color != "" {
		query = append(query, bson.E{Key: "color", Value: filter.Color})
	}

	dateRange := bson.D{}
	if filter.From != "" {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: filter.From})
	}
	if filter.To != "" {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: filter.To})
	}
	if len(dateRange) > 0 {
		query = append(query, bson.E{Key: "date", Value: dateRange})
	}
	return query
}

func ownedFilter(ownerID, id string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "owner_id", Value: ownerID}}
}

func translateMongoError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "uq_users_username"):
		return &DuplicateError{Field: FieldUsername}
	case strings.Contains(msg, "uq_users_canonical_email"):
		return &DuplicateError{Field: FieldEmail}
	default:
		return &DuplicateError{Field: "id"}
	}
}
