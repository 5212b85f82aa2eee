package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/baechuer/bridge-auth/internal/application/auth"
	"github.com/baechuer/bridge-auth/internal/domain"
)

const (
	UsersCollection          = "users"
	PasswordResetsCollection = "password_resets"
)

// Connect dials uri and pings the primary before returning.
func Connect(ctx context.Context, uri string) (*mongodriver.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// Store is the MongoDB credential store: one document per user in "users",
// append-only entries in "password_resets".
type Store struct {
	db     *mongodriver.Database
	users  *mongodriver.Collection
	resets *mongodriver.Collection
	now    func() time.Time
}

var (
	_ auth.UserStore = (*Store)(nil)
	_ auth.ResetLog  = (*Store)(nil)
)

func NewStore(db *mongodriver.Database) *Store {
	return &Store{
		db:     db,
		users:  db.Collection(UsersCollection),
		resets: db.Collection(PasswordResetsCollection),
		now:    time.Now,
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

// EnsureIndexes creates the lookup indexes for email and phone.
// They are not unique: the identity provider owns uniqueness.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}},
		{Keys: bson.D{{Key: "phone", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("mongo ensure indexes: %w", err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, u domain.User) error {
	if _, err := s.users.InsertOne(ctx, toUserDoc(u)); err != nil {
		return domain.ErrDBUnavailable(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

func (s *Store) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (s *Store) FindByPhone(ctx context.Context, phone string) (domain.User, error) {
	return s.findOne(ctx, bson.D{{Key: "phone", Value: phone}})
}

func (s *Store) findOne(ctx context.Context, filter bson.D) (domain.User, error) {
	var d userDoc
	err := s.users.FindOne(ctx, filter).Decode(&d)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return domain.User{}, domain.ErrUserNotFound()
		}
		return domain.User{}, domain.ErrDBUnavailable(fmt.Errorf("find user: %w", err))
	}
	return d.toDomain(), nil
}

func (s *Store) MarkVerified(ctx context.Context, userID string, ch domain.Channel) error {
	update := bson.D{
		{Key: "$set", Value: bson.D{{Key: verifiedField(ch), Value: true}}},
		{Key: "$unset", Value: bson.D{{Key: codeField(ch), Value: ""}}},
	}
	return s.updateOne(ctx, userID, update)
}

func (s *Store) UpdatePassword(ctx context.Context, userID, password string) error {
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "password", Value: password}}}}
	return s.updateOne(ctx, userID, update)
}

func (s *Store) updateOne(ctx context.Context, userID string, update bson.D) error {
	res, err := s.users.UpdateOne(ctx, bson.D{{Key: "_id", Value: userID}}, update)
	if err != nil {
		return domain.ErrDBUnavailable(fmt.Errorf("update user: %w", err))
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound()
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.User, error) {
	cur, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, domain.ErrDBUnavailable(fmt.Errorf("list users: %w", err))
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domain.ErrDBUnavailable(fmt.Errorf("list users: %w", err))
	}

	out := make([]domain.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

// Append implements auth.ResetLog; the timestamp is assigned here.
func (s *Store) Append(ctx context.Context, r domain.PasswordReset) error {
	doc := resetDoc{Email: r.Email, Link: r.Link, Timestamp: s.now().UTC()}
	if _, err := s.resets.InsertOne(ctx, doc); err != nil {
		return domain.ErrDBUnavailable(fmt.Errorf("insert password reset: %w", err))
	}
	return nil
}
