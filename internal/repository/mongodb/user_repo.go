package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seminarrsvp/internal/domain"
)

type userDocument struct {
	ID                 primitive.ObjectID `bson:"_id"`
	Email              string             `bson:"email"`
	Name               string             `bson:"name"`
	Role               string             `bson:"role"`
	PhoneNumber        string             `bson:"phoneNumber,omitempty"`
	PasswordHash       string             `bson:"password"`
	Salt               string             `bson:"salt"`
	RegisteredSeminars []string           `bson:"registeredSeminars"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toDomain() *domain.User {
	return &domain.User{
		ID:                 d.ID.Hex(),
		Email:              d.Email,
		Name:               d.Name,
		Role:               domain.Role(d.Role),
		PhoneNumber:        d.PhoneNumber,
		PasswordHash:       d.PasswordHash,
		Salt:               d.Salt,
		RegisteredSeminars: nonNil(d.RegisteredSeminars),
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

type userRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) domain.UserRepository {
	return &userRepository{coll: db.Collection(usersCollection)}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	doc := userDocument{
		ID:                 primitive.NewObjectID(),
		Email:              u.Email,
		Name:               u.Name,
		Role:               string(u.Role),
		PhoneNumber:        u.PhoneNumber,
		PasswordHash:       u.PasswordHash,
		Salt:               u.Salt,
		RegisteredSeminars: nonNil(u.RegisteredSeminars),
		CreatedAt:          u.CreatedAt,
		UpdatedAt:          u.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEmail
		}
		return err
	}
	u.ID = doc.ID.Hex()
	u.RegisteredSeminars = doc.RegisteredSeminars
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *userRepository) List(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	filter := bson.D{}
	if role != "" {
		filter = append(filter, bson.E{Key: "role", Value: string(role)})
	}
	return r.find(ctx, filter, bson.D{{Key: "createdAt", Value: 1}})
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*domain.User{}, nil
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}}, bson.D{{Key: "name", Value: 1}})
}

func (r *userRepository) ListByEmails(ctx context.Context, emails []string, role domain.Role) ([]*domain.User, error) {
	if len(emails) == 0 {
		return []*domain.User{}, nil
	}
	filter := bson.D{
		{Key: "email", Value: bson.D{{Key: "$in", Value: emails}}},
		{Key: "role", Value: string(role)},
	}
	return r.find(ctx, filter, bson.D{{Key: "email", Value: 1}})
}

func (r *userRepository) find(ctx context.Context, filter, sort bson.D) ([]*domain.User, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(sort))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(docs))
	for i := range docs {
		users = append(users, docs[i].toDomain())
	}
	return users, nil
}

// AddRegisteredSeminar is idempotent.
func (r *userRepository) AddRegisteredSeminar(ctx context.Context, userID, seminarID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{
			{Key: "$addToSet", Value: bson.D{{Key: "registeredSeminars", Value: seminarID}}},
			{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) RemoveRegisteredSeminar(ctx context.Context, seminarID string) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.D{{Key: "registeredSeminars", Value: seminarID}},
		bson.D{{Key: "$pull", Value: bson.D{{Key: "registeredSeminars", Value: seminarID}}}},
	)
	return err
}
