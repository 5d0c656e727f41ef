package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"seminarrsvp/internal/domain"
)

type seminarDocument struct {
	ID                 primitive.ObjectID `bson:"_id"`
	Title              string             `bson:"title"`
	Date               string             `bson:"date"`
	Time               string             `bson:"time"`
	Description        string             `bson:"description"`
	Capacity           int                `bson:"capacity"`
	Price              float64            `bson:"price"`
	AgentID            string             `bson:"agentId"`
	Invitees           []string           `bson:"invitees"`
	Attendees          []string           `bson:"attendees"`
	ConfirmedAttendees []string           `bson:"confirmedAttendees"`
	QRCode             *string            `bson:"qrCode,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt"`
}

func (d *seminarDocument) toDomain() *domain.Seminar {
	return &domain.Seminar{
		ID:                 d.ID.Hex(),
		Title:              d.Title,
		Date:               d.Date,
		Time:               d.Time,
		Description:        d.Description,
		Capacity:           d.Capacity,
		Price:              d.Price,
		AgentID:            d.AgentID,
		Invitees:           nonNil(d.Invitees),
		Attendees:          nonNil(d.Attendees),
		ConfirmedAttendees: nonNil(d.ConfirmedAttendees),
		QRCode:             d.QRCode,
		CreatedAt:          d.CreatedAt,
		UpdatedAt:          d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type seminarRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewSeminarRepository(db *mongo.Database) domain.SeminarRepository {
	return &seminarRepository{
		coll: db.Collection(seminarsCollection),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// seatAvailable matches documents whose attendee count is below capacity.
var seatAvailable = bson.D{{Key: "$lt", Value: bson.A{bson.D{{Key: "$size", Value: "$attendees"}}, "$capacity"}}}

func (r *seminarRepository) Create(ctx context.Context, s *domain.Seminar) error {
	doc := seminarDocument{
		ID:                 primitive.NewObjectID(),
		Title:              s.Title,
		Date:               s.Date,
		Time:               s.Time,
		Description:        s.Description,
		Capacity:           s.Capacity,
		Price:              s.Price,
		AgentID:            s.AgentID,
		Invitees:           nonNil(s.Invitees),
		Attendees:          nonNil(s.Attendees),
		ConfirmedAttendees: nonNil(s.ConfirmedAttendees),
		QRCode:             s.QRCode,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return err
	}
	s.ID = doc.ID.Hex()
	return nil
}

func (r *seminarRepository) GetByID(ctx context.Context, id string) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	var doc seminarDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrSeminarNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *seminarRepository) List(ctx context.Context) ([]*domain.Seminar, error) {
	return r.find(ctx, bson.D{})
}

func (r *seminarRepository) ListByAgent(ctx context.Context, agentID string) ([]*domain.Seminar, error) {
	return r.find(ctx, bson.D{{Key: "agentId", Value: agentID}})
}

func (r *seminarRepository) ListByInvitee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return r.find(ctx, bson.D{{Key: "invitees", Value: userID}})
}

func (r *seminarRepository) ListByAttendee(ctx context.Context, userID string) ([]*domain.Seminar, error) {
	return r.find(ctx, bson.D{{Key: "attendees", Value: userID}})
}

func (r *seminarRepository) find(ctx context.Context, filter bson.D) ([]*domain.Seminar, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}, {Key: "createdAt", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []seminarDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	seminars := make([]*domain.Seminar, 0, len(docs))
	for i := range docs {
		seminars = append(seminars, docs[i].toDomain())
	}
	return seminars, nil
}

func (r *seminarRepository) Update(ctx context.Context, id string, patch domain.SeminarPatch) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	if patch.IsEmpty() {
		return r.GetByID(ctx, id)
	}
	set := bson.D{{Key: "updatedAt", Value: r.now()}}
	if patch.Title != nil {
		set = append(set, bson.E{Key: "title", Value: strings.TrimSpace(*patch.Title)})
	}
	if patch.Date != nil {
		set = append(set, bson.E{Key: "date", Value: strings.TrimSpace(*patch.Date)})
	}
	if patch.Time != nil {
		set = append(set, bson.E{Key: "time", Value: strings.TrimSpace(*patch.Time)})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: strings.TrimSpace(*patch.Description)})
	}
	if patch.Price != nil {
		set = append(set, bson.E{Key: "price", Value: *patch.Price})
	}
	if patch.QRCode != nil && !patch.ClearQRCode {
		set = append(set, bson.E{Key: "qrCode", Value: *patch.QRCode})
	}
	filter := bson.D{{Key: "_id", Value: oid}}
	if patch.Capacity != nil {
		set = append(set, bson.E{Key: "capacity", Value: *patch.Capacity})
		filter = append(filter, bson.E{Key: "$expr", Value: bson.D{
			{Key: "$lte", Value: bson.A{bson.D{{Key: "$size", Value: "$attendees"}}, *patch.Capacity}},
		}})
	}
	update := bson.D{{Key: "$set", Value: set}}
	if patch.ClearQRCode {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "qrCode", Value: ""}}})
	}
	s, err := r.findOneAndUpdate(ctx, filter, update)
	if errors.Is(err, domain.ErrConditionNotMet) && patch.Capacity == nil {
		return nil, domain.ErrSeminarNotFound
	}
	return s, err
}

// AddInvitees unions userIDs into invitees, skipping users who already attend.
func (r *seminarRepository) AddInvitees(ctx context.Context, id string, userIDs []string) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "invitees", Value: bson.D{{Key: "$setUnion", Value: bson.A{
				"$invitees",
				bson.D{{Key: "$setDifference", Value: bson.A{
					bson.D{{Key: "$literal", Value: nonNil(userIDs)}},
					"$attendees",
				}}},
			}}}},
			{Key: "updatedAt", Value: r.now()},
		}}},
	}
	s, err := r.findOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, pipeline)
	if errors.Is(err, domain.ErrConditionNotMet) {
		return nil, domain.ErrSeminarNotFound
	}
	return s, err
}

// AcceptInvitation moves userID from invitees to attendees and confirmed attendees in one
// findAndModify, guarded by invitation, non-membership and remaining capacity.
func (r *seminarRepository) AcceptInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "invitees", Value: userID},
		{Key: "attendees", Value: bson.D{{Key: "$ne", Value: userID}}},
		{Key: "$expr", Value: seatAvailable},
	}
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "attendees", Value: userID}, {Key: "confirmedAttendees", Value: userID}}},
		{Key: "$pull", Value: bson.D{{Key: "invitees", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *seminarRepository) DeclineInvitation(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	filter := bson.D{{Key: "_id", Value: oid}, {Key: "invitees", Value: userID}}
	update := bson.D{
		{Key: "$pull", Value: bson.D{{Key: "invitees", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// Register adds userID to attendees. Seminars with pending invitations only admit invitees.
func (r *seminarRepository) Register(ctx context.Context, id, userID string) (*domain.Seminar, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrSeminarNotFound
	}
	filter := bson.D{
		{Key: "_id", Value: oid},
		{Key: "attendees", Value: bson.D{{Key: "$ne", Value: userID}}},
		{Key: "$expr", Value: seatAvailable},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "invitees", Value: bson.D{{Key: "$size", Value: 0}}}},
			bson.D{{Key: "invitees", Value: userID}},
		}},
	}
	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "attendees", Value: userID}}},
		{Key: "$pull", Value: bson.D{{Key: "invitees", Value: userID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: r.now()}}},
	}
	return r.findOneAndUpdate(ctx, filter, update)
}

// findOneAndUpdate returns the post-update document, or ErrConditionNotMet when filter matched nothing.
func (r *seminarRepository) findOneAndUpdate(ctx context.Context, filter, update any) (*domain.Seminar, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc seminarDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrConditionNotMet
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *seminarRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrSeminarNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrSeminarNotFound
	}
	return nil
}
