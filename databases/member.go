package databases

// go generate: mockery --name MemberDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/osiahq/founding-circle-api/models"
)

const memberName = "members"

// MemberDatabase contains the methods to use with the member database
type MemberDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Member, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Member, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, member models.Member, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	EnsureIndexes(ctx context.Context) error
}

type memberDatabase struct {
	db DatabaseHelper
}

// NewMemberDatabase initializes a new instance of member database with the provided db connection
func NewMemberDatabase(db DatabaseHelper) MemberDatabase {
	return &memberDatabase{
		db: db,
	}
}

func (m *memberDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Member, error) {
	member := &models.Member{}
	err := m.db.Collection(memberName).FindOne(ctx, filter, opts...).Decode(&member)
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (m *memberDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Member, error) {
	var members []models.Member
	cur, err := m.db.Collection(memberName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	err = cur.Decode(&members)
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (m *memberDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	count, err := m.db.Collection(memberName).CountDocuments(ctx, filter, opts...)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (m *memberDatabase) InsertOne(ctx context.Context, member models.Member, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return m.db.Collection(memberName).InsertOne(ctx, member, opts...)
}

func (m *memberDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	res, err := m.db.Collection(memberName).UpdateOne(ctx, filter, update, opts...)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (m *memberDatabase) DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	return m.db.Collection(memberName).DeleteOne(ctx, filter, opts...)
}

// EnsureIndexes creates the unique email index. Email uniqueness backs the
// idempotent join flow, so this runs before the router accepts traffic.
func (m *memberDatabase) EnsureIndexes(ctx context.Context) error {
	_, err := m.db.Collection(memberName).CreateIndexes(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}
