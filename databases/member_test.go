package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/osiahq/founding-circle-api/config"
	"github.com/osiahq/founding-circle-api/databases"
	"github.com/osiahq/founding-circle-api/databases/mocks"
	"github.com/osiahq/founding-circle-api/models"
)

func TestNewMemberDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	memberDB := databases.NewMemberDatabase(db)

	assert.NotEmpty(t, memberDB)
}

func TestMemberDatabase_FindOne(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.Member)
		(*arg).Email = "mocked-member@example.com"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	// Create new database with mocked Database interface
	memberDba := databases.NewMemberDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	member, err := memberDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, member)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	member, err = memberDba.FindOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, &models.Member{Email: "mocked-member@example.com"}, member)
	assert.NoError(t, err)
}

func TestMemberDatabase_Find(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var curHelperCorrect databases.CursorHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	curHelperCorrect = &mocks.CursorHelper{}

	curHelperCorrect.(*mocks.CursorHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Member)
		(*arg) = []models.Member{{Email: "mocked-member@example.com", QueueNumber: 1}}
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("Find", context.Background(), bson.M{"error": false}).
		Return(curHelperCorrect, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	// Create new database with mocked Database interface
	memberDba := databases.NewMemberDatabase(dbHelper)

	// Call method with defined filter, that in our mocked function returns
	// mocked-error
	members, err := memberDba.Find(context.Background(), bson.M{"error": true})

	assert.Empty(t, members)
	assert.EqualError(t, err, "mocked-error")

	// Now call the same function with different filter for correct result
	members, err = memberDba.Find(context.Background(), bson.M{"error": false})

	assert.Equal(t, []models.Member{{Email: "mocked-member@example.com", QueueNumber: 1}}, members)
	assert.NoError(t, err)
}

func TestMemberDatabase_CountDocuments(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{"error": true}).
		Return(int64(0), errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("CountDocuments", context.Background(), bson.M{"error": false}).
		Return(int64(42), nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	memberDba := databases.NewMemberDatabase(dbHelper)

	count, err := memberDba.CountDocuments(context.Background(), bson.M{"error": true})

	assert.Zero(t, count)
	assert.EqualError(t, err, "mocked-error")

	count, err = memberDba.CountDocuments(context.Background(), bson.M{"error": false})

	assert.Equal(t, int64(42), count)
	assert.NoError(t, err)
}

func TestMemberDatabase_InsertOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	badMember := models.Member{Email: "broken@example.com"}
	goodMember := models.Member{Email: "mocked-member@example.com", QueueNumber: 1}

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), badMember).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("InsertOne", context.Background(), goodMember).
		Return(&mocks.InsertOneResultHelper{}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	memberDba := databases.NewMemberDatabase(dbHelper)

	res, err := memberDba.InsertOne(context.Background(), badMember)

	assert.Nil(t, res)
	assert.EqualError(t, err, "mocked-error")

	res, err = memberDba.InsertOne(context.Background(), goodMember)

	assert.NotNil(t, res)
	assert.NoError(t, err)
}

func TestMemberDatabase_UpdateOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	update := bson.M{"$set": bson.M{"status": models.StatusApproved}}

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"error": true}, update).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(), bson.M{"error": false}, update).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	memberDba := databases.NewMemberDatabase(dbHelper)

	res, err := memberDba.UpdateOne(context.Background(), bson.M{"error": true}, update)

	assert.Nil(t, res)
	assert.EqualError(t, err, "mocked-error")

	res, err = memberDba.UpdateOne(context.Background(), bson.M{"error": false}, update)

	assert.Equal(t, int64(1), res.ModifiedCount)
	assert.NoError(t, err)
}

func TestMemberDatabase_DeleteOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("DeleteOne", context.Background(), bson.M{"error": true}).
		Return(nil, errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("DeleteOne", context.Background(), bson.M{"error": false}).
		Return(&mongo.DeleteResult{DeletedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	memberDba := databases.NewMemberDatabase(dbHelper)

	res, err := memberDba.DeleteOne(context.Background(), bson.M{"error": true})

	assert.Nil(t, res)
	assert.EqualError(t, err, "mocked-error")

	res, err = memberDba.DeleteOne(context.Background(), bson.M{"error": false})

	assert.Equal(t, int64(1), res.DeletedCount)
	assert.NoError(t, err)
}

func TestMemberDatabase_EnsureIndexes(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	collectionHelper.(*mocks.CollectionHelper).
		On("CreateIndexes", context.Background(), mock.AnythingOfType("[]mongo.IndexModel")).
		Return([]string{"email_1"}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "members").Return(collectionHelper)

	memberDba := databases.NewMemberDatabase(dbHelper)

	err := memberDba.EnsureIndexes(context.Background())

	assert.NoError(t, err)
	collectionHelper.(*mocks.CollectionHelper).AssertNumberOfCalls(t, "CreateIndexes", 1)
}
