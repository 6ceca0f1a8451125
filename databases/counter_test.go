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
)

func TestNewCounterDatabase(t *testing.T) {
	os.Setenv("DB_URI", "mongodb://127.0.0.1:27017")
	os.Setenv("DB_NAME", "test")
	conf := config.New()

	dbClient, err := databases.NewClient(conf)
	assert.NoError(t, err)

	db := databases.NewDatabase(conf, dbClient)

	counterDB := databases.NewCounterDatabase(db)

	assert.NotEmpty(t, counterDB)
}

func TestCounterDatabase_NextQueueNumber(t *testing.T) {

	// define variables for interfaces
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperCorrect databases.SingleResultHelper

	// set interfaces implementation to mocked structures
	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*databases.QueueCounter)
		arg.ID = "memberQueueNumber"
		arg.Seq = 7
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOneAndUpdate", context.Background(),
			bson.M{"_id": "memberQueueNumber"},
			bson.M{"$inc": bson.M{"seq": 1}},
			mock.Anything).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "counters").Return(collectionHelper)

	// Create new database with mocked Database interface
	counterDba := databases.NewCounterDatabase(dbHelper)

	seq, err := counterDba.NextQueueNumber(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, 7, seq)
}

func TestCounterDatabase_NextQueueNumber_DecodeError(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOneAndUpdate", context.Background(), mock.Anything, mock.Anything, mock.Anything).
		Return(srHelperErr)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "counters").Return(collectionHelper)

	counterDba := databases.NewCounterDatabase(dbHelper)

	seq, err := counterDba.NextQueueNumber(context.Background())

	assert.Zero(t, seq)
	assert.EqualError(t, err, "mocked-error")
}

func TestCounterDatabase_ReleaseOne(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	// the decrement is keyed on the reserved value so a stale release can
	// never pull the sequence below a number another member holds
	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(),
			bson.M{"_id": "memberQueueNumber", "seq": 5},
			bson.M{"$inc": bson.M{"seq": -1}}).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "counters").Return(collectionHelper)

	counterDba := databases.NewCounterDatabase(dbHelper)

	err := counterDba.ReleaseOne(context.Background(), 5)

	assert.NoError(t, err)
	collectionHelper.(*mocks.CollectionHelper).AssertNumberOfCalls(t, "UpdateOne", 1)
}

func TestCounterDatabase_ReleaseOne_StaleReleaseIsNoop(t *testing.T) {

	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}

	// a newer reservation moved the sequence past the released value; the
	// filter matches nothing and the sequence is left alone
	collectionHelper.(*mocks.CollectionHelper).
		On("UpdateOne", context.Background(),
			bson.M{"_id": "memberQueueNumber", "seq": 5},
			bson.M{"$inc": bson.M{"seq": -1}}).
		Return(&mongo.UpdateResult{MatchedCount: 0, ModifiedCount: 0}, nil)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "counters").Return(collectionHelper)

	counterDba := databases.NewCounterDatabase(dbHelper)

	err := counterDba.ReleaseOne(context.Background(), 5)

	assert.NoError(t, err)
}
