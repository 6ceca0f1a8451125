package databases

// go generate: mockery --name CounterDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const counterName = "counters"

// queueCounterID is the _id of the single counter document backing queue
// number assignment.
const queueCounterID = "memberQueueNumber"

// CounterDatabase hands out queue numbers from an atomic sequence. Two
// concurrent reservations can never receive the same number because the
// increment happens server-side in a single findOneAndUpdate.
type CounterDatabase interface {
	NextQueueNumber(ctx context.Context) (int, error)
	ReleaseOne(ctx context.Context, reserved int) error
}

type counterDatabase struct {
	db DatabaseHelper
}

// NewCounterDatabase initializes a new instance of counter database with the provided db connection
func NewCounterDatabase(db DatabaseHelper) CounterDatabase {
	return &counterDatabase{
		db: db,
	}
}

// QueueCounter is the persisted shape of a counter document
type QueueCounter struct {
	ID  string `bson:"_id"`
	Seq int    `bson:"seq"`
}

func (c *counterDatabase) NextQueueNumber(ctx context.Context) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	doc := QueueCounter{}
	err := c.db.Collection(counterName).FindOneAndUpdate(ctx,
		bson.M{"_id": queueCounterID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// ReleaseOne gives back a reserved number, used when an insert loses a
// duplicate-email race and after a member removal compacts the queue. The
// decrement is keyed on the value being returned: a release that lost a race
// against a newer reservation matches nothing and the abandoned number stays
// as a gap until the next renumber pass, rather than pulling the sequence
// below a number another member already holds.
func (c *counterDatabase) ReleaseOne(ctx context.Context, reserved int) error {
	_, err := c.db.Collection(counterName).UpdateOne(ctx,
		bson.M{"_id": queueCounterID, "seq": reserved},
		bson.M{"$inc": bson.M{"seq": -1}},
	)
	return err
}
