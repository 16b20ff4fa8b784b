package mongodb

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AddJob add a durable job record
func AddJob(mj *MgoJob) error {
	mj.CreatedAt = now()
	mj.UpdatedAt = mj.CreatedAt
	_, err := collJob.InsertOne(clientCtx, mj)
	return mgoError(err)
}

// claim order: higher priority first, older run time first
var claimSort = bson.D{{Key: "priority", Value: -1}, {Key: "runat", Value: 1}}

// a claim is a lease, not an ownership transfer. if the consumer dies
// before ack/retry/fail, the lease runs out and the job is claimed
// again; the stage guards make the redelivery harmless.
const jobLeaseSeconds = int64(120)

func claimFilter(queue string, nowSec int64) bson.M {
	return bson.M{
		"queue": queue,
		"$or": []bson.M{
			{"status": JobWaiting, "runat": bson.M{"$lte": nowSec}},
			{"status": JobActive, "leaseuntil": bson.M{"$lte": nowSec}},
		},
	}
}

func claimUpdates(nowSec int64) bson.M {
	return bson.M{"$set": bson.M{
		"status":     JobActive,
		"leaseuntil": nowSec + jobLeaseSeconds,
		"updatedat":  nowSec,
	}}
}

// ClaimJob atomically take the next runnable job of a queue, which is
// either waiting and due, or active past its lease from a dead consumer.
// Returns (nil, nil) when the queue has no runnable job.
func ClaimJob(queue string) (*MgoJob, error) {
	nowSec := now()
	filter := claimFilter(queue, nowSec)
	updates := claimUpdates(nowSec)
	opts := options.FindOneAndUpdate().
		SetSort(claimSort).
		SetReturnDocument(options.After)
	var result MgoJob
	err := collJob.FindOneAndUpdate(clientCtx, filter, updates, opts).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, mgoError(err)
	}
	return &result, nil
}

// AckJob mark a claimed job done
func AckJob(jobID string) error {
	updates := bson.M{"status": JobDone, "updatedat": now()}
	_, err := collJob.UpdateOne(clientCtx, bson.M{"_id": jobID}, bson.M{"$set": updates})
	return mgoError(err)
}

// RetryJob put a claimed job back to waiting, delayed, with one
// attempt spent.
func RetryJob(jobID string, delay time.Duration, lastErr string) error {
	nowSec := now()
	updates := bson.M{
		"$set": bson.M{
			"status":    JobWaiting,
			"runat":     nowSec + int64(delay/time.Second),
			"lasterror": lastErr,
			"updatedat": nowSec,
		},
		"$inc": bson.M{"attemptsleft": -1},
	}
	_, err := collJob.UpdateOne(clientCtx, bson.M{"_id": jobID}, updates)
	return mgoError(err)
}

// FailJob mark a claimed job failed for good
func FailJob(jobID string, lastErr string) error {
	updates := bson.M{"status": JobFailed, "lasterror": lastErr, "updatedat": now()}
	_, err := collJob.UpdateOne(clientCtx, bson.M{"_id": jobID}, bson.M{"$set": updates})
	return mgoError(err)
}
