package queue

import (
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tonswap/TON-EVM-Bridge/mongodb"
)

// MongoQueue durable queue backed by the jobs collection
type MongoQueue struct{}

// NewMongoQueue new mongo backed queue
func NewMongoQueue() *MongoQueue {
	return &MongoQueue{}
}

// Enqueue impl Scheduler interface
func (q *MongoQueue) Enqueue(queueName, jobType string, payload interface{}, opts *Options) (string, error) {
	if opts == nil {
		opts = &Options{}
	}
	attempts := opts.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	backoff := opts.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	raw, err := bson.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := &mongodb.MgoJob{
		JobID:        uuid.NewString(),
		Queue:        queueName,
		Type:         jobType,
		Payload:      raw,
		Status:       mongodb.JobWaiting,
		Priority:     opts.Priority,
		AttemptsLeft: attempts,
		BackoffMs:    backoff.Milliseconds(),
		RunAt:        time.Now().Add(opts.Delay).Unix(),
	}
	err = mongodb.AddJob(job)
	if err != nil {
		return "", err
	}
	return job.JobID, nil
}

// Claim impl Queue interface
func (q *MongoQueue) Claim(queueName string) (*Job, error) {
	mj, err := mongodb.ClaimJob(queueName)
	if err != nil || mj == nil {
		return nil, err
	}
	return &Job{
		ID:           mj.JobID,
		Queue:        mj.Queue,
		Type:         mj.Type,
		Payload:      mj.Payload,
		AttemptsLeft: mj.AttemptsLeft,
		Backoff:      time.Duration(mj.BackoffMs) * time.Millisecond,
	}, nil
}

// Ack impl Queue interface
func (q *MongoQueue) Ack(jobID string) error {
	return mongodb.AckJob(jobID)
}

// Retry impl Queue interface
func (q *MongoQueue) Retry(jobID string, delay time.Duration, cause error) error {
	return mongodb.RetryJob(jobID, delay, errString(cause))
}

// Fail impl Queue interface
func (q *MongoQueue) Fail(jobID string, cause error) error {
	return mongodb.FailJob(jobID, errString(cause))
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
