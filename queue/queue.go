// Package queue provides a durable job queue used to drive the swap
// pipeline. Jobs survive process restarts and are claimed by at most
// one consumer at a time.
package queue

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// default scheduling knobs
const (
	DefaultAttempts = 5
	DefaultBackoff  = 10 * time.Second
)

// Options control how a job is scheduled
type Options struct {
	Delay    time.Duration // initial delay before the job is runnable
	Priority int           // higher runs first
	Attempts int           // total tries before the job fails for good
	Backoff  time.Duration // delay between retries
}

// Job a claimed queue entry
type Job struct {
	ID           string
	Queue        string
	Type         string
	Payload      bson.Raw
	AttemptsLeft int
	Backoff      time.Duration
}

// DecodePayload decode the job payload into out
func (job *Job) DecodePayload(out interface{}) error {
	return bson.Unmarshal(job.Payload, out)
}

// Scheduler enqueues jobs, the producer side
type Scheduler interface {
	Enqueue(queue, jobType string, payload interface{}, opts *Options) (jobID string, err error)
}

// Queue full queue surface, producer plus consumer side
type Queue interface {
	Scheduler

	// Claim take the next runnable job of a queue,
	// returns (nil, nil) when none is runnable.
	Claim(queue string) (*Job, error)

	// Ack mark a claimed job done
	Ack(jobID string) error

	// Retry put a claimed job back, delayed, spending one attempt
	Retry(jobID string, delay time.Duration, cause error) error

	// Fail mark a claimed job failed for good
	Fail(jobID string, cause error) error
}
