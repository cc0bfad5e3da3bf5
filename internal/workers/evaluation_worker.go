package workers

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/yoockh/mockmate/internal/services"
)

const (
	DefaultStream = "evaluation:stream"
	DefaultGroup  = "evaluation-workers"
)

// RedisEvaluationQueue hands finished sessions to the worker pool through a
// Redis stream, so evaluation triggers survive a process restart and
// failures stay observable instead of vanishing with a dropped goroutine.
type RedisEvaluationQueue struct {
	rdb    *redis.Client
	stream string
}

func NewRedisEvaluationQueue(rdb *redis.Client, stream string) *RedisEvaluationQueue {
	if stream == "" {
		stream = DefaultStream
	}
	return &RedisEvaluationQueue{rdb: rdb, stream: stream}
}

func (q *RedisEvaluationQueue) Enqueue(ctx context.Context, sessionID, userID string) error {
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]any{
			"session_id": sessionID,
			"user_id":    userID,
			"ts_unix":    strconv.FormatInt(time.Now().UTC().Unix(), 10),
		},
	}).Err()
}

// InProcessEvaluationQueue runs the pipeline on a detached goroutine. Used in
// tests and when Redis is not configured.
type InProcessEvaluationQueue struct {
	Evaluations services.EvaluationService
	Logger      *logrus.Logger
	Timeout     time.Duration
}

func (q *InProcessEvaluationQueue) Enqueue(_ context.Context, sessionID, userID string) error {
	if q.Evaluations == nil {
		return errors.New("InProcessEvaluationQueue missing Evaluations")
	}
	timeout := q.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := q.Evaluations.EvaluateSession(ctx, sessionID, userID); err != nil && q.Logger != nil {
			q.Logger.WithError(err).WithField("session_id", sessionID).
				Error("background evaluation failed")
		}
	}()
	return nil
}

// RedisStatusPublisher broadcasts session lifecycle events on the per-session
// status channel the WS handler subscribes to.
type RedisStatusPublisher struct {
	Redis *redis.Client
}

func (p *RedisStatusPublisher) PublishStatus(ctx context.Context, sessionID, event string) {
	ch := "session:" + sessionID + ":status"
	payload := `{"type":"status","status":"` + event + `"}`
	_ = p.Redis.Publish(ctx, ch, payload).Err()
}

// EvaluationWorkerPool consumes the evaluation stream with a consumer group.
// A failed evaluation is logged and acked; the session stays SUBMITTED until
// an admin re-triggers it.
type EvaluationWorkerPool struct {
	Redis       *redis.Client
	Evaluations services.EvaluationService
	Logger      *logrus.Logger
	NumWorkers  int

	Stream         string
	Group          string
	ConsumerPrefix string
}

func (p *EvaluationWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Evaluations == nil {
		return errors.New("EvaluationWorkerPool missing dependency: Redis/Evaluations must be set")
	}
	if p.Stream == "" {
		p.Stream = DefaultStream
	}
	if p.Group == "" {
		p.Group = DefaultGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}

	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err() // ignore BUSYGROUP

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	return nil
}

func (p *EvaluationWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil {
				continue
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *EvaluationWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		v, ok := msg.Values[k]
		if !ok || v == nil {
			return ""
		}
		s, _ := v.(string)
		return s
	}

	sessionID := getStr("session_id")
	userID := getStr("user_id")
	if sessionID == "" {
		return
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":   msg.ID,
		"session_id": sessionID,
	})

	start := time.Now()
	if _, err := p.Evaluations.EvaluateSession(ctx, sessionID, userID); err != nil {
		log.WithError(err).Error("evaluation failed")
		return
	}
	log.WithField("elapsed_ms", time.Since(start).Milliseconds()).Info("evaluation complete")
}
