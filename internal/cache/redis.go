package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/cursolab/cursolab-backend/internal/platform/logger"
	"github.com/cursolab/cursolab-backend/internal/types"
)

type redisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCache is the alternative backend for setups that already run a
// shared redis (several authoring stations against one box). Selected by
// REDIS_ADDR at startup.
func NewRedisCache(log *logger.Logger, addr string) (CourseCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &redisCache{
		client: client,
		log:    log.With("service", "RedisCourseCache"),
	}, nil
}

func courseKey(id string) string { return "cursolab:course:" + id }

func (c *redisCache) Put(ctx context.Context, course *types.Course) error {
	if course == nil || course.ID == "" {
		return fmt.Errorf("course with id required")
	}
	payload, err := json.Marshal(course)
	if err != nil {
		return fmt.Errorf("marshal course %s: %w", course.ID, err)
	}
	return c.client.Set(ctx, courseKey(course.ID), payload, 0).Err()
}

func (c *redisCache) Get(ctx context.Context, id string) (*types.Course, error) {
	payload, err := c.client.Get(ctx, courseKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var course types.Course
	if err := json.Unmarshal(payload, &course); err != nil {
		return nil, fmt.Errorf("parse cached course %s: %w", id, err)
	}
	return &course, nil
}
