package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// UserSessionKey returns the cache key for a user's login session.
func (r *CacheKeyStruct) UserSessionKey(userID int) string {
	return fmt.Sprintf("login:%d", userID)
}

// TestPayloadKey returns the cache key for a test's student-facing payload.
func (r *CacheKeyStruct) TestPayloadKey(testID string) string {
	return fmt.Sprintf("test:%s:payload", testID)
}

// ReviewResultKey returns the cache key for an attempt's reconciled review.
func (r *CacheKeyStruct) ReviewResultKey(attemptID string) string {
	return fmt.Sprintf("review:attempt:%s", attemptID)
}

var CacheKey = NewCacheKeyStruct()
