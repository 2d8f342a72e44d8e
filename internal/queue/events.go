package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types carried on the feed stream.
const (
	EventPostCreated    = "post_created"
	EventPostDeleted    = "post_deleted"
	EventUserFollowed   = "user_followed"
	EventUserUnfollowed = "user_unfollowed"
)

// StreamFeed is the Redis stream feed fan-out events travel on.
const StreamFeed = "stream:feed"

// ConsumerGroupFeed is the consumer group the fan-out workers join.
const ConsumerGroupFeed = "feed_workers"

// FeedEvent is the single event shape for everything on the feed stream.
// Post events fill PostID/AuthorID; follow events fill FollowerID/FolloweeID.
type FeedEvent struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"` // unix seconds

	PostID   int64 `json:"post_id,omitempty"`
	AuthorID int64 `json:"author_id,omitempty"`

	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`
}

// NewPostCreatedEvent announces a new post. Workers push it into every
// follower's feed cache.
func NewPostCreatedEvent(postID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostCreated,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewPostDeletedEvent announces a deleted post. Workers purge it from every
// follower's feed cache.
func NewPostDeletedEvent(postID, authorID int64) FeedEvent {
	return FeedEvent{
		Type:      EventPostDeleted,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		AuthorID:  authorID,
	}
}

// NewUserFollowedEvent announces a new edge. Workers backfill the followee's
// recent posts into the follower's feed cache.
func NewUserFollowedEvent(followerID, followeeID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// NewUserUnfollowedEvent announces a removed edge. Workers drop the
// followee's posts from the follower's feed cache.
func NewUserUnfollowedEvent(followerID, followeeID int64) FeedEvent {
	return FeedEvent{
		Type:       EventUserUnfollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// ToMap serializes the event for XADD, which wants field/value pairs.
func (e FeedEvent) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{"payload": string(data)}, nil
}

// ParseFeedEvent deserializes an event from XREADGROUP message values.
func ParseFeedEvent(values map[string]interface{}) (FeedEvent, error) {
	payload, ok := values["payload"].(string)
	if !ok {
		return FeedEvent{}, fmt.Errorf("missing payload field")
	}

	var event FeedEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return FeedEvent{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
