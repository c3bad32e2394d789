// Package events defines the messages published to NATS when the social
// graph or the warble timeline changes. Consumers such as notification or
// analytics workers subscribe to these subjects.
package events

import "time"

// NATS subjects.
const (
	SubjectUserRegistered = "warbler.user.registered"
	SubjectUserDeleted    = "warbler.user.deleted"
	SubjectFollowed       = "warbler.graph.followed"
	SubjectUnfollowed     = "warbler.graph.unfollowed"
	SubjectWarblePosted   = "warbler.warble.posted"
	SubjectWarbleDeleted  = "warbler.warble.deleted"
	SubjectWarbleLiked    = "warbler.warble.liked"
)

// UserEvent signals a user lifecycle change.
type UserEvent struct {
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// FollowEvent signals a follow edge being created or removed.
type FollowEvent struct {
	FollowerID uint      `json:"follower_id"`
	FollowedID uint      `json:"followed_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WarbleEvent signals a warble being posted, deleted, or liked.
type WarbleEvent struct {
	WarbleID   uint      `json:"warble_id"`
	AuthorID   uint      `json:"author_id"`
	ActorID    uint      `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
