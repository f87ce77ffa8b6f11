package models

import "time"

const (
	PendingSourceFriend  = "friend"
	PendingSourceVisitor = "visitor"
)

// LineFollow is the observation log of LINE follow events. A row exists
// while the external identity is a friend of the official account; unfollow
// deletes it.
type LineFollow struct {
	LineUserID  string    `json:"line_user_id"`
	DisplayName string    `json:"display_name"`
	PictureURL  *string   `json:"picture_url,omitempty"`
	FollowedAt  time.Time `json:"followed_at"`
}

// LinePortalVisit records that an external identity opened the student
// portal, whether or not it was ever linked.
type LinePortalVisit struct {
	LineUserID    string    `json:"line_user_id"`
	DisplayName   string    `json:"display_name"`
	LastVisitedAt time.Time `json:"last_visited_at"`
}

// PendingLineIdentity is a derived view: an observed external identity not
// present in any student's identity set.
type PendingLineIdentity struct {
	LineUserID  string  `json:"line_user_id"`
	DisplayName string  `json:"display_name"`
	PictureURL  *string `json:"picture_url,omitempty"`
	Source      string  `json:"source"`
}
