// Package models holds the entity and view-model structs shared between the
// store, the application services, and the HTTP layer.
package models

import "time"

// MediaRef is an opaque reference into the object storage backend. The
// backend hands both values out on upload; nothing in this codebase
// interprets them beyond passing StorageID back for deletion.
type MediaRef struct {
	URL       string `json:"url"`
	StorageID string `json:"storageId"`
}

// User is the full account record. PasswordHash and RefreshToken never leave
// the store layer; API-facing projections use OwnerSummary or ChannelProfile.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Avatar       MediaRef  `json:"avatar"`
	CoverImage   MediaRef  `json:"coverImage"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Video is a published or draft video record.
type Video struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	VideoFile   MediaRef  `json:"videoFile"`
	Thumbnail   MediaRef  `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	IsPublished bool      `json:"isPublished"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Comment is a text comment on a video.
type Comment struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	VideoID   int64     `json:"videoId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tweet is a short standalone text post.
type Tweet struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Playlist groups videos; membership is a set, never duplicated.
type Playlist struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// OwnerSummary is the denormalized owner projection attached to feed
// documents. It is a strict allow-list: identity, handle, display name and
// avatar only. Columns added to users later never show up here.
type OwnerSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

// ChannelSummary extends OwnerSummary with viewer-scoped subscription state,
// used where a video detail embeds its channel.
type ChannelSummary struct {
	OwnerSummary
	SubscriberCount int64 `json:"subscriberCount"`
	IsSubscribed    bool  `json:"isSubscribed"`
}

// VideoFeedItem is one row of a video listing: the video plus its owner
// summary. Owner is nil when the owner record is gone.
type VideoFeedItem struct {
	Video
	Owner *OwnerSummary `json:"owner"`
}

// VideoDetail is the single-video document with the full set of derived
// engagement fields.
type VideoDetail struct {
	Video
	LikesCount int64           `json:"likesCount"`
	IsLiked    bool            `json:"isLiked"`
	Owner      *ChannelSummary `json:"owner"`
}

// CommentItem is one row of a video's comment feed.
type CommentItem struct {
	ID        int64         `json:"id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	LikeCount int64         `json:"likeCount"`
	IsLiked   bool          `json:"isLiked"`
	Owner     *OwnerSummary `json:"owner"`
}

// TweetItem is one row of a tweet feed.
type TweetItem struct {
	ID        int64         `json:"id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Likes     int64         `json:"likes"`
	IsLiked   bool          `json:"isLiked"`
	Owner     *OwnerSummary `json:"owner"`
}

// ChannelProfile is the channel page document for a viewer.
type ChannelProfile struct {
	ID                int64  `json:"id"`
	Username          string `json:"username"`
	FullName          string `json:"fullName"`
	Email             string `json:"email"`
	Avatar            string `json:"avatar"`
	CoverImage        string `json:"coverImage"`
	SubscriberCount   int64  `json:"subscriberCount"`
	SubscribedToCount int64  `json:"channelSubscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// SubscriberItem lists one subscriber of a channel together with that
// subscriber's own channel size.
type SubscriberItem struct {
	OwnerSummary
	SubscriberCount int64 `json:"subscriberCount"`
}

// SubscribedChannel lists one channel the subject follows, with the
// channel's most recent upload when it has any.
type SubscribedChannel struct {
	OwnerSummary
	LatestVideo *Video `json:"latestVideo"`
}

// PlaylistSummary is a playlist row in the owner's playlist listing.
type PlaylistSummary struct {
	Playlist
	TotalVideos int64  `json:"totalVideos"`
	Thumbnail   string `json:"thumbnail"`
}

// PlaylistVideo is a video inside a playlist detail, with its owner summary.
type PlaylistVideo struct {
	Video
	Owner *OwnerSummary `json:"owner"`
}

// PlaylistDetail is the full playlist document.
type PlaylistDetail struct {
	Playlist
	TotalVideos int64           `json:"totalVideos"`
	Videos      []PlaylistVideo `json:"videos"`
}

// ChannelStats is the dashboard aggregate for a channel.
type ChannelStats struct {
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
	TotalViews       int64 `json:"totalViews"`
	TotalVideos      int64 `json:"totalVideos"`
}

// DashboardVideo is one row of the dashboard's own-videos listing.
type DashboardVideo struct {
	Video
	LikesCount int64 `json:"likesCount"`
}
