package handlers

import (
	"strings"

	types "github.com/yungbote/skillquest-backend/internal/domain"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
)

// userView renders u with the avatar URL taken from the bucket when a stored
// key exists, so URLs follow OBJECT_STORAGE_MODE and public base changes.
func userView(bucket gcp.BucketService, u *types.User) *UserView {
	v := NewUserView(u)
	if v == nil || bucket == nil {
		return v
	}
	key := strings.TrimSpace(u.AvatarBucketKey)
	if key == "" {
		return v
	}
	if url := strings.TrimSpace(bucket.GetPublicURL(gcp.BucketCategoryAvatar, key)); url != "" {
		v.AvatarURL = url
	}
	return v
}
