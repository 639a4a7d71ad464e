package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProfileKeyPrefix      = "profile:user:%d"
	CompanyListKey        = "companies:all"
	PositionListKeyPrefix = "company:%d:positions"
)

const (
	ProfileTTL  = 5 * time.Minute
	CatalogTTL  = 10 * time.Minute
	PositionTTL = 10 * time.Minute
)

func ProfileKey(userID uint) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func PositionListKey(companyID uint) string {
	return fmt.Sprintf(PositionListKeyPrefix, companyID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateProfile(ctx context.Context, userID uint) {
	Invalidate(ctx, ProfileKey(userID))
}

// InvalidateCatalog drops the company listing and the position listing of companyID.
func InvalidateCatalog(ctx context.Context, companyID uint) {
	Invalidate(ctx, CompanyListKey, PositionListKey(companyID))
}
