package cache

import (
	"context"
	"fmt"
	"time"
)

// IdentityState 网关校验结果快照
// 仅缓存通过校验的身份，键为 token 摘要，未通过的不落缓存。
type IdentityState struct {
	UserID     string `json:"user_id"`
	VerifiedAt int64  `json:"verified_at"`
}

func identityStateKey(tokenDigest string) string {
	return fmt.Sprintf("identity:token:%s", tokenDigest)
}

// GetIdentityState 获取缓存的校验结果
func GetIdentityState(ctx context.Context, tokenDigest string) (*IdentityState, bool, error) {
	if tokenDigest == "" {
		return nil, false, nil
	}
	var state IdentityState
	hit, err := GetJSON(ctx, identityStateKey(tokenDigest), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetIdentityState 写入校验结果
func SetIdentityState(ctx context.Context, tokenDigest string, state *IdentityState, ttl time.Duration) error {
	if tokenDigest == "" || state == nil || state.UserID == "" {
		return nil
	}
	return SetJSON(ctx, identityStateKey(tokenDigest), state, ttl)
}

// DelIdentityState 删除校验结果
func DelIdentityState(ctx context.Context, tokenDigest string) error {
	if tokenDigest == "" {
		return nil
	}
	return Del(ctx, identityStateKey(tokenDigest))
}
