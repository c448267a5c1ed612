package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kwamkid/joolz-factory-sub002/internal/config"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// store Redis 连接与键前缀
type store struct {
	client *redis.Client
	prefix string
}

var active *store

// InitRedis 初始化 Redis 客户端
// 配置未启用时保持关闭；连通性检查失败时返回错误且缓存保持关闭。
func InitRedis(cfg *config.RedisConfig) error {
	active = nil
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "joolz"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis ping failed: %w", err)
	}

	active = &store{client: client, prefix: prefix}
	return nil
}

// Enabled 判断缓存是否启用
func Enabled() bool {
	return active != nil && active.client != nil
}

func (s *store) key(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return s.prefix
	}
	return s.prefix + ":" + trimmed
}

// GetJSON 读取 JSON 缓存，未命中返回 false
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	payload, err := active.client.Get(ctx, active.key(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return active.client.Set(ctx, active.key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	if !Enabled() {
		return nil
	}
	return active.client.Del(ctx, active.key(key)).Err()
}
