// Package cache кэширует выборки по ключам (сущность, область, параметры)
// и сбрасывает все ключи области одной операцией после записи.
//
// У каждой области есть счетчик поколений. Читатель берет поколение до запроса
// в БД и кладет его в ключ, а InvalidateScope увеличивает счетчик. Поэтому
// снимок, прочитанный до записи, попадает под устаревший ключ.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	EntityAgenda = "agenda"

	scanBatchSize = 100
)

var (
	// ErrCache возвращается при ошибках Redis
	ErrCache = errors.New("cache: redis error")

	// ErrEncode возвращается при ошибке сериализации значения
	ErrEncode = errors.New("cache: failed to encode value")

	// ErrDecode возвращается при ошибке десериализации значения
	ErrDecode = errors.New("cache: failed to decode value")
)

// Key ключ кэша. Scope группирует ключи, которые инвалидируются вместе.
type Key struct {
	Entity string
	Scope  string
	Params []string
}

// FacilityScope область ключей одного объекта
func FacilityScope(facilityID int64) string {
	return "facility:" + strconv.FormatInt(facilityID, 10)
}

// AgendaKey ключ выборки агенды объекта
func AgendaKey(facilityID int64, params ...string) Key {
	return Key{Entity: EntityAgenda, Scope: FacilityScope(facilityID), Params: params}
}

// String строковое представление ключа без префикса
func (k Key) String() string {
	parts := make([]string, 0, 2+len(k.Params))
	parts = append(parts, k.Entity, k.Scope)
	for _, p := range k.Params {
		if p == "" {
			p = "-"
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, ":")
}

// GenerationParam параметр ключа с номером поколения области
func GenerationParam(gen int64) string {
	return "g" + strconv.FormatInt(gen, 10)
}

// generationKey не попадает под scopePattern, поэтому счетчик переживает сброс области
func generationKey(prefix, entity, scope string) string {
	return prefix + ":gen:" + entity + ":" + scope
}

// scopePattern glob для SCAN по всем ключам области
func scopePattern(prefix, entity, scope string) string {
	return prefix + ":" + entity + ":" + scope + ":*"
}

// RedisCache кэш на Redis
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache создает кэш на переданном клиенте
func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) key(k Key) string {
	return c.prefix + ":" + k.String()
}

// Get читает значение в dst. Возвращает false, если ключа нет.
func (c *RedisCache) Get(ctx context.Context, k Key, dst interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: Get - %v", ErrCache, err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("%w: Get - %v", ErrDecode, err)
	}

	return true, nil
}

// Set сохраняет значение с TTL кэша
func (c *RedisCache) Set(ctx context.Context, k Key, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: Set - %v", ErrEncode, err)
	}

	if err := c.client.Set(ctx, c.key(k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set - %v", ErrCache, err)
	}

	return nil
}

// Generation текущее поколение области, 0 если записей еще не было
func (c *RedisCache) Generation(ctx context.Context, entity, scope string) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(c.prefix, entity, scope)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: Generation - %v", ErrCache, err)
	}
	return gen, nil
}

// InvalidateScope переводит область на новое поколение и удаляет ее ключи
func (c *RedisCache) InvalidateScope(ctx context.Context, entity, scope string) error {
	if err := c.client.Incr(ctx, generationKey(c.prefix, entity, scope)).Err(); err != nil {
		return fmt.Errorf("%w: InvalidateScope - incr generation: %v", ErrCache, err)
	}

	pattern := scopePattern(c.prefix, entity, scope)

	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("%w: InvalidateScope - scan %s: %v", ErrCache, pattern, err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: InvalidateScope - del: %v", ErrCache, err)
			}
		}

		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// NoopCache используется, когда Redis отключен или недоступен
type NoopCache struct{}

func (NoopCache) Get(context.Context, Key, interface{}) (bool, error) { return false, nil }

func (NoopCache) Set(context.Context, Key, interface{}) error { return nil }

func (NoopCache) Generation(context.Context, string, string) (int64, error) { return 0, nil }

func (NoopCache) InvalidateScope(context.Context, string, string) error { return nil }
