package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implementa Cache sobre um Redis compartilhado, para rodar mais de
// uma instância do serviço sem repetir buscas. O Redis controla a memória
// por conta própria, então só o TTL é aplicado aqui.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
	Log    *slog.Logger
}

func NewRedis(client *redis.Client, prefix string, ttl time.Duration, log *slog.Logger) *Redis {
	if log == nil {
		log = slog.Default()
	}
	return &Redis{Client: client, TTL: ttl, Prefix: prefix, Log: log}
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.Client.Get(ctx, c.Prefix+key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		// Redis fora do ar degrada para cache miss, nunca para erro.
		c.Log.Warn("cache redis indisponível", "err", err)
		return "", false
	}
	return val, true
}

func (c *Redis) Put(ctx context.Context, key, value string) {
	if err := c.Client.Set(ctx, c.Prefix+key, value, c.TTL).Err(); err != nil {
		c.Log.Warn("falha ao gravar no cache redis", "key", key, "err", err)
	}
}
