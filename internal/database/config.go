package database

const (
	BackendBolt  = "bolt"
	BackendRedis = "redis"
)

type Config struct {
	Backend       string `envconfig:"B2T_STORE_BACKEND" default:"bolt" toml:"backend" yaml:"backend"`
	RedisAddr     string `envconfig:"B2T_REDIS_ADDR" default:"localhost:6379" toml:"redis_addr" yaml:"redis_addr"`
	RedisDB       int    `envconfig:"B2T_REDIS_DB" default:"0" toml:"redis_db" yaml:"redis_db"`
	RedisPassword string `envconfig:"B2T_REDIS_PASSWORD" toml:"redis_password" yaml:"redis_password"`
	RedisPrefix   string `envconfig:"B2T_REDIS_PREFIX" default:"b2t" toml:"redis_prefix" yaml:"redis_prefix"`
}
