package config

type StorageType string

const STORAGE_TYPE_REDIS StorageType = "redis"

type EncoderDecoderType string

const JSON_ENCODER_DECODER EncoderDecoderType = "JSON"

type Config struct {
	RedisConfig        RedisStorageConfig
	HttpPort           int
	StorageType        StorageType
	EncoderDecoderType EncoderDecoderType
	CorrelatorCapacity int
	PartitionCount     int
	FreezeCacheSeconds int
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}
