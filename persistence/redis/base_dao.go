package redis

import (
	"fmt"
	"strings"

	rd "github.com/go-redis/redis/v9"
	"github.com/mohitkumar/shipyard/partition"
)

type baseDao struct {
	redisClient rd.UniversalClient
	namespace   string
	partitioner *partition.Partitioner
}

func newBaseDao(conf Config, partitioner *partition.Partitioner) *baseDao {
	redisClient := rd.NewUniversalClient(&rd.UniversalOptions{
		Addrs: conf.Addrs,
	})
	return &baseDao{
		redisClient: redisClient,
		namespace:   conf.Namespace,
		partitioner: partitioner,
	}
}

func (bs *baseDao) getNamespaceKey(args ...string) string {
	return fmt.Sprintf("%s:%s", bs.namespace, strings.Join(args, ":"))
}

func (bs *baseDao) getPartition(key string) int {
	return bs.partitioner.GetPartition(key)
}
