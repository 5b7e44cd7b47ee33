package partition

import (
	"github.com/buraksezer/consistent"
	"github.com/mohitkumar/shipyard/util"
	"github.com/spaolacci/murmur3"
)

type hasher struct {
}

func NewHasher() *hasher {
	return &hasher{}
}

func (h hasher) Sum64(data []byte) uint64 {
	return murmur3.Sum64(data)
}

// Partitioner spreads per run queue keys over a fixed number of partitions so
// producers keyed on different runs never contend on one redis list.
type Partitioner struct {
	partitionCount int
	hring          *consistent.Consistent
}

func NewPartitioner(partitionCount int) *Partitioner {
	cfg := consistent.Config{
		PartitionCount:    partitionCount,
		ReplicationFactor: 20,
		Load:              1.25,
		Hasher:            NewHasher(),
	}
	hr := consistent.New(nil, cfg)
	return &Partitioner{
		partitionCount: partitionCount,
		hring:          hr,
	}
}

func (p *Partitioner) GetPartition(key string) int {
	return p.hring.FindPartitionID([]byte(key))
}

func (p *Partitioner) GetPartitions() []int {
	partitions := make([]int, 0, p.partitionCount)
	for i := 0; i < p.partitionCount; i++ {
		partitions = append(partitions, i)
	}
	util.Shuffle(partitions)
	return partitions
}
