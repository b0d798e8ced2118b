package util

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/twmb/murmur3"
)

// HashFunc ...
func HashFunc(s string) uint32 {
	return murmur3.Sum32([]byte(s))
}

// PartitionKey buckets an aggregate id into one of numPartitions partition
// keys. Streams keep the same key for the life of the aggregate unless it is
// rewritten explicitly.
func PartitionKey(aggregateID uuid.UUID, numPartitions uint32) string {
	if numPartitions <= 1 {
		return "0"
	}
	h := HashFunc(aggregateID.String())
	return strconv.FormatUint(uint64(h%numPartitions), 10)
}
