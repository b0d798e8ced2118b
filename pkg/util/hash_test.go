package util

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPartitionKey(t *testing.T) {
	id := uuid.MustParse("8c5be1b0-5e1f-4e6a-9db6-9c2b01a6f303")

	assert.Equal(t, "0", PartitionKey(id, 0))
	assert.Equal(t, "0", PartitionKey(id, 1))

	// deterministic
	assert.Equal(t, PartitionKey(id, 64), PartitionKey(id, 64))

	// always within range
	for buckets := uint32(2); buckets <= 16; buckets++ {
		key := PartitionKey(id, buckets)
		n, err := strconv.ParseUint(key, 10, 32)
		assert.Equal(t, nil, err)
		assert.Equal(t, true, n < uint64(buckets))
	}
}
