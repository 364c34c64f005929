package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// sharedNode lazily initializes a single snowflake node so IDs stay
// unique within the process even when generated in the same millisecond.
func sharedNode() *snowflake.Node {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if v := os.Getenv("SNOWFLAKE_NODE"); v != "" {
			if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			n, _ = snowflake.NewNode(1)
		}
		node = n
	})
	return node
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewSnowflakeID generates a snowflake ID string. The result is all
// digits, which matters for callers that embed it in a validated
// filename.
func NewSnowflakeID() string {
	return sharedNode().Generate().String()
}

// NewSnowflakeInt64 generates a snowflake ID as an int64.
func NewSnowflakeInt64() int64 {
	return sharedNode().Generate().Int64()
}
