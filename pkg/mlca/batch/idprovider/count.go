package idprovider

import (
	"strconv"
	"sync/atomic"

	"github.com/mlca-go/mlca/pkg/mlca/batch"
)

var _ batch.IDProvider = &Counter{}

// Counter hands out "1", "2", ... in call order.
type Counter struct {
	id int64
}

func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) NextID() batch.ID {
	return batch.ID(strconv.FormatInt(atomic.AddInt64(&c.id, 1), 10))
}
