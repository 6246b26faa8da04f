package idprovider

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mlca-go/mlca/pkg/mlca/batch"
)

var _ batch.IDProvider = &UUID{}

type UUIDFn func() (uuid.UUID, error)

// UUID hands out random UUIDs.
type UUID struct {
	next UUIDFn
}

func NewUUID() *UUID {
	return &UUID{
		next: func() (uuid.UUID, error) { return uuid.NewRandom() },
	}
}

func NewCustomUUID(next UUIDFn) *UUID {
	return &UUID{next: next}
}

// NextID falls back to a time based id when no UUID can be generated.
func (p *UUID) NextID() batch.ID {
	id, err := p.next()
	if err != nil {
		return batch.ID(fmt.Sprintf("%d (with error: %s)", time.Now().UnixNano(), err))
	}
	return batch.ID(id.String())
}
