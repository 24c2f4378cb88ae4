package stylesheet

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/quill/internal/core/ports"
)

// NodeID is the unique identifier for the stylesheet Graft node.
const NodeID graft.ID = "adapter.stylesheet"

func init() {
	graft.Register(graft.Node[ports.StylesheetProcessor]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.StylesheetProcessor, error) {
			return New(), nil
		},
	})
}
