package match

import "github.com/poiesic/soundbite/core"

// Monitor provides hooks to observe a query as it moves through the engine.
// Implementations must be safe for concurrent use when the engine serves
// concurrent queries.
type Monitor interface {
	Start(query string, method core.Method)
	AfterEmbedding(vector []float32)
	Scored(method core.Method, scores core.ScoreTable)
	Decided(decision *core.Decision)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Method)           {}
func (n *noopMonitor) AfterEmbedding(_ []float32)              {}
func (n *noopMonitor) Scored(_ core.Method, _ core.ScoreTable) {}
func (n *noopMonitor) Decided(_ *core.Decision)                {}
