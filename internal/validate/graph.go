package validate

import "worldmap/internal/graph"

// GraphReader is the part of the location graph the checks read.
type GraphReader interface {
	IsInitialized() bool
	Nodes() []graph.Node
	Breadcrumb(id string) ([]graph.Node, error)
}
