package store

const (
	PriorityDefault = 100
	PrioritySystem  = 0
)

type Entry struct {
	Book          string
	Name          string
	Content       string
	Keys          []string
	AlwaysInclude bool
	Priority      int
}

type Metadata struct {
	Keys          []string `json:"keys"`
	AlwaysInclude bool     `json:"always_include"`
	Priority      int      `json:"priority"`
}

func (e Entry) Metadata() Metadata {
	keys := e.Keys
	if keys == nil {
		keys = []string{}
	}
	return Metadata{Keys: keys, AlwaysInclude: e.AlwaysInclude, Priority: e.Priority}
}

func (e *Entry) ApplyMetadata(m Metadata) {
	e.Keys = m.Keys
	if e.Keys == nil {
		e.Keys = []string{}
	}
	e.AlwaysInclude = m.AlwaysInclude
	e.Priority = m.Priority
}
