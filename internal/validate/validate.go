// Package validate reports consistency problems in a location graph that
// writes accept silently: dangling or cyclic parents, ambiguous names, and
// malformed coordinates.
package validate

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"worldmap/internal/graph"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeSelfParent      = "self_parent"
	codeParentCycle     = "parent_cycle"
	codeDanglingParent  = "dangling_parent"
	codeDuplicateName   = "duplicate_name"
	codeInvalidCoords   = "invalid_coords"
	codeNPCInManyPlaces = "npc_in_multiple_locations"

	coordMax = 1000
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	NodeID   string
	Name     string
}

type Report struct {
	Issues []Issue
}

func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarn)
}

func (r *Report) filter(severity Severity) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func Run(g GraphReader) (*Report, error) {
	if g == nil || !g.IsInitialized() {
		return nil, graph.ErrNotInitialized
	}

	nodes := g.Nodes()
	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	issues := make([]Issue, 0)
	for _, n := range nodes {
		issues = append(issues, validateParent(g, n, byID)...)
		issues = append(issues, validateCoords(n)...)
	}
	issues = append(issues, duplicateNames(nodes)...)
	issues = append(issues, scatteredNPCs(nodes)...)

	return &Report{Issues: issues}, nil
}

func validateParent(g GraphReader, n graph.Node, byID map[string]graph.Node) []Issue {
	switch {
	case n.ParentID == "":
		return nil
	case n.ParentID == n.ID:
		return []Issue{issueFor(n, SeverityError, codeSelfParent, "location is its own parent")}
	}
	if _, ok := byID[n.ParentID]; !ok {
		return []Issue{issueFor(n, SeverityWarn, codeDanglingParent, fmt.Sprintf("parent %q does not exist", n.ParentID))}
	}
	if _, err := g.Breadcrumb(n.ID); errors.Is(err, graph.ErrParentCycle) {
		return []Issue{issueFor(n, SeverityError, codeParentCycle, "parent chain loops back on itself")}
	}
	return nil
}

func validateCoords(n graph.Node) []Issue {
	if n.Coords == "" {
		return nil
	}
	xs, ys, ok := strings.Cut(n.Coords, ",")
	if ok {
		x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
		y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
		if errX == nil && errY == nil && inRange(x) && inRange(y) {
			return nil
		}
	}
	return []Issue{issueFor(n, SeverityWarn, codeInvalidCoords, fmt.Sprintf("coords %q are not x,y within 0..%d", n.Coords, coordMax))}
}

func inRange(v float64) bool {
	return v >= 0 && v <= coordMax
}

// duplicateNames flags every location whose name is shared, since name
// lookups then depend on id order.
func duplicateNames(nodes []graph.Node) []Issue {
	byName := make(map[string][]graph.Node)
	for _, n := range nodes {
		byName[n.Name] = append(byName[n.Name], n)
	}

	var issues []Issue
	for _, n := range nodes {
		same := byName[n.Name]
		if len(same) < 2 {
			continue
		}
		others := make([]string, 0, len(same)-1)
		for _, o := range same {
			if o.ID != n.ID {
				others = append(others, o.ID)
			}
		}
		issues = append(issues, issueFor(n, SeverityWarn, codeDuplicateName, fmt.Sprintf("name also used by %s", strings.Join(others, ", "))))
	}
	return issues
}

func scatteredNPCs(nodes []graph.Node) []Issue {
	places := make(map[string][]string)
	names := make(map[string]string)
	for _, n := range nodes {
		for _, npc := range n.NPCs {
			places[npc.ID] = append(places[npc.ID], n.ID)
			names[npc.ID] = npc.Name
		}
	}

	ids := make([]string, 0, len(places))
	for id, at := range places {
		if len(at) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	issues := make([]Issue, 0, len(ids))
	for _, id := range ids {
		issues = append(issues, Issue{
			Severity: SeverityWarn,
			Code:     codeNPCInManyPlaces,
			Message:  fmt.Sprintf("npc is listed at %s", strings.Join(places[id], ", ")),
			NodeID:   id,
			Name:     names[id],
		})
	}
	return issues
}

func issueFor(n graph.Node, severity Severity, code, message string) Issue {
	return Issue{
		Severity: severity,
		Code:     code,
		Message:  message,
		NodeID:   n.ID,
		Name:     n.Name,
	}
}
