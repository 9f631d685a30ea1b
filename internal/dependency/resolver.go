// Package dependency orders bundle assets so that everything an asset
// references is created before the asset itself.
package dependency

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dimkharitonov/quicksightsync/internal/model"
)

// ValidationError represents a dependency validation error.
type ValidationError struct {
	Type    string   // "circular", "missing", "invalid"
	Assets  []string // Asset IDs involved in the error
	Message string   // Human-readable error message
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Result contains the outcome of dependency resolution.
type Result struct {
	Ordered []model.AssetRef  // Assets in dependency-resolved order
	Errors  []ValidationError // Fatal issues
}

// HasErrors returns true if there are any errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns the first error, or nil.
func (r *Result) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// Resolve validates cross-references and returns assets in topologically
// sorted order. A dependency on an asset that is not in the set, or a
// cycle, is fatal: an import cannot proceed past either. Even with errors
// the input order is returned as a best-effort fallback.
func Resolve(assets []model.AssetRef) Result {
	result := Result{
		Ordered: assets,
		Errors:  []ValidationError{},
	}

	if len(assets) == 0 {
		return result
	}

	byID := make(map[string]model.AssetRef, len(assets))
	for _, asset := range assets {
		byID[asset.ID] = asset
	}

	graph := make(map[string][]string, len(assets))
	for _, asset := range assets {
		graph[asset.ID] = asset.Dependencies
	}

	for _, asset := range assets {
		for _, dep := range asset.Dependencies {
			if _, exists := byID[dep]; !exists {
				result.Errors = append(result.Errors, ValidationError{
					Type:    "missing",
					Assets:  []string{asset.ID, dep},
					Message: fmt.Sprintf("%s %q depends on %q which is not in the bundle", asset.Type, asset.ID, dep),
				})
			}
		}
	}
	if len(result.Errors) > 0 {
		return result
	}

	if cycles := detectCycles(graph); len(cycles) > 0 {
		for _, cycle := range cycles {
			result.Errors = append(result.Errors, ValidationError{
				Type:    "circular",
				Assets:  cycle,
				Message: fmt.Sprintf("circular dependency detected: %s", strings.Join(cycle, " -> ")),
			})
		}
		return result
	}

	ordered, err := topologicalSort(assets)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{
			Type:    "invalid",
			Message: fmt.Sprintf("failed to order assets: %v", err),
		})
		return result
	}

	result.Ordered = ordered
	return result
}

// detectCycles finds circular references in the graph. Each returned cycle
// is the list of asset IDs forming it.
func detectCycles(graph map[string][]string) [][]string {
	var cycles [][]string
	visited := make(map[string]bool)
	recStack := make(map[string]bool)
	path := []string{}

	var dfs func(node string) bool
	dfs = func(node string) bool {
		visited[node] = true
		recStack[node] = true
		path = append(path, node)

		for _, dep := range graph[node] {
			if !visited[dep] {
				if dfs(dep) {
					return true
				}
			} else if recStack[dep] {
				cycleStart := -1
				for i, n := range path {
					if n == dep {
						cycleStart = i
						break
					}
				}
				if cycleStart != -1 {
					cycle := make([]string, len(path)-cycleStart)
					copy(cycle, path[cycleStart:])
					cycle = append(cycle, dep)
					cycles = append(cycles, cycle)
				}
				return true
			}
		}

		path = path[:len(path)-1]
		recStack[node] = false
		return false
	}

	// Iterate in sorted order for deterministic cycle reporting.
	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if !visited[node] {
			path = []string{}
			dfs(node)
		}
	}

	return cycles
}

// topologicalSort performs Kahn's algorithm over the asset set.
func topologicalSort(assets []model.AssetRef) ([]model.AssetRef, error) {
	inDegree := make(map[string]int, len(assets))
	for _, asset := range assets {
		inDegree[asset.ID] = len(asset.Dependencies)
	}

	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	byID := make(map[string]model.AssetRef, len(assets))
	for _, asset := range assets {
		byID[asset.ID] = asset
	}

	var result []model.AssetRef
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if asset, exists := byID[current]; exists {
			result = append(result, asset)
		}

		for _, asset := range assets {
			for _, dep := range asset.Dependencies {
				if dep == current {
					inDegree[asset.ID]--
					if inDegree[asset.ID] == 0 {
						queue = append(queue, asset.ID)
						sort.Strings(queue)
					}
				}
			}
		}
	}

	if len(result) != len(assets) {
		return assets, fmt.Errorf("topological sort failed: processed %d of %d assets", len(result), len(assets))
	}

	return result, nil
}
