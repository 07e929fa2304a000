// pkg/registry/schema.go

// Package registry describes the catalog of matching and discovery
// activities the worker fleet serves. Each entry pairs a Camunda task
// type with the JSON Schemas its payloads must satisfy, so the
// build-response worker can validate outputs without hardcoding a
// schema per worker.
package registry

import "fmt"

// Activity categories used by the matching and discovery fleet.
const (
	CategoryMatching       = "matching"
	CategorySearch         = "search"
	CategoryInfrastructure = "infrastructure"
)

// Implementation lifecycle states, in rollout order.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusVerified   = "verified"
)

// ActivityRegistry is the on-disk catalog, loaded from
// configs/activity-registry.json.
type ActivityRegistry struct {
	Version     string     `json:"version"`
	LastUpdated string     `json:"lastUpdated"`
	Activities  []Activity `json:"activities"`
}

// Activity is one worker-backed operation: score-match,
// recommend-creators, recommend-investors, parse-search-query,
// search-pitches, or build-response itself.
type Activity struct {
	ID                   string                 `json:"id"`
	DisplayName          string                 `json:"displayName"`
	Description          string                 `json:"description"`
	Category             string                 `json:"category"`
	Version              string                 `json:"version"`
	TaskType             string                 `json:"taskType"`
	ImplementationStatus string                 `json:"implementationStatus"`
	InputSchema          map[string]interface{} `json:"inputSchema"`
	OutputSchema         map[string]interface{} `json:"outputSchema"`
	ErrorCodes           []string               `json:"errorCodes"`
	Timeout              string                 `json:"timeout"`
	Retries              int                    `json:"retries"`
	Workflows            []string               `json:"workflows"`
	Tags                 []string               `json:"tags"`
}

// Find returns the activity registered under id.
func (r *ActivityRegistry) Find(id string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// ByCategory returns the activities in the given category, in
// registry order.
func (r *ActivityRegistry) ByCategory(category string) []Activity {
	var out []Activity
	for _, a := range r.Activities {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// Validate checks the catalog is usable by the workers: non-empty,
// unique IDs, and the fields the build-response lookup depends on.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool, len(r.Activities))
	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", a.ID)
		}
		switch a.Category {
		case CategoryMatching, CategorySearch, CategoryInfrastructure:
		case "":
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		default:
			return fmt.Errorf("activity %s has unknown category: %s", a.ID, a.Category)
		}
	}
	return nil
}
