package store

import "strings"

// FilterAll is the pass-through value for every filter dimension.
const FilterAll = "all"

// FilterProjects derives the filtered project view. Predicates compose as a
// logical AND; input order is preserved. The workspace restriction re-applies
// even when the caller believes the list is already scoped, guarding against a
// stale or mismatched input list.
func FilterProjects(projects []Project, workspaceID, status, serviceType, priority, query string) []Project {
	if workspaceID == "" {
		workspaceID = DefaultWorkspaceID
	}
	query = strings.TrimSpace(strings.ToLower(query))

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if p.WorkspaceID != workspaceID {
			continue
		}
		if status != "" && status != FilterAll && string(p.Status) != status {
			continue
		}
		if serviceType != "" && serviceType != FilterAll && !containsString(p.ServiceTypes, serviceType) {
			continue
		}
		if priority != "" && priority != FilterAll && string(p.Priority) != priority {
			continue
		}
		if query != "" && !matchesQuery(&p, query) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// matchesQuery does a case-insensitive substring search over name, description
// and client, OR semantics.
func matchesQuery(p *Project, query string) bool {
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Client), query)
}
