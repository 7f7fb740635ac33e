package model

// workItem holds a pending reference to be expanded along with the set of
// ancestor identifiers on the path from the scope root to this node (used for
// cycle detection).
type workItem struct {
	ref       *PackageReference
	ancestors map[Identifier]bool
}

// ScopePackages returns every package identifier reachable from the scope's
// dependency tree.
//
// The tree is walked iteratively, level by level, using a queue instead of
// recursion so that very deep or wide dependency graphs cannot overflow the
// stack. A reference that repeats one of its own ancestors is recorded but not
// expanded again.
func ScopePackages(scope Scope) map[Identifier]bool {
	seen := map[Identifier]bool{}

	queue := make([]workItem, 0, len(scope.Dependencies))
	for i := range scope.Dependencies {
		ref := &scope.Dependencies[i]
		queue = append(queue, workItem{ref: ref, ancestors: map[Identifier]bool{ref.ID: true}})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		seen[item.ref.ID] = true

		for i := range item.ref.Dependencies {
			child := &item.ref.Dependencies[i]
			if item.ancestors[child.ID] {
				// Cycle: record the node, do not expand it again.
				seen[child.ID] = true
				continue
			}

			childAncestors := make(map[Identifier]bool, len(item.ancestors)+1)
			for k := range item.ancestors {
				childAncestors[k] = true
			}
			childAncestors[child.ID] = true

			queue = append(queue, workItem{ref: child, ancestors: childAncestors})
		}
	}

	return seen
}

// excludedComponents returns the identifiers of projects and packages that
// the repository's exclude rules remove from distribution.
//
// A project is excluded when its definition file matches a path exclude. A
// package is excluded when every scope that references it is excluded or
// belongs to an excluded project. Packages that no project references are
// kept, since there is no evidence that they are not distributed.
func (r *AnalysisResult) excludedComponents() map[Identifier]bool {
	excluded := map[Identifier]bool{}
	if r.Analyzer == nil {
		return excluded
	}

	excludes := r.Repository.Config.Excludes
	referenced := map[Identifier]bool{}
	included := map[Identifier]bool{}

	for _, project := range r.Analyzer.Result.Projects {
		projectExcluded := len(excludes.PathExcludesFor(project.DefinitionFilePath)) > 0
		if projectExcluded {
			excluded[project.ID] = true
		}

		for _, scope := range project.Scopes {
			scopeExcluded := projectExcluded || excludes.IsScopeExcluded(scope.Name)
			for id := range ScopePackages(scope) {
				referenced[id] = true
				if !scopeExcluded {
					included[id] = true
				}
			}
		}
	}

	for id := range referenced {
		if !included[id] {
			excluded[id] = true
		}
	}

	return excluded
}
