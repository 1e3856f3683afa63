package pipeline

// Archetype names a route shape with a fixed pipeline.
type Archetype string

const (
	GetList Archetype = "getList"
	Get     Archetype = "get"
	Patch   Archetype = "patch"
	Post    Archetype = "post"
)

// Single reports whether the archetype works on one resource.
func (a Archetype) Single() bool {
	return a != GetList
}

var table = map[Archetype]Pipeline{
	GetList: {
		{Name: "search", Stage: Search},
		{Name: "filter", Stage: Filter},
		{Name: "query", Stage: QueryList},
		{Name: "sort", Stage: Sort},
		{Name: "page", Stage: Paginate},
		{Name: "execute", Stage: ExecuteList},
		{Name: "serialize", Stage: Serialize},
		{Name: "render", Stage: RenderList},
	},
	Get: {
		{Name: "query", Stage: QueryOne},
		{Name: "execute", Stage: ExecuteOne},
		{Name: "serialize", Stage: Serialize},
		{Name: "render", Stage: RenderOne},
	},
	Patch: {
		{Name: "validate", Stage: ValidateUpdate},
		{Name: "sanitize", Stage: Sanitize},
		{Name: "find", Stage: Find},
		{Name: "update", Stage: Update},
		{Name: "serialize", Stage: Serialize},
		{Name: "render", Stage: RenderOne},
	},
	Post: {
		{Name: "validate", Stage: ValidateCreate},
		{Name: "sanitize", Stage: Sanitize},
		{Name: "create", Stage: Create},
		{Name: "serialize", Stage: Serialize},
		{Name: "render", Stage: RenderOne},
	},
}

// Lookup returns a copy of the default pipeline for a.
func Lookup(a Archetype) (Pipeline, bool) {
	p, ok := table[a]
	if !ok {
		return nil, false
	}
	out := make(Pipeline, len(p))
	copy(out, p)
	return out, true
}

// Archetypes lists the archetypes with a default pipeline.
func Archetypes() []Archetype {
	return []Archetype{GetList, Get, Patch, Post}
}
