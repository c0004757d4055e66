package ir

// Wildcard is the dependency marker meaning "depends on every other property
// of the object". It is recorded like any other dependency name but is never
// returned as a property.
const Wildcard = "*"

// Edge is a directed dependency relation: Dependent's value is implied to
// change whenever Dependency's value changes.
type Edge struct {
	Dependent  string `json:"dependent"`
	Dependency string `json:"dependency"`
}

// IsSelf reports whether the edge points back at its own dependent.
// Self-edges are never stored.
func (e Edge) IsSelf() bool {
	return e.Dependent == e.Dependency
}

// IsWildcard reports whether the edge carries the wildcard marker.
func (e Edge) IsWildcard() bool {
	return e.Dependency == Wildcard
}

// TypeSpec represents a compiled object type declaration.
type TypeSpec struct {
	Name       string         `json:"name"`
	Extends    string         `json:"extends,omitempty"` // Base type name, empty for root types
	Doc        string         `json:"doc,omitempty"`
	Properties []PropertySpec `json:"properties"`
}

// PropertySpec represents one declared property and its dependency
// annotations, in declaration order.
type PropertySpec struct {
	Name      string   `json:"name"`
	DependsOn []string `json:"depends_on,omitempty"`
	Doc       string   `json:"doc,omitempty"`
}

// Edges returns the type's own declared edges in declaration order.
// Self-edges are dropped; inherited declarations are not included.
func (s TypeSpec) Edges() []Edge {
	var edges []Edge
	for _, p := range s.Properties {
		for _, dep := range p.DependsOn {
			e := Edge{Dependent: p.Name, Dependency: dep}
			if e.IsSelf() {
				continue
			}
			edges = append(edges, e)
		}
	}
	return edges
}

// NotificationKind distinguishes the write's own notification from the
// notifications raised for its dependents.
type NotificationKind string

const (
	// KindPrimary is the notification for the property that was written.
	KindPrimary NotificationKind = "primary"

	// KindDependent is a notification raised through the dependency closure.
	KindDependent NotificationKind = "dependent"
)

// Notification is a recorded property-changed notification.
type Notification struct {
	SessionID string           `json:"session_id"`
	Seq       int64            `json:"seq"`   // Logical clock
	Cause     string           `json:"cause"` // Property whose write triggered this notification
	Property  string           `json:"property"`
	Kind      NotificationKind `json:"kind"`
}

// Session identifies one recorded run of writes against a single object.
type Session struct {
	ID            string `json:"id"`
	TypeName      string `json:"type_name"`
	Label         string `json:"label,omitempty"`
	SpecHash      string `json:"spec_hash"`
	EngineVersion string `json:"engine_version"`
	IRVersion     string `json:"ir_version"`
}

// Assignment is a recorded property write. Changed is false when the
// equality gate suppressed the write.
type Assignment struct {
	SessionID string `json:"session_id"`
	Seq       int64  `json:"seq"`
	Property  string `json:"property"`
	Value     any    `json:"value"`
	Changed   bool   `json:"changed"`
}
