package view

// Edge pairs a projected element with its cursor.
type Edge struct {
	Cursor string `json:"cursor"`
	Node   Record `json:"node"`
}

// Pagination describes the page a Connection holds. Resolve always returns
// the whole list, so HasNext and HasPrevious are false.
type Pagination struct {
	HasNext        bool   `json:"hasNext"`
	HasPrevious    bool   `json:"hasPrevious"`
	NextCursor     string `json:"nextCursor,omitempty"`
	PreviousCursor string `json:"previousCursor,omitempty"`
}

// Connection is the paginated wrapper emitted for list fields.
type Connection struct {
	Items      []Edge     `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Nodes returns the element records in order.
func (c Connection) Nodes() []Record {
	out := make([]Record, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, item.Node)
	}
	return out
}

// UnwrapConnection flattens a Connection into its nodes. Any other value,
// including an already-flat slice, is returned unchanged.
func UnwrapConnection(value any) any {
	switch v := value.(type) {
	case Connection:
		return v.Nodes()
	case *Connection:
		if v == nil {
			return value
		}
		return v.Nodes()
	default:
		return value
	}
}

// UnwrapConnectionsInPlace replaces each named Connection field of rec with
// its flat node list and returns rec.
func UnwrapConnectionsInPlace(rec Record, fields ...string) Record {
	for _, name := range fields {
		value, ok := rec[name]
		if !ok || value == nil {
			continue
		}
		rec[name] = UnwrapConnection(value)
	}
	return rec
}
