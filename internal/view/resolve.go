package view

// Record is the generic shape Resolve consumes and produces.
type Record map[string]any

// Resolve returns the subset of data named by selection, interpreted through schema.
//
// A top-level field is emitted when its bare name or any dotted path rooted
// at it is selected. Selecting an object or list field by bare name selects
// every field of its element schema. List fields are emitted as a Connection.
// Paths that match no schema field are ignored, and schema fields missing
// from data are left out.
func Resolve(data Record, schema Schema, selection []string) Record {
	return resolveRecord(data, schema, parseSelection(selection))
}

func resolveRecord(data Record, schema Schema, sel *selection) Record {
	out := make(Record)
	if data == nil {
		return out
	}
	for _, f := range schema.Fields {
		sub, ok := sel.lookup(f.Name)
		if !ok {
			continue
		}
		value, present := data[f.Name]
		if !present {
			continue
		}
		switch f.Kind {
		case KindScalar:
			out[f.Name] = value
		case KindObject:
			out[f.Name] = resolveObject(value, f.Elem, sub)
		case KindList:
			out[f.Name] = resolveList(value, f, sub)
		}
	}
	return out
}

func resolveObject(value any, elem Schema, sel *selection) any {
	switch v := value.(type) {
	case nil:
		return nil
	case Record:
		return resolveRecord(v, elem, sel)
	case map[string]any:
		return resolveRecord(Record(v), elem, sel)
	default:
		return value
	}
}

func resolveList(value any, f Field, sel *selection) Connection {
	elems := asRecords(value)
	conn := Connection{Items: make([]Edge, 0, len(elems))}
	for i, elem := range elems {
		conn.Items = append(conn.Items, Edge{
			Cursor: EncodeCursor(cursorFor(elem, f.CursorKey, i)),
			Node:   resolveRecord(elem, f.Elem, sel),
		})
	}
	if n := len(conn.Items); n > 0 {
		conn.Pagination.PreviousCursor = conn.Items[0].Cursor
		conn.Pagination.NextCursor = conn.Items[n-1].Cursor
	}
	return conn
}

// asRecords accepts the list shapes callers produce; anything else is an empty list.
func asRecords(value any) []Record {
	switch v := value.(type) {
	case []Record:
		return v
	case []map[string]any:
		out := make([]Record, 0, len(v))
		for _, m := range v {
			out = append(out, Record(m))
		}
		return out
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			switch m := item.(type) {
			case Record:
				out = append(out, m)
			case map[string]any:
				out = append(out, Record(m))
			}
		}
		return out
	case Connection:
		return v.Nodes()
	case *Connection:
		if v == nil {
			return nil
		}
		return v.Nodes()
	default:
		return nil
	}
}
