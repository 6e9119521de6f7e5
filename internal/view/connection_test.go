package view

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUnwrapConnectionPassesThroughNonConnections(t *testing.T) {
	flat := []Record{{"id": "1"}, {"id": "2"}}
	require.Equal(t, flat, UnwrapConnection(flat))

	once := UnwrapConnection(Connection{Items: []Edge{{Cursor: "c", Node: Record{"id": "1"}}}})
	require.Equal(t, []Record{{"id": "1"}}, once)
	require.Equal(t, once, UnwrapConnection(once))

	require.Equal(t, "scalar", UnwrapConnection("scalar"))
	require.Nil(t, UnwrapConnection(nil))

	var missing *Connection
	require.Equal(t, missing, UnwrapConnection(missing))
}

func TestUnwrapConnectionHandlesPointer(t *testing.T) {
	conn := &Connection{Items: []Edge{{Node: Record{"id": "a"}}, {Node: Record{"id": "b"}}}}
	require.Equal(t, []Record{{"id": "a"}, {"id": "b"}}, UnwrapConnection(conn))

	require.Equal(t, []Record{}, UnwrapConnection(Connection{}))
}

func TestUnwrapConnectionsInPlace(t *testing.T) {
	rec := Resolve(testData(), testReadiness, []string{"acwr", "wellnessHistory.id"})

	got := UnwrapConnectionsInPlace(rec, "wellnessHistory", "acwr", "absent")

	require.Equal(t, []Record{{"id": "1"}, {"id": "2"}}, rec["wellnessHistory"])
	require.Equal(t, rec, got)
	require.Len(t, rec["acwr"].(Record), 4, "non-connection fields are untouched")
	require.NotContains(t, rec, "absent")
}
