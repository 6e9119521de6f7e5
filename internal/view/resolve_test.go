package view

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var (
	testACWRSchema     = NewSchema("ACWR", Scalars("acuteLoad", "chronicLoad", "ratio", "isDanger")...)
	testWellnessSchema = NewSchema("WellnessMetric", Scalars("id", "date", "rhr", "hrvRmssd", "hrvRatio")...)
	testReadiness      = NewSchema("Readiness",
		Object("acwr", testACWRSchema),
		List("wellnessHistory", testWellnessSchema, "id"),
	)
)

func testData() Record {
	return Record{
		"acwr": Record{
			"acuteLoad":   100.0,
			"chronicLoad": 80.0,
			"ratio":       1.25,
			"isDanger":    false,
		},
		"wellnessHistory": []Record{
			{"id": "1", "date": "2026-02-20", "rhr": 58.0, "hrvRmssd": 40.0, "hrvRatio": 0.7},
			{"id": "2", "date": "2026-02-21", "rhr": 55.0, "hrvRmssd": 45.0, "hrvRatio": 0.8},
		},
	}
}

func TestGenerateSelectPathsWalksObjectsAndLists(t *testing.T) {
	paths := GenerateSelectPaths(testReadiness, "")
	want := []string{
		"acwr.acuteLoad", "acwr.chronicLoad", "acwr.ratio", "acwr.isDanger",
		"wellnessHistory.id", "wellnessHistory.date", "wellnessHistory.rhr",
		"wellnessHistory.hrvRmssd", "wellnessHistory.hrvRatio",
	}
	if diff := cmp.Diff(want, paths); diff != "" {
		t.Fatalf("unexpected paths (-want +got):\n%s", diff)
	}

	prefixed := GenerateSelectPaths(testACWRSchema, "acwr")
	require.Equal(t, []string{"acwr.acuteLoad", "acwr.chronicLoad", "acwr.ratio", "acwr.isDanger"}, prefixed)
}

func TestResolveWithGeneratedPathsKeepsEverything(t *testing.T) {
	data := testData()
	out := Resolve(data, testReadiness, GenerateSelectPaths(testReadiness, ""))

	require.Equal(t, data["acwr"], out["acwr"])

	conn, ok := out["wellnessHistory"].(Connection)
	require.True(t, ok, "list fields must be wrapped as a connection")
	require.Len(t, conn.Items, 2)
	if diff := cmp.Diff(data["wellnessHistory"], UnwrapConnection(conn)); diff != "" {
		t.Fatalf("round trip lost data (-want +got):\n%s", diff)
	}
	require.False(t, conn.Pagination.HasNext)
	require.False(t, conn.Pagination.HasPrevious)
}

func TestResolveTopLevelNamesSelectFullProjection(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"acwr", "wellnessHistory"})

	acwr := out["acwr"].(Record)
	require.Len(t, acwr, 4)

	conn := out["wellnessHistory"].(Connection)
	require.Len(t, conn.Items, 2)
	require.Len(t, conn.Items[0].Node, 5)
	require.Equal(t, 58.0, conn.Items[0].Node["rhr"])
}

func TestResolveNestedLeafNarrowsNodes(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"wellnessHistory.id"})

	require.NotContains(t, out, "acwr")
	conn := out["wellnessHistory"].(Connection)
	require.Len(t, conn.Items, 2)
	for i, item := range conn.Items {
		require.Equal(t, Record{"id": []string{"1", "2"}[i]}, item.Node)
		require.NotEmpty(t, item.Cursor)
	}
}

func TestResolveNestedObjectSelection(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"acwr.ratio", "acwr.isDanger"})
	require.Equal(t, Record{"acwr": Record{"ratio": 1.25, "isDanger": false}}, out)
}

func TestResolveEmptySelectionYieldsNothing(t *testing.T) {
	require.Empty(t, Resolve(testData(), testReadiness, []string{}))
	require.Empty(t, Resolve(testData(), testReadiness, nil))
	require.Empty(t, Resolve(testData(), testReadiness, []string{"", "  "}))
}

func TestResolveIgnoresUnknownPaths(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"bogus", "acwr.nope", "wellnessHistory.missing", "acwr.ratio"})

	require.Equal(t, Record{"ratio": 1.25}, out["acwr"])
	conn := out["wellnessHistory"].(Connection)
	for _, item := range conn.Items {
		require.Empty(t, item.Node)
	}
	require.NotContains(t, out, "bogus")
}

func TestResolveContainerSelectionWinsOverLeaf(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"wellnessHistory.id", "wellnessHistory"})
	conn := out["wellnessHistory"].(Connection)
	require.Len(t, conn.Items[1].Node, 5)
}

func TestResolveIsNullAndShapeSafe(t *testing.T) {
	data := Record{
		"acwr":            nil,
		"wellnessHistory": nil,
	}
	out := Resolve(data, testReadiness, []string{"acwr", "wellnessHistory"})
	require.Nil(t, out["acwr"])
	conn := out["wellnessHistory"].(Connection)
	require.Empty(t, conn.Items)

	require.Empty(t, Resolve(nil, testReadiness, []string{"acwr"}))
	require.Empty(t, Resolve(Record{}, testReadiness, []string{"acwr"}))

	flat := Record{"wellnessHistory": []map[string]any{{"id": "x", "rhr": 50.0}}}
	out = Resolve(flat, testReadiness, []string{"wellnessHistory.rhr"})
	require.Equal(t, Record{"rhr": 50.0}, out["wellnessHistory"].(Connection).Items[0].Node)
}

func TestResolvePreservesElementOrder(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"wellnessHistory.date"})
	nodes := UnwrapConnection(out["wellnessHistory"]).([]Record)
	require.Equal(t, "2026-02-20", nodes[0]["date"])
	require.Equal(t, "2026-02-21", nodes[1]["date"])
}

func TestCursorsAreStableAcrossSelections(t *testing.T) {
	a := Resolve(testData(), testReadiness, []string{"wellnessHistory"})["wellnessHistory"].(Connection)
	b := Resolve(testData(), testReadiness, []string{"wellnessHistory.rhr"})["wellnessHistory"].(Connection)
	for i := range a.Items {
		require.Equal(t, a.Items[i].Cursor, b.Items[i].Cursor)
	}

	cursor, err := decodeCursor(a.Items[1].Cursor)
	require.NoError(t, err)
	require.Equal(t, &Cursor{Key: "id", Value: "2"}, cursor)
	require.Equal(t, a.Items[1].Cursor, a.Pagination.NextCursor)
	require.Equal(t, a.Items[0].Cursor, a.Pagination.PreviousCursor)
}

func TestCursorFallsBackToIndex(t *testing.T) {
	data := Record{"wellnessHistory": []Record{{"rhr": 50.0}}}
	conn := Resolve(data, testReadiness, []string{"wellnessHistory"})["wellnessHistory"].(Connection)

	cursor, err := decodeCursor(conn.Items[0].Cursor)
	require.NoError(t, err)
	require.Equal(t, "index", cursor.Key)
	require.Equal(t, "0", cursor.Value)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	c, err := decodeCursor("")
	require.NoError(t, err)
	require.Nil(t, c)

	_, err = decodeCursor("%%%")
	require.Error(t, err)

	_, err = decodeCursor(EncodeCursor(&Cursor{Value: "x"}))
	require.Error(t, err)
}

func TestConnectionJSONShape(t *testing.T) {
	out := Resolve(testData(), testReadiness, []string{"wellnessHistory.id"})
	body, err := json.Marshal(out)
	require.NoError(t, err)

	var decoded struct {
		WellnessHistory struct {
			Items []struct {
				Cursor string         `json:"cursor"`
				Node   map[string]any `json:"node"`
			} `json:"items"`
			Pagination map[string]any `json:"pagination"`
		} `json:"wellnessHistory"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Len(t, decoded.WellnessHistory.Items, 2)
	require.Equal(t, "1", decoded.WellnessHistory.Items[0].Node["id"])
	require.Equal(t, false, decoded.WellnessHistory.Pagination["hasNext"])
}
