package pathstore

import (
	"strings"
	"testing"

	"github.com/pennsieve/cypherqa/types"
	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	path := types.GraphPath{
		Root: types.Node{Labels: []string{"Pennsieve"}},
		Segments: []types.PathSegment{
			{Relationship: "DATASET", Node: types.Node{Labels: []string{"Dataset"}, Properties: map[string]interface{}{"name": "Test Dataset CNT", "id": int64(379)}}},
			{Relationship: "FILES", Node: types.Node{Labels: []string{"File"}, Properties: map[string]interface{}{"name": "test.edf"}}},
			{Relationship: "DATA", Node: types.Node{Labels: []string{"Data"}, Properties: map[string]interface{}{"type": "Object", "children": 3.0}}},
			{Relationship: "5", Node: types.Node{Labels: []string{"Data"}, Properties: map[string]interface{}{"value": -3112.0}}},
		},
	}

	want := "(:Pennsieve)-[:DATASET]->(:Dataset {name: 'Test Dataset CNT'})-[:FILES]->(:File {name: 'test.edf'})" +
		"-[:DATA]->(:Data {children: 3.0, type: 'Object'})-[:`5`]->(:Data {value: -3112.0})"
	assert.Equal(t, want, Render(path))
	assert.Equal(t, Render(path), Render(path))
}

func TestRenderValue(t *testing.T) {
	tests := []struct {
		value interface{}
		want  string
	}{
		{"it's", `'it\'s'`},
		{99.99237, "99.99237"},
		{12.0, "12.0"},
		{int64(7), "7"},
		{true, "true"},
		{nil, "null"},
		{[]interface{}{"a", 1.5}, "['a', 1.5]"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, renderValue(tt.value))
	}
}

func TestRenderNodeWithoutProperties(t *testing.T) {
	assert.Equal(t, "(:Directory)", renderNode(types.Node{Labels: []string{"Directory"}}))
	assert.Equal(t, "(:Data)", renderNode(types.Node{Labels: []string{"DataGuide", "Data"}, Properties: map[string]interface{}{"id": 1}}))
	assert.Equal(t, "()", renderNode(types.Node{}))
}

func TestParseBackup(t *testing.T) {
	input := "Path: (:Pennsieve)-[:DATASET]->(:Dataset {name: 'A'})\n" +
		"Description: Retrieves dataset A.\n\n" +
		"Description: orphan\n" +
		"Path: (:Pennsieve)-[:DATASET]->(:Dataset {name: 'B'})\n" +
		"Description: Retrieves dataset B.\n\n" +
		"Path: dangling\n"

	entries, err := parseBackup(strings.NewReader(input))
	assert.NoError(t, err)
	assert.Equal(t, []BackupEntry{
		{Path: "(:Pennsieve)-[:DATASET]->(:Dataset {name: 'A'})", Description: "Retrieves dataset A."},
		{Path: "(:Pennsieve)-[:DATASET]->(:Dataset {name: 'B'})", Description: "Retrieves dataset B."},
	}, entries)
}
