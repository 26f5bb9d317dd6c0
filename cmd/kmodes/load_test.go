package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soybeanSample = `d1,normal,lt-norm,D1
d2,normal,gt-norm,D1
d1,abnorm,lt-norm,D2
d2,abnorm,gt-norm,D2
`

func TestLoadCSV(t *testing.T) {
	ds, err := loadCSV(strings.NewReader(soybeanSample), false, -1)
	require.NoError(t, err)
	require.Len(t, ds.records, 4)
	assert.Equal(t, []string{"d1", "normal", "lt-norm", "D1"}, ds.records[0])
	assert.Nil(t, ds.classes)
}

func TestLoadCSVLabelColumn(t *testing.T) {
	ds, err := loadCSV(strings.NewReader(soybeanSample), false, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"D1", "D1", "D2", "D2"}, ds.classes)
	assert.Equal(t, []string{"d1", "abnorm", "lt-norm"}, ds.records[2])

	ds, err = loadCSV(strings.NewReader(soybeanSample), false, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"d1", "d2", "d1", "d2"}, ds.classes)
	assert.Equal(t, []string{"normal", "lt-norm", "D1"}, ds.records[0])
}

func TestLoadCSVHeader(t *testing.T) {
	in := "color, shape\nred, round\nblue, square\n"
	ds, err := loadCSV(strings.NewReader(in), true, -1)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"red", "round"}, {"blue", "square"}}, ds.records)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := loadCSV(strings.NewReader(""), false, -1)
	assert.Error(t, err, "empty input")

	_, err = loadCSV(strings.NewReader("a,b\n"), true, -1)
	assert.Error(t, err, "header only")

	_, err = loadCSV(strings.NewReader("a,b\nc\n"), false, -1)
	assert.Error(t, err, "ragged rows")

	_, err = loadCSV(strings.NewReader("a,b\nc,d\n"), false, 5)
	assert.Error(t, err, "label column out of range")
}

func TestDropConstantColumns(t *testing.T) {
	ds := &dataset{records: [][]string{
		{"x", "a", "k", "1"},
		{"x", "b", "k", "2"},
		{"x", "a", "k", "1"},
	}}
	dropped := ds.dropConstantColumns()
	assert.Equal(t, []int{0, 2}, dropped)
	assert.Equal(t, [][]string{{"a", "1"}, {"b", "2"}, {"a", "1"}}, ds.records)

	assert.Nil(t, ds.dropConstantColumns(), "nothing left to drop")
}
