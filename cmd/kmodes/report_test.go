package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteAssignments(t *testing.T) {
	var buf bytes.Buffer
	writeAssignments(&buf, []int{1, 0, 1})
	assert.Equal(t, "0\t1\n1\t0\n2\t1\n", buf.String())
}

func TestWriteContingency(t *testing.T) {
	var buf bytes.Buffer
	classes := []string{"D2", "D1", "D2", "D1", "D2"}
	labels := []int{1, 0, 1, 0, 0}
	writeContingency(&buf, classes, labels, 2)

	out := buf.String()
	assert.Contains(t, out, "CLASS")
	assert.Contains(t, out, "CLUSTER 2")

	// D2 was seen first, so its row comes first.
	d2 := strings.Index(out, "D2")
	d1 := strings.Index(out, "D1")
	assert.Less(t, d2, d1)

	var d2Line, d1Line string
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.Contains(line, "D2"):
			d2Line = line
		case strings.Contains(line, "D1"):
			d1Line = line
		}
	}
	assert.Equal(t, []string{"D2", "1", "2"}, strings.Fields(strings.ReplaceAll(d2Line, "|", " ")))
	assert.Equal(t, []string{"D1", "2", "0"}, strings.Fields(strings.ReplaceAll(d1Line, "|", " ")))
}
