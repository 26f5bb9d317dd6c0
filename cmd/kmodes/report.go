package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

func writeAssignments(w io.Writer, labels []int) {
	for i, c := range labels {
		fmt.Fprintf(w, "%d\t%d\n", i, c)
	}
}

// writeContingency prints a class × cluster count table. Classes appear in
// first-seen order.
func writeContingency(w io.Writer, classes []string, labels []int, k int) {
	var order []string
	counts := make(map[string][]int)
	for i, class := range classes {
		row, ok := counts[class]
		if !ok {
			row = make([]int, k)
			counts[class] = row
			order = append(order, class)
		}
		row[labels[i]]++
	}

	table := tablewriter.NewWriter(w)
	header := []string{"class"}
	for c := 0; c < k; c++ {
		header = append(header, fmt.Sprintf("cluster %d", c+1))
	}
	table.SetHeader(header)
	for _, class := range order {
		line := []string{class}
		for _, n := range counts[class] {
			line = append(line, strconv.Itoa(n))
		}
		table.Append(line)
	}
	table.Render()
}
