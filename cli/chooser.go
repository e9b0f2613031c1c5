package cli

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// terminalChooser presents a numbered list on the terminal and reads the
// operator's selection: comma-separated indices and ranges ("1,3-5"), "all",
// or an empty line for none.
type terminalChooser[T any] struct {
	in     io.Reader
	out    io.Writer
	render func(T) string
}

func newTerminalChooser[T any](in io.Reader, out io.Writer, render func(T) string) terminalChooser[T] {
	return terminalChooser[T]{in: in, out: out, render: render}
}

func (c terminalChooser[T]) Choose(items []T) ([]T, error) {
	if len(items) == 0 {
		return nil, nil
	}

	for i, item := range items {
		fmt.Fprintf(c.out, "%4d  %s\n", i+1, c.render(item))
	}
	fmt.Fprintf(c.out, "Select records (e.g. 1,3-5 | all | empty for none): ")

	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading selection: %w", err)
	}

	indices, err := parseSelection(strings.TrimSpace(line), len(items))
	if err != nil {
		return nil, err
	}

	chosen := make([]T, 0, len(indices))
	for _, index := range indices {
		chosen = append(chosen, items[index-1])
	}
	return chosen, nil
}

// parseSelection expands a selection expression into sorted unique 1-based
// indices bounded by n.
func parseSelection(input string, n int) ([]int, error) {
	if input == "" {
		return nil, nil
	}
	if strings.EqualFold(input, "all") {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i + 1
		}
		return indices, nil
	}

	seen := make(map[int]bool)
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi := part, part
		if bounds := strings.SplitN(part, "-", 2); len(bounds) == 2 {
			lo, hi = strings.TrimSpace(bounds[0]), strings.TrimSpace(bounds[1])
		}

		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		end, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid selection %q", part)
		}
		if start > end || start < 1 || end > n {
			return nil, fmt.Errorf("selection %q out of range 1-%d", part, n)
		}

		for i := start; i <= end; i++ {
			seen[i] = true
		}
	}

	indices := make([]int, 0, len(seen))
	for index := range seen {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices, nil
}
