package cursor

import "github.com/mattn/go-runewidth"

// DisplayColumn returns the screen cell at which col of line begins,
// expanding tabs to the next multiple of tabWidth and counting wide
// characters as two cells.
func DisplayColumn(line string, col, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	cells, i := 0, 0
	for _, r := range line {
		if i == col {
			break
		}
		if r == '\t' {
			cells += tabWidth - cells%tabWidth
		} else {
			cells += runewidth.RuneWidth(r)
		}
		i++
	}
	return cells
}

// ColumnAtDisplay is the inverse of DisplayColumn: it returns the char
// column whose cell span covers cell, or the line length past the end.
func ColumnAtDisplay(line string, cell, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 4
	}
	cells, i := 0, 0
	for _, r := range line {
		w := runewidth.RuneWidth(r)
		if r == '\t' {
			w = tabWidth - cells%tabWidth
		}
		if cells+w > cell {
			return i
		}
		cells += w
		i++
	}
	return i
}
