package table

// Project rebuilds src under outputHeaders, filling each output column from
// the source column the mapping assigns to it. An output column whose target
// has no mapping entry, or whose mapped source matches no header, comes out
// all-nil. The output has exactly one row per source row; short source rows
// read as nil. src is never mutated and cell values are copied as-is.
func Project(src Table, mapping ColumnMapping, outputHeaders []string) Table {
	out := Table{
		Name:    src.Name,
		Headers: append([]string(nil), outputHeaders...),
		Rows:    make([]Row, len(src.Rows)),
	}

	// Resolve each output column to a source index once, not per row.
	srcIndex := make([]int, len(outputHeaders))
	for i, target := range outputHeaders {
		srcIndex[i] = -1
		if source, ok := mapping.Source(target); ok {
			srcIndex[i] = src.ColumnIndex(source)
		}
	}

	for r, row := range src.Rows {
		outRow := make(Row, len(outputHeaders))
		for c, idx := range srcIndex {
			if idx >= 0 {
				outRow[c] = row.CellAt(idx)
			}
		}
		out.Rows[r] = outRow
	}
	return out
}
