package columnar

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// DumpLayout renders the layout's columns (a Value or Group column is one
// row) as a table: position, id, type, byte range, and length. Grounded on the teacher's print.go,
// which renders a Parquet schema tree the same way (one row per column).
func (l *ColumnLayout) DumpLayout(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "id", "type", "start", "end", "len"})
	for i, c := range l.columns {
		rng := c.Range()
		table.Append([]string{
			strconv.Itoa(i),
			strconv.FormatUint(uint64(c.ID()), 10),
			c.ColType().String(),
			strconv.Itoa(rng.Start),
			strconv.Itoa(rng.End),
			strconv.Itoa(rng.Len()),
		})
	}
	table.Render()
}

// DumpLayout renders rb's layout (see ColumnLayout.DumpLayout).
func (rb *RowBlock) DumpLayout(w io.Writer) { rb.layout.DumpLayout(w) }

// DumpRows renders up to n decoded rows as a table, one column per field,
// "·" marking a column with no entry for that row. n <= 0 means unbounded.
func (rb *RowBlock) DumpRows(w io.Writer, n int) error {
	it := rb.Iter()
	table := tablewriter.NewWriter(w)

	header := make([]string, rb.layout.Len())
	for i := range header {
		header[i] = fmt.Sprintf("col%d", i)
	}
	table.SetHeader(header)

	for count := 0; n <= 0 || count < n; count++ {
		row, ok, err := it.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		cells := make([]string, rb.layout.Len())
		for i := range cells {
			cells[i] = "·"
		}
		for _, e := range row {
			cells[e.Column] = formatCell(e.Value)
		}
		table.Append(cells)
	}
	table.Render()
	return nil
}

func formatCell(c CellValue) string {
	switch c.Kind {
	case CellNull:
		return "null"
	case CellBool:
		return strconv.FormatBool(c.Bool)
	case CellUint:
		return strconv.FormatUint(c.Uint, 10)
	case CellInt:
		return strconv.FormatInt(c.Int, 10)
	case CellFloat64:
		return strconv.FormatFloat(c.Float64, 'g', -1, 64)
	case CellString:
		return c.Str
	case CellBytes:
		return fmt.Sprintf("%x", c.Bytes)
	case CellCounter:
		return fmt.Sprintf("counter(%d)", c.Uint)
	case CellTimestamp:
		return fmt.Sprintf("ts(%d)", c.Uint)
	case CellUnknown:
		return fmt.Sprintf("unknown(%d,%x)", c.TypeTag, c.Bytes)
	case CellList:
		return fmt.Sprintf("list(%d)", len(c.List))
	default:
		return ""
	}
}
