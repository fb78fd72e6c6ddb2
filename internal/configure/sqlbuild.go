package configure

import (
	"fmt"
	"strconv"
	"strings"
)

// InsertStatement renders a full INSERT for execution through a remote
// sqlite3 invocation. Columns keep their declared order; values are rendered
// positionally against them.
//
// sqlite reserves ORDER, and the shipped schemas name that column with the
// bracket form, so it is quoted as "[order]" rather than "order".
func InsertStatement(table string, columns []string, values []any) string {
	quoted := make([]string, len(columns))
	for i, col := range columns {
		if col == "order" {
			quoted[i] = `"[order]"`
			continue
		}
		quoted[i] = `"` + col + `"`
	}

	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = SQLValue(v)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		table, strings.Join(quoted, ","), strings.Join(rendered, ","))
}

// SQLValue renders one bind value as a sqlite literal.
func SQLValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(t, "'", "''") + "'"
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprintf("%v", t)
	}
}
