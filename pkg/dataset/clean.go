package dataset

import (
	"strings"

	"github.com/leadscore/leadscore/pkg/utils"
)

// UnknownToken is the sentinel the raw dataset uses for missing
// categorical values.
const UnknownToken = "unknown"

// Clean normalizes a raw frame before any statistics run over it:
//
//   - every occurrence of UnknownToken in a string column becomes the
//     missing marker, so imputers can handle it;
//   - the label column is trimmed.
//
// Clean returns a new frame and is idempotent.
func Clean(f *Frame, labelColumn string) *Frame {
	cols := utils.Map(f.columns, func(c Column) Column {
		if c.Kind != String {
			return c.clone()
		}
		out := Column{Name: c.Name, Kind: String}
		out.Strings = utils.Map(c.Strings, func(v string) string {
			if v == UnknownToken {
				return MissingString
			}
			if c.Name == labelColumn {
				return strings.TrimSpace(v)
			}
			return v
		})
		return out
	})

	cleaned, _ := New(cols...)
	return cleaned
}
