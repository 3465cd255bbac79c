package formatter

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/gnolang/tealer/internal/detectors"
)

// FormatDetectorList writes one table row per detector, numbered from 1.
func FormatDetectorList(w io.Writer, descs []detectors.Descriptor) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Name", "Description", "Impact", "Confidence", "Type"})
	table.SetAutoWrapText(false)
	for i, d := range descs {
		table.Append([]string{
			strconv.Itoa(i + 1),
			d.Name,
			d.Description,
			d.Impact.String(),
			d.Confidence.String(),
			d.Type.String(),
		})
	}
	table.Render()
}
