// Package sources implements the sources command.
package sources

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/authorgraph/internal/cmd/output"
	"github.com/agentstation/authorgraph/internal/sources/registry"
	pkgsources "github.com/agentstation/authorgraph/pkg/sources"
)

// AppContext defines the interface that the sources command needs from the app.
type AppContext interface {
	Sources() (*pkgsources.Sources, error)
	OutputFormat() string
}

// Row is one configured source.
type Row struct {
	ID       string `json:"id" yaml:"id"`
	Priority int    `json:"priority" yaml:"priority"`
}

// NewCommand creates the sources command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	var kinds bool

	cmd := &cobra.Command{
		Use:     "sources",
		GroupID: "management",
		Short:   "List configured author sources",
		Long: `Sources lists the author sources in the order their author lists are
merged. With --kinds it lists the source kinds that can be enabled instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format := output.DetectFormat(app.OutputFormat())
			formatter := output.NewFormatter(format)

			if kinds {
				rows := make([][]string, 0)
				for _, id := range registry.List() {
					rows = append(rows, []string{id.String()})
				}
				return formatter.Format(cmd.OutOrStdout(), tableOr(format, output.Data{
					Headers: []string{"Kind"},
					Rows:    rows,
				}, registry.List()))
			}

			srcs, err := app.Sources()
			if err != nil {
				return err
			}
			list := Rows(srcs)
			data := output.Data{Headers: []string{"ID", "Priority"}, ColumnAlignment: []output.Align{output.AlignLeft, output.AlignRight}}
			for _, r := range list {
				data.Rows = append(data.Rows, []string{r.ID, strconv.Itoa(r.Priority)})
			}
			return formatter.Format(cmd.OutOrStdout(), tableOr(format, data, list))
		},
	}

	cmd.Flags().BoolVar(&kinds, "kinds", false, "list available source kinds")

	return cmd
}

// Rows lists srcs in merge order.
func Rows(srcs *pkgsources.Sources) []Row {
	list := srcs.List()
	rows := make([]Row, 0, len(list))
	for _, s := range list {
		rows = append(rows, Row{ID: s.ID().String(), Priority: s.Priority()})
	}
	return rows
}

// tableOr picks the table form for table-like formats and the raw value otherwise.
func tableOr(format output.Format, table output.Data, raw any) any {
	switch format {
	case output.FormatJSON, output.FormatYAML:
		return raw
	default:
		return table
	}
}
