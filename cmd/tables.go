package cmd

import (
	"fmt"
	"sort"

	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List live tables and the models that own them",
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := models.Load(viper.GetString("settings.models"))
		if err != nil {
			return err
		}
		d, err := dialect.GetDialect(Backend)
		if err != nil {
			return err
		}

		tables, err := schema.NewIntrospector(DB, d).TableNames(cmd.Context())
		if err != nil {
			return err
		}
		for _, line := range TableReport(tables, registry) {
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(tablesCmd)
}

// TableReport lists live tables with their owning model, then models whose
// table is missing.
func TableReport(tables map[string]bool, registry *models.Registry) []string {
	names := make([]string, 0, len(tables))
	for t := range tables {
		names = append(names, t)
	}
	sort.Strings(names)

	var lines []string
	for _, t := range names {
		owner := "-"
		if m := registry.ByTable(t); m != nil {
			owner = m.Label()
		}
		lines = append(lines, fmt.Sprintf("%-40s %s", t, owner))
	}
	for _, m := range registry.All() {
		if m.Managed && !m.Proxy && !tables[m.Table] {
			lines = append(lines, fmt.Sprintf("%-40s %s (missing)", m.Table, m.Label()))
		}
	}
	return lines
}
