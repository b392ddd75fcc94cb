package cmd

import (
	"fmt"
	"io"
	"os"

	"sqlfixtables/internal/creation"
	"sqlfixtables/internal/dialect"
	"sqlfixtables/internal/fixer"
	"sqlfixtables/internal/models"
	"sqlfixtables/internal/schema"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	dropColumns   bool
	sortModels    bool
	noTransaction bool
	showProgress  bool
	modelsFile    string
	outputFile    string
)

var fixCmd = &cobra.Command{
	Use:   "fix <app>",
	Short: "Print SQL statements for model changes in an app",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := args[0]

		registry, err := models.Load(viper.GetString("settings.models"))
		if err != nil {
			return err
		}
		appModels, err := registry.AppModels(app)
		if err != nil {
			return err
		}

		d, err := dialect.GetDialect(Backend)
		if err != nil {
			return err
		}
		cfg := fixer.Config{
			Backend:     Backend,
			DropColumns: viper.GetBool("settings.drop_columns"),
			SortModels:  viper.GetBool("settings.sort_models"),
		}
		fx, err := fixer.New(cfg, schema.NewIntrospector(DB, d), creation.NewBuilder(d), registry, Logger)
		if err != nil {
			return err
		}

		var onModel func(*models.Model)
		if showProgress {
			progress := uiprogress.New()
			progress.SetOut(os.Stderr)
			progress.Start()
			defer progress.Stop()

			bar := progress.AddBar(len(appModels)).AppendCompleted().PrependElapsed()
			bar.PrependFunc(func(b *uiprogress.Bar) string {
				return "Models: "
			})
			onModel = func(*models.Model) { bar.Incr() }
		}

		Logger.Info("reconciling app", "app", app, "models", len(appModels), "drop_columns", cfg.DropColumns)
		statements, err := fx.FixApp(cmd.Context(), app, onModel)
		if err != nil {
			return err
		}

		var w io.Writer = os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}
		return WriteStatements(w, statements, viper.GetBool("settings.transaction"))
	},
}

func init() {
	RootCmd.AddCommand(fixCmd)

	fixCmd.Flags().BoolVar(&dropColumns, "drop-columns", false, "Drop columns that no longer exist in the model")
	fixCmd.Flags().BoolVar(&sortModels, "sort", false, "Process models in foreign key dependency order")
	fixCmd.Flags().BoolVar(&noTransaction, "no-transaction", false, "Do not wrap the output in BEGIN/COMMIT")
	fixCmd.Flags().BoolVar(&showProgress, "progress", false, "Show a progress bar on stderr")
	fixCmd.Flags().StringVarP(&modelsFile, "models", "m", "", "Model definitions file (overrides config)")
	fixCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write SQL to a file instead of stdout")

	viper.BindPFlag("settings.drop_columns", fixCmd.Flags().Lookup("drop-columns"))
	viper.BindPFlag("settings.sort_models", fixCmd.Flags().Lookup("sort"))
	viper.BindPFlag("settings.models", fixCmd.Flags().Lookup("models"))
	viper.SetDefault("settings.models", "models.yaml")
	viper.SetDefault("settings.transaction", true)

	// --no-transaction is the negation of settings.transaction; resolved here
	// rather than through BindPFlag.
	cobra.OnInitialize(func() {
		if noTransaction {
			viper.Set("settings.transaction", false)
		}
	})
}
