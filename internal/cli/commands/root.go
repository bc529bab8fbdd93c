// Package commands implements the restwell CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashureev/restwell/internal/cli/client"
	"github.com/ashureev/restwell/internal/cli/config"
	"github.com/ashureev/restwell/internal/cli/ui"
)

const version = "0.1.0"

// settings resolves --server, RESTWELL_SERVER and ~/.restwell.yaml.
var settings = config.New()

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "restwell",
	Short:   "RestWell sleep and caffeine companion",
	Version: version,
	Long: `Compare your sleep and caffeine intake with typical values for your age
and gender, render the comparison chart, and chat with the wellness assistant.`,
	Example: `  # Compare against your age group (caffeine is estimated when omitted)
  $ restwell assess --age 20 --gender female --sleep 5

  # Save the chart as PNG
  $ restwell assess --age 30 --gender male --sleep 7 --caffeine 200 --chart chart.png

  # Start interactive chat
  $ restwell chat

  # Point at another server
  $ restwell --server http://restwell.internal:8080 baselines`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(fmt.Sprintf("restwell version %s\n", version))
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringP("server", "s", config.DefaultServer, "RestWell server address")
	if err := settings.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server")); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(baselinesCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statsCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableInheritedFlags}}` + ui.Styles.Bold.Render("GLOBAL OPTIONS") + `
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func newClient() (*client.APIClient, error) {
	cfg, err := config.Load(settings)
	if err != nil {
		return nil, err
	}
	return client.NewAPIClient(cfg.Server)
}
