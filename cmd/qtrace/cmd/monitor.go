package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/tracelab/qtrace/monitoring"
	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/trace"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Serve a trace session over HTTP.",
	Long: "`monitor` registers a demo-backed trace session with the " +
		"monitoring server so it can be started, stopped, and tuned " +
		"remotely.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigFromFlags(cmd)

		engine := newDemoEngine(1)
		collector := procstats.NewCollector(
			engine, procstats.ProcessSource{}, int32(os.Getpid()))
		session := trace.NewSession(cfg, collector, engine)

		monitor := monitoring.NewMonitor()
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			monitor.WithPortNumber(port)
		}
		if open, _ := cmd.Flags().GetBool("browser"); open {
			monitor.WithBrowser()
		}

		monitor.RegisterSession("session-1", session)
		monitor.StartServer()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		<-interrupt
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().String("config", "", "path to a YAML configuration file")
	monitorCmd.Flags().String("output-dir", "", "directory for trace files")
	monitorCmd.Flags().Int("threshold", 0,
		"OS cache threshold in microseconds")
	monitorCmd.Flags().Int("port", 0, "port for the monitoring server")
	monitorCmd.Flags().Bool("browser", false,
		"open the monitoring page in a browser")
}
