package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/tracelab/qtrace/hooking"
	"github.com/tracelab/qtrace/procstats"
	"github.com/tracelab/qtrace/trace"
	"github.com/tracelab/qtrace/waitprobe"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Trace a synthetic workload into a trace file.",
	Long: "`demo` runs a canned mix of queries through the trace engine " +
		"and prints the resulting trace file path.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfigFromFlags(cmd)

		rounds, _ := cmd.Flags().GetInt("queries")
		if rounds < 1 {
			rounds = 1
		}

		engine := newDemoEngine(1)
		collector := procstats.NewCollector(
			engine, procstats.ProcessSource{}, int32(os.Getpid()))

		session := trace.NewSession(cfg, collector, engine)
		tracer := trace.NewTracer(session).WithSampleSource(engine)

		if cfg.ProbeDB != "" {
			feed, err := waitprobe.NewSQLiteFeed(cfg.ProbeDB)
			if err != nil {
				log.Fatalf("Error opening probe database: %v", err)
			}
			defer feed.Close()
			tracer.WithWaitProbe(feed, waitprobe.NewRegistry())
		}

		chain := hooking.NewChain(engine)
		chain.Use(tracer)

		path, err := session.Start()
		if err != nil {
			log.Fatalf("Error starting trace: %v", err)
		}

		for i := 0; i < rounds; i++ {
			st := demoWorkload[i%len(demoWorkload)]
			if err := runStatement(chain, st.sql); err != nil {
				log.Fatalf("Error running workload: %v", err)
			}
		}

		if _, err := session.Stop(); err != nil {
			log.Fatalf("Error stopping trace: %v", err)
		}

		fmt.Printf("Traced %d queries into %s\n",
			session.QueriesTraced(), path)
	},
}

func runStatement(chain *hooking.Chain, sql string) error {
	q := &hooking.Query{SQL: sql}

	if err := chain.Plan(q); err != nil {
		return err
	}
	if err := chain.ExecutorStart(q); err != nil {
		return err
	}
	if err := chain.ExecutorRun(q); err != nil {
		return err
	}
	return chain.ExecutorEnd(q)
}

func loadConfigFromFlags(cmd *cobra.Command) trace.Config {
	cfgPath, _ := cmd.Flags().GetString("config")

	cfg, err := trace.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if dir, _ := cmd.Flags().GetString("output-dir"); dir != "" {
		cfg.OutputDir = dir
	}
	if thr, _ := cmd.Flags().GetInt("threshold"); thr != 0 {
		cfg.ThresholdMicros = thr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error in configuration: %v", err)
	}

	return cfg
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().String("config", "", "path to a YAML configuration file")
	demoCmd.Flags().String("output-dir", "", "directory for trace files")
	demoCmd.Flags().Int("threshold", 0,
		"OS cache threshold in microseconds")
	demoCmd.Flags().Int("queries", 9, "number of queries to run")
}
