package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/velardi/logtally/internal/config"
	"github.com/velardi/logtally/internal/crawllog"
	"github.com/velardi/logtally/internal/metrics"
	"github.com/velardi/logtally/internal/seeds"
	"github.com/velardi/logtally/internal/storage"
	"github.com/velardi/logtally/internal/summary"
	"github.com/velardi/logtally/internal/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.FromArgs(args)
	if err != nil {
		return err
	}

	// Configure logging; the summary itself goes to stdout, so all
	// diagnostics stay on stderr
	level, _ := logrus.ParseLevel(cfg.LogLevel)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logrus.SetOutput(os.Stderr)

	logrus.Infof("logtally v%s summarizing %s", version.Version, cfg.LogPath)

	groupBy, err := summary.ParseGroupBy(cfg.GroupBy)
	if err != nil {
		return err
	}

	tracker := metrics.NewTracker()
	resolver := seeds.NewResolver()

	// Pass 1: read the whole log once to build the raw parent map
	buildStart := time.Now()
	if err := buildParentMap(cfg.LogPath, resolver, tracker); err != nil {
		return err
	}
	tracker.SetBuildDuration(time.Since(buildStart))

	logrus.Infof("Tracked %d distinct discovery keys", resolver.Len())

	// Collapse every key to its seed; no file I/O in this phase
	resolveStart := time.Now()
	resolver.Resolve()
	tracker.SetResolveDuration(time.Since(resolveStart))
	tracker.SetResolverFigures(resolver.Len(), resolver.PathologicalChains(), resolver.SynthesizedRoots())

	logrus.Info(tracker.LogProgress())

	// Pass 2: read the log again and fold every record into summaries
	summarizeStart := time.Now()
	reader, err := crawllog.Open(cfg.LogPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	if groupBy == summary.GroupNone {
		sum, err := summary.Build(reader, resolver)
		if err != nil {
			return err
		}
		tracker.SetSummarizeDuration(time.Since(summarizeStart))

		if cfg.TopN > 0 {
			sum = sum.TopN(cfg.TopN)
		}
		if err := emitJSON(cfg.OutputPath, sum); err != nil {
			return err
		}
		if err := exportDB(cfg.DBPath, map[string]*summary.Summary{"": sum}); err != nil {
			return err
		}
	} else {
		groups, err := summary.GroupedBy(reader, resolver, groupBy)
		if err != nil {
			return err
		}
		tracker.SetSummarizeDuration(time.Since(summarizeStart))

		if cfg.TopN > 0 {
			for key, group := range groups {
				groups[key] = group.TopN(cfg.TopN)
			}
		}
		if err := emitJSON(cfg.OutputPath, groups); err != nil {
			return err
		}
		if err := exportDB(cfg.DBPath, groups); err != nil {
			return err
		}
	}

	if cfg.MetricsPath != "" {
		if err := tracker.WriteToFile(cfg.MetricsPath); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", cfg.MetricsPath)
	}

	return nil
}

// buildParentMap feeds one full log pass into the resolver
func buildParentMap(logPath string, resolver *seeds.Resolver, tracker *metrics.Tracker) error {
	reader, err := crawllog.Open(logPath)
	if err != nil {
		return err
	}
	defer reader.Close()

	read := 0
	for reader.Scan() {
		resolver.Add(reader.Record())
		read++
	}
	tracker.AddRecordsRead(read)
	tracker.AddRecordsSkipped(reader.Skipped())

	if err := reader.Err(); err != nil {
		return fmt.Errorf("failed reading crawl log: %w", err)
	}
	return nil
}

// emitJSON writes the indented summary document to the output file, or to
// stdout when no file was requested
func emitJSON(outputPath string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	data = append(data, '\n')

	if outputPath == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	logrus.Infof("Summary written to %s", outputPath)
	return nil
}

// exportDB persists every summary into the sqlite database when one was
// requested
func exportDB(dbPath string, groups map[string]*summary.Summary) error {
	if dbPath == "" {
		return nil
	}

	store, err := storage.NewStorage(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	for key, group := range groups {
		if err := store.SaveSummary(key, group); err != nil {
			return err
		}
	}

	logrus.Infof("Exported %d summaries to %s", len(groups), dbPath)
	return nil
}
