package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"go.temporal.io/sdk/client"
	"gopkg.in/yaml.v3"

	"github.com/samirrijal/geosearch/internal/core/domain"
	"github.com/samirrijal/geosearch/internal/core/usecases"
	"github.com/samirrijal/geosearch/internal/pkg/logging"
	"github.com/samirrijal/geosearch/internal/workflows"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "filterctl",
		Usage: "Build and inspect catalogue filter expressions",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: func(c *cli.Context) error {
			slog.SetDefault(logging.New(os.Stderr, c.String("log-level"), "text"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "build",
				Usage:     "Build the filter expression for a set of entries",
				Action:    buildCommand,
				ArgsUsage: " ",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "context",
						Aliases: []string{"c"},
						Usage:   "Search context (imagery, video)",
					},
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "YAML file with a context and a list of entries",
					},
					&cli.StringSliceFlag{
						Name:    "magic",
						Aliases: []string{"m"},
						Usage:   "Magic word (coordinate, grid reference or free text)",
					},
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Id entry as field=value, or a bare value matched against --id-field",
					},
					&cli.StringFlag{
						Name:  "id-field",
						Usage: "Field compared by bare --id values",
						Value: "image_id",
					},
					&cli.StringSliceFlag{
						Name:  "sensor",
						Usage: "Sensor entry value",
					},
					&cli.StringFlag{
						Name:  "sensor-field",
						Usage: "Field compared by --sensor values",
						Value: "sensor_id",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output format (text, json, yaml)",
						Value:   "text",
					},
				},
			},
			{
				Name:      "recognize",
				Usage:     "Show how a magic word is interpreted",
				ArgsUsage: "<token>",
				Action:    recognizeCommand,
			},
			{
				Name:      "schedule",
				Usage:     "Start a background refresh of a saved search",
				ArgsUsage: "<saved-search-id>",
				Action:    scheduleCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "temporal",
						Usage:   "Temporal frontend host:port",
						Value:   "localhost:7233",
						EnvVars: []string{"GEOSEARCH_TEMPORAL_HOST_PORT"},
					},
					&cli.StringFlag{
						Name:    "task-queue",
						Usage:   "Task queue the watcher listens on",
						Value:   workflows.DefaultTaskQueue,
						EnvVars: []string{"GEOSEARCH_TEMPORAL_TASK_QUEUE"},
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Page size requested by the refresh",
						Value: 30,
					},
				},
			},
		},
	}
}

// entriesFile is the YAML layout read by build --file.
type entriesFile struct {
	Context domain.SearchContext `yaml:"context"`
	Entries []domain.FilterEntry `yaml:"entries"`
}

type buildOutput struct {
	Context domain.SearchContext `json:"context" yaml:"context"`
	Filter  string               `json:"filter" yaml:"filter"`
}

func buildCommand(c *cli.Context) error {
	sc, entries, err := collectEntries(c)
	if err != nil {
		return err
	}

	svc := usecases.NewSearchService(nil, nil, nil)
	expr, err := svc.BuildFilter(c.Context, sc, entries)
	if err != nil {
		return err
	}

	return writeOutput(c.App.Writer, c.String("output"), buildOutput{Context: sc, Filter: expr})
}

// collectEntries merges entries from --file with the flag entries. The
// --context flag wins over the file's context.
func collectEntries(c *cli.Context) (domain.SearchContext, []domain.FilterEntry, error) {
	var sc domain.SearchContext
	var entries []domain.FilterEntry

	if path := c.String("file"); path != "" {
		f, err := readEntriesFile(path)
		if err != nil {
			return "", nil, err
		}
		sc = f.Context
		entries = append(entries, f.Entries...)
	}
	if c.IsSet("context") || sc == "" {
		sc = domain.SearchContext(c.String("context"))
	}
	if sc == "" {
		sc = domain.ContextImagery
	}

	for _, raw := range c.StringSlice("id") {
		entries = append(entries, idEntry(raw, c.String("id-field")))
	}
	for _, v := range c.StringSlice("sensor") {
		entries = append(entries, domain.FilterEntry{Category: domain.CategorySensor, Field: c.String("sensor-field"), Value: v})
	}
	for _, v := range c.StringSlice("magic") {
		entries = append(entries, domain.FilterEntry{Category: domain.CategoryMagicWord, Value: v})
	}
	return sc, entries, nil
}

func readEntriesFile(path string) (*entriesFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read entries file: %w", err)
	}
	var f entriesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse entries file %s: %w", path, err)
	}
	return &f, nil
}

// idEntry parses "field=value"; a bare value uses defaultField.
func idEntry(raw, defaultField string) domain.FilterEntry {
	field, value, ok := strings.Cut(raw, "=")
	if !ok || field == "" {
		return domain.FilterEntry{Category: domain.CategoryID, Field: defaultField, Value: raw}
	}
	return domain.FilterEntry{Category: domain.CategoryID, Field: field, Value: value}
}

func writeOutput(w io.Writer, format string, v buildOutput) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return yaml.NewEncoder(w).Encode(v)
	case "text", "":
		_, err := fmt.Fprintln(w, v.Filter)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func recognizeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one token, got %d", c.NArg())
	}
	m, err := usecases.NewSearchService(nil, nil, nil).Recognize(c.Args().First())
	if err != nil {
		return err
	}
	if sm, ok := m.(domain.SpatialMatch); ok {
		p := sm.Point()
		_, err = fmt.Fprintf(c.App.Writer, "%s\t%v\t%v\n", m.Notation(), p.Lat, p.Lng)
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "%s\t%s\n", m.Notation(), c.Args().First())
	return err
}

func scheduleCommand(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return fmt.Errorf("saved search id is required")
	}

	tc, err := client.Dial(client.Options{HostPort: c.String("temporal")})
	if err != nil {
		return fmt.Errorf("temporal client: %w", err)
	}
	defer tc.Close()

	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	runID, err := workflows.NewScheduler(tc, c.String("task-queue"), c.Int("limit")).ScheduleRefresh(ctx, id)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.App.Writer, "workflow %s run %s\n", workflows.WorkflowID(id), runID)
	return err
}
