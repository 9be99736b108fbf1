package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pvandamm/misinfowatch/internal/collector"
	"github.com/pvandamm/misinfowatch/internal/config"
	"github.com/pvandamm/misinfowatch/internal/drafting"
	"github.com/pvandamm/misinfowatch/internal/fetch"
	"github.com/pvandamm/misinfowatch/internal/llm"
	"github.com/pvandamm/misinfowatch/internal/scheduler"
	"github.com/pvandamm/misinfowatch/internal/scoring"
	"github.com/pvandamm/misinfowatch/internal/store"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st *store.Store, cfg *config.Config, provider llm.Provider, screenshotsDir string) *cli.App {
	return &cli.App{
		Name:    "misinfowatch",
		Usage:   "Collect, score and triage suspected misinformation posts",
		Version: Version,
		Commands: []*cli.Command{
			collectCmd(st, cfg, provider, screenshotsDir),
			rescoreCmd(st, cfg, provider, screenshotsDir),
			draftCmd(st, provider),
			reviewCmd(st),
			listCmd(st),
			showCmd(st),
			deleteCmd(st),
			exportCmd(st),
			statsCmd(st),
			targetsCmd(),
			watchCmd(st, cfg, provider, screenshotsDir),
		},
	}
}

// newCollector wires the full collection pipeline from config.
func newCollector(st *store.Store, cfg *config.Config, provider llm.Provider, screenshotsDir string) *collector.Collector {
	timeout := time.Duration(cfg.Browser.TimeoutSeconds) * time.Second
	return collector.New(
		st,
		scoring.NewScorer(provider),
		fetch.NewChromeFetcher(cfg.Browser.Headless, timeout),
		fetch.NewStaticFetcher(timeout),
		screenshotsDir,
		func(msg string) { fmt.Println(msg) },
	)
}

func collectOptions(cfg *config.Config) collector.Options {
	return collector.Options{
		MaxPostsPerTarget: cfg.Collection.MaxPostsPerTarget,
		ScrollPasses:      cfg.Collection.ScrollPasses,
		ScrollDelay:       time.Duration(cfg.Collection.ScrollDelaySeconds * float64(time.Second)),
		MaxTargets:        cfg.Collection.MaxTargetsPerRun,
	}
}

func collectCmd(st *store.Store, cfg *config.Config, provider llm.Provider, screenshotsDir string) *cli.Command {
	return &cli.Command{
		Name:  "collect",
		Usage: "Run one collection pass over all configured targets",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-posts", Usage: "Max posts per target (overrides config)"},
			&cli.IntFlag{Name: "passes", Usage: "Scroll passes per target (overrides config)"},
			&cli.StringFlag{Name: "target", Usage: "Collect only the named target"},
		},
		Action: func(c *cli.Context) error {
			targets, err := loadTargets()
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if name := c.String("target"); name != "" {
				targets = filterTargets(targets, name)
				if len(targets) == 0 {
					return cli.Exit(fmt.Sprintf("no target named %q", name), 1)
				}
			}
			if len(targets) == 0 {
				return cli.Exit("no targets configured; add one with 'misinfowatch targets add'", 1)
			}

			opts := collectOptions(cfg)
			if v := c.Int("max-posts"); v > 0 {
				opts.MaxPostsPerTarget = v
			}
			if v := c.Int("passes"); v > 0 {
				opts.ScrollPasses = v
			}

			col := newCollector(st, cfg, provider, screenshotsDir)
			res := col.Run(signalContext(), targets, opts)
			return outputJSON(res)
		},
	}
}

func rescoreCmd(st *store.Store, cfg *config.Config, provider llm.Provider, screenshotsDir string) *cli.Command {
	return &cli.Command{
		Name:  "rescore",
		Usage: "Score every post that has no misinformation score yet",
		Action: func(c *cli.Context) error {
			col := newCollector(st, cfg, provider, screenshotsDir)
			n, err := col.RescorePending(signalContext())
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Printf("Scored %d posts\n", n)
			return nil
		},
	}
}

func draftCmd(st *store.Store, provider llm.Provider) *cli.Command {
	return &cli.Command{
		Name:      "draft",
		Usage:     "Generate three rebuttal drafts for a post",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireID(c)
			if err != nil {
				return err
			}
			p, err := st.GetPost(id)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if p == nil {
				return cli.Exit(fmt.Sprintf("post %d not found", id), 1)
			}

			drafter := drafting.NewDrafter(provider)
			drafts := drafter.Generate(signalContext(), p.TextContent, p.Tags, p.Rationale)
			if err := st.UpdatePost(id, store.PostUpdate{Drafts: &drafts}); err != nil {
				return cli.Exit(err.Error(), 1)
			}

			for i, d := range drafts {
				fmt.Printf("--- Draft %d ---\n%s\n\n", i+1, d)
			}
			return nil
		},
	}
}

func reviewCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "review",
		Usage:     "Set the review status of a post (queued|done|skip|needs_research)",
		ArgsUsage: "<id> <status>",
		Action: func(c *cli.Context) error {
			id, err := requireID(c)
			if err != nil {
				return err
			}
			if c.NArg() < 2 {
				return cli.Exit("usage: misinfowatch review <id> <status>", 1)
			}
			status := store.Status(c.Args().Get(1))
			if !store.ValidStatus(status) {
				return cli.Exit(fmt.Sprintf("invalid status %q", status), 1)
			}

			p, err := st.GetPost(id)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if p == nil {
				return cli.Exit(fmt.Sprintf("post %d not found", id), 1)
			}

			if err := st.UpdatePost(id, store.PostUpdate{Status: &status}); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Printf("Post %d -> %s\n", id, status)
			return nil
		},
	}
}

func listCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List posts in the review queue",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status"},
			&cli.IntFlag{Name: "min-score", Value: -1, Usage: "Minimum misinfo score"},
			&cli.IntFlag{Name: "max-score", Value: -1, Usage: "Maximum misinfo score"},
			&cli.BoolFlag{Name: "unscored", Usage: "Only posts with no score yet"},
			&cli.StringFlag{Name: "target", Usage: "Filter by target name"},
			&cli.StringFlag{Name: "search", Usage: "Substring match on text or author"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.StringFlag{Name: "order-by", Value: "collected_at", Usage: "Sort column"},
			&cli.StringFlag{Name: "order-dir", Value: "DESC", Usage: "ASC or DESC"},
			&cli.BoolFlag{Name: "json", Usage: "Output full records as JSON"},
		},
		Action: func(c *cli.Context) error {
			f := store.Filter{
				Unscored:   c.Bool("unscored"),
				TargetName: c.String("target"),
				SearchTerm: c.String("search"),
				Limit:      c.Int("limit"),
				Offset:     c.Int("offset"),
				OrderBy:    c.String("order-by"),
				OrderDir:   c.String("order-dir"),
			}
			if s := c.String("status"); s != "" {
				status := store.Status(s)
				f.Status = &status
			}
			if v := c.Int("min-score"); v >= 0 {
				f.MinScore = &v
			}
			if v := c.Int("max-score"); v >= 0 {
				f.MaxScore = &v
			}

			posts, err := st.ListPosts(f)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			if c.Bool("json") {
				return outputJSON(posts)
			}
			if len(posts) == 0 {
				fmt.Println("No posts match.")
				return nil
			}
			for _, p := range posts {
				fmt.Println(formatPostLine(p))
			}
			return nil
		},
	}
}

func showCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show the full record for a post",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireID(c)
			if err != nil {
				return err
			}
			p, err := st.GetPost(id)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if p == nil {
				return cli.Exit(fmt.Sprintf("post %d not found", id), 1)
			}
			return outputJSON(p)
		},
	}
}

func deleteCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a post and its screenshot",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id, err := requireID(c)
			if err != nil {
				return err
			}
			if err := st.DeletePost(id); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			fmt.Printf("Deleted post %d\n", id)
			return nil
		},
	}
}

func exportCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export posts to CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output file (default: stdout)"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by status"},
			&cli.IntFlag{Name: "min-score", Value: -1, Usage: "Minimum misinfo score"},
		},
		Action: func(c *cli.Context) error {
			f := store.Filter{OrderBy: "id", OrderDir: "ASC"}
			if s := c.String("status"); s != "" {
				status := store.Status(s)
				f.Status = &status
			}
			if v := c.Int("min-score"); v >= 0 {
				f.MinScore = &v
			}

			posts, err := st.ListPosts(f)
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}

			out := os.Stdout
			if path := c.String("path"); path != "" {
				file, err := os.Create(path)
				if err != nil {
					return cli.Exit(err.Error(), 1)
				}
				defer file.Close()
				out = file
			}

			if err := store.ExportCSV(out, posts); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			if c.String("path") != "" {
				fmt.Fprintf(os.Stderr, "Exported %d posts to %s\n", len(posts), c.String("path"))
			}
			return nil
		},
	}
}

func statsCmd(st *store.Store) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show queue totals and score distribution",
		Action: func(c *cli.Context) error {
			stats, err := st.Stats()
			if err != nil {
				return cli.Exit(err.Error(), 1)
			}
			return outputJSON(stats)
		},
	}
}

func targetsCmd() *cli.Command {
	return &cli.Command{
		Name:  "targets",
		Usage: "Manage the collection target list",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List configured targets",
				Action: func(c *cli.Context) error {
					targets, err := loadTargets()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					if len(targets) == 0 {
						fmt.Println("No targets configured.")
						return nil
					}
					for _, t := range targets {
						fmt.Printf("%-24s %-8s %s\n", t.Name, t.Type, t.URL)
					}
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add a target",
				ArgsUsage: "<name> <url>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Value: "page", Usage: "Target type: page|group|search|static"},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() < 2 {
						return cli.Exit("usage: misinfowatch targets add <name> <url>", 1)
					}
					name, url := c.Args().Get(0), c.Args().Get(1)

					path, err := config.TargetsPath()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					targets, err := config.LoadTargets(path)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					for _, t := range targets {
						if t.Name == name {
							return cli.Exit(fmt.Sprintf("target %q already exists", name), 1)
						}
					}
					targets = append(targets, config.Target{Name: name, URL: url, Type: c.String("type")})
					if err := config.SaveTargets(path, targets); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Printf("Added target %s\n", name)
					return nil
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a target by name",
				ArgsUsage: "<name>",
				Action: func(c *cli.Context) error {
					if c.NArg() < 1 {
						return cli.Exit("usage: misinfowatch targets remove <name>", 1)
					}
					name := c.Args().First()

					path, err := config.TargetsPath()
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					targets, err := config.LoadTargets(path)
					if err != nil {
						return cli.Exit(err.Error(), 1)
					}
					kept := targets[:0]
					for _, t := range targets {
						if t.Name != name {
							kept = append(kept, t)
						}
					}
					if len(kept) == len(targets) {
						return cli.Exit(fmt.Sprintf("no target named %q", name), 1)
					}
					if err := config.SaveTargets(path, kept); err != nil {
						return cli.Exit(err.Error(), 1)
					}
					fmt.Printf("Removed target %s\n", name)
					return nil
				},
			},
		},
	}
}

func watchCmd(st *store.Store, cfg *config.Config, provider llm.Provider, screenshotsDir string) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Run collection on a schedule until interrupted",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "interval", Usage: "Hours between runs (overrides config)"},
			&cli.BoolFlag{Name: "now", Usage: "Run a collection pass immediately on start"},
		},
		Action: func(c *cli.Context) error {
			interval := cfg.Schedule.IntervalHours
			if v := c.Int("interval"); v > 0 {
				interval = v
			}

			col := newCollector(st, cfg, provider, screenshotsDir)
			job := func(ctx context.Context) error {
				targets, err := loadTargets()
				if err != nil {
					return err
				}
				if len(targets) == 0 {
					fmt.Println("No targets configured, skipping run")
					return nil
				}
				res := col.Run(ctx, targets, collectOptions(cfg))
				fmt.Printf("Run finished: %d targets, %d posts, %d errors\n",
					res.TargetsProcessed, res.PostsCollected, len(res.Errors))
				return nil
			}

			sched := scheduler.New()
			if err := sched.AddCollectJob(interval, job); err != nil {
				return cli.Exit(err.Error(), 1)
			}
			sched.Start()
			defer sched.Stop()

			if c.Bool("now") {
				if err := sched.RunNow("collect", job); err != nil {
					fmt.Fprintf(os.Stderr, "Initial run failed: %v\n", err)
				}
			}

			fmt.Printf("Watching %d-hourly; Ctrl-C to stop\n", interval)
			<-signalContext().Done()
			col.Stop()
			return nil
		},
	}
}

// Helper functions

func loadTargets() ([]config.Target, error) {
	path, err := config.TargetsPath()
	if err != nil {
		return nil, err
	}
	return config.LoadTargets(path)
}

func filterTargets(targets []config.Target, name string) []config.Target {
	var out []config.Target
	for _, t := range targets {
		if t.Name == name {
			out = append(out, t)
		}
	}
	return out
}

func requireID(c *cli.Context) (int64, error) {
	if c.NArg() < 1 {
		return 0, cli.Exit("post id required", 1)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil {
		return 0, cli.Exit(fmt.Sprintf("invalid post id %q", c.Args().First()), 1)
	}
	return id, nil
}

func formatPostLine(p store.Post) string {
	score := "  -"
	if p.MisinfoScore != nil {
		score = fmt.Sprintf("%3d", *p.MisinfoScore)
	}
	text := strings.ReplaceAll(p.TextContent, "\n", " ")
	r := []rune(text)
	if len(r) > 60 {
		text = string(r[:60]) + "..."
	}
	return fmt.Sprintf("#%-5d %s %-14s %-16s %s", p.ID, score, p.Status, p.TargetName, text)
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}
