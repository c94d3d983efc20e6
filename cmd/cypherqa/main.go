package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"
	"github.com/pennsieve/cypherqa"
	"github.com/pennsieve/cypherqa/config"
	"github.com/pennsieve/cypherqa/helper"
	"github.com/pennsieve/cypherqa/mcp"
	"github.com/pennsieve/cypherqa/qa"
	"github.com/pennsieve/cypherqa/schedule"
	"github.com/pennsieve/cypherqa/server"
	"github.com/yaoapp/kun/log"
)

var commands = map[string]func(ctx context.Context, cfg *config.Config, args []string) error{
	"query":    runQuery,
	"populate": runPopulate,
	"restore":  runRestore,
	"paths":    runPaths,
	"schema":   runSchema,
	"serve":    runServe,
	"mcp":      runMCP,
	"warmup":   runWarmup,
}

func main() {
	global := flag.NewFlagSet("cypherqa", flag.ExitOnError)
	configFile := global.String("config", "", "Path to a YAML config file (defaults come from the environment)")
	help := global.Bool("help", false, "Show help message")
	global.Usage = printHelp
	global.Parse(os.Args[1:])

	args := global.Args()
	if *help || len(args) == 0 {
		printHelp()
		os.Exit(0)
	}

	command, has := commands[args[0]]
	if !has {
		color.Red("Error: unknown command %q", args[0])
		printHelp()
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		color.Red("Error: %s", err.Error())
		os.Exit(1)
	}
	cfg.ApplyLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command(ctx, cfg, args[1:]); err != nil {
		helper.DumpError(err)
		os.Exit(1)
	}
}

func open(ctx context.Context, cfg *config.Config) (*cypherqa.Engine, error) {
	engine, err := cypherqa.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}
	return engine, nil
}

func runQuery(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("query", flag.ExitOnError)
	question := flags.String("q", "", "The question to answer (required)")
	mode := flags.String("mode", "", "Example mode: paths, queries or both")
	retries := flags.Int("retries", -1, "Maximum repair retries")
	flags.Parse(args)

	if *question == "" {
		return fmt.Errorf("-q flag is required")
	}
	if *mode != "" {
		cfg.Repair.ExampleMode = *mode
	}
	if *retries >= 0 {
		cfg.Repair.MaxRetries = *retries
	}

	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	res, err := engine.ProcessQuery(ctx, *question)
	printResponse(res)
	return err
}

func runWarmup(ctx context.Context, cfg *config.Config, args []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	helper.DumpInfo("Warm-up question: " + cypherqa.WarmupQuestion)
	res, err := engine.Warmup(ctx)
	printResponse(res)
	return err
}

func runPopulate(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("populate", flag.ExitOnError)
	count := flags.Int("n", cfg.Populate.Count, "Number of instance paths to add")
	rebuild := flags.Bool("rebuild", false, "Drop and recreate the collection first")
	flags.Parse(args)

	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Populate(ctx, *count, *rebuild)
	if err != nil {
		return err
	}
	helper.Dump(report)
	return nil
}

func runRestore(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("restore", flag.ExitOnError)
	file := flags.String("file", cfg.Populate.BackupFile, "Backup log to load")
	flags.Parse(args)

	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	report, err := engine.Restore(ctx, *file)
	if err != nil {
		return err
	}
	helper.Dump(report)
	return nil
}

func runPaths(ctx context.Context, cfg *config.Config, args []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, path := range engine.GuidePaths() {
		fmt.Println(path)
	}
	return nil
}

func runSchema(ctx context.Context, cfg *config.Config, args []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	fmt.Println(engine.Schema())
	return nil
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	port := flags.Int("port", cfg.Server.Port, "Listen port")
	flags.Parse(args)

	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()

	if cfg.Populate.Schedule != "" {
		sch, err := schedule.New("populate", cfg.Populate.Schedule, cfg.Populate.Count, engine)
		if err != nil {
			return err
		}
		sch.Start()
		defer sch.Stop()
		log.Info("[Schedule] populate %d paths at %q", cfg.Populate.Count, cfg.Populate.Schedule)
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Router(engine), server.Option{Host: cfg.Server.Host, Port: *port, Timeout: cfg.Server.Timeout})
	go announce(ctx, srv, cfg.Server.Host)
	return srv.Start(ctx)
}

// announce prints the bound address once the server is ready
func announce(ctx context.Context, srv *server.Server, host string) {
	select {
	case <-ctx.Done():
	case e := <-srv.Event():
		if e != server.EventReady {
			return
		}
		if port, err := srv.Port(); err == nil {
			color.Green("Listening on %s:%d", host, port)
		}
	}
}

func runMCP(ctx context.Context, cfg *config.Config, args []string) error {
	engine, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer engine.Close()
	return mcp.ServeStdio(engine)
}

func printResponse(res *cypherqa.Response) {
	if res == nil {
		return
	}
	color.Cyan("Cypher:")
	fmt.Println(res.GeneratedQuery)
	if len(res.AttemptHistory) > 0 {
		color.Yellow("Failed attempts: %d", len(res.AttemptHistory))
		helper.DumpWarn(qa.RenderHistory(res.AttemptHistory))
	}
	color.Cyan("Rows:")
	helper.Dump(res.Rows)
	if res.Answer != "" {
		color.Cyan("Answer:")
		helper.Dump(res.Answer)
	}
}

func printHelp() {
	fmt.Println("Usage: cypherqa [-config file.yml] <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  query -q \"...\" [-mode paths|queries|both] [-retries n]   Answer a question")
	fmt.Println("  populate [-n 10] [-rebuild]                             Add described instance paths")
	fmt.Println("  restore [-file data.txt]                                Load paths from a backup log")
	fmt.Println("  paths                                                   Print the DataGuide paths")
	fmt.Println("  schema                                                  Print the graph schema")
	fmt.Println("  serve [-port 5099]                                      Serve the HTTP API")
	fmt.Println("  mcp                                                     Serve MCP tools over stdio")
	fmt.Println("  warmup                                                  Answer one fixed question")
}
