package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ark_manager/config"
	"ark_manager/internal/logger"
	"ark_manager/internal/manager"
	"ark_manager/internal/steam"
	"ark_manager/model"
)

const usage = `Usage: ark_manager [flags] <command> [args]

Commands:
  list                        List all server profiles
  create <name> <dir>         Create a new server profile
  import <dir>                Import a profile from an existing installation
  write-inis <name>           Write a server's configuration to its INI files
  command-line <name>         Print the command line a server would launch with
  start <name>                Write INIs, launch the server, and monitor it
  stop <name>                 Gracefully stop a running server
  install <name>              Install or update a server via steamcmd
  validate <name>             Verify a server's installed files via steamcmd
  status <name>               Show a server's install state
  check-mods                  Check all servers for mod updates
  players <name>              List the players connected to a server
  rcon <name> <command...>    Run an admin command on a server
`

func main() {
	var (
		configFile  = flag.String("config", "config.json", "Configuration file path")
		logLevel    = flag.String("log-level", "", "Log level (debug, info, warn, error)")
		importINIs  = flag.Bool("import-inis", true, "Read existing INI values when importing a server")
		useAPI      = flag.Bool("server-api", false, "Launch through the server API loader")
		steamCmdDir = flag.String("steamcmd", "", "steamcmd directory (overrides config)")
	)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	level := cfg.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if level != "" {
		log = logger.NewWithLevel(logger.ParseLevel(level))
	}

	if *steamCmdDir != "" {
		cfg.SteamCmdDirectory = *steamCmdDir
	}
	if _, err := os.Stat(cfg.SteamCmdDirectory); os.IsNotExist(err) {
		detector := steam.NewDetector(log)
		if detected := detector.DetectSteamCmdDirectory(); detected != "" {
			cfg.SteamCmdDirectory = detected
		}
	}

	mgr, err := manager.New(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize: %v", err)
	}
	defer mgr.Shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupt
		log.Info("Shutting down...")
		cancel()
	}()

	if err := run(ctx, mgr, log, *importINIs, *useAPI, flag.Args()); err != nil {
		log.Fatal("%v", err)
	}
}

func run(ctx context.Context, mgr *manager.Manager, log *logger.Logger, importINIs, useAPI bool, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return fmt.Errorf("no command given")
	}

	command, args := args[0], args[1:]
	switch command {
	case "list":
		return runList(mgr)
	case "create":
		if len(args) != 2 {
			return fmt.Errorf("create requires a name and an installation directory")
		}
		settings, err := mgr.CreateServer(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Created server %s (%s)\n", settings.Name, settings.ID)
		return nil
	case "import":
		if len(args) != 1 {
			return fmt.Errorf("import requires an installation directory")
		}
		settings, err := mgr.ImportServer(args[0], importINIs)
		if err != nil {
			return err
		}
		fmt.Printf("Imported server %s (%s) with %d settings\n",
			settings.Name, settings.ID, len(settings.ConfigEntries.Entries))
		return nil
	case "write-inis":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		return mgr.WriteINIs(settings)
	case "command-line":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		cmdArgs, err := mgr.CommandLine(settings)
		if err != nil {
			return err
		}
		fmt.Println(strings.Join(cmdArgs, " "))
		return nil
	case "start":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		if err := mgr.StartServer(settings, useAPI); err != nil {
			return err
		}
		log.Info("Server %s started, monitoring until interrupted", settings.Name)
		<-ctx.Done()
		return nil
	case "stop":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		return mgr.StopServer(ctx, settings)
	case "install", "validate":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		return mgr.InstallServer(ctx, settings, command == "validate", func(state model.InstallState) {
			switch state.Status {
			case model.InstallStatusDownloading:
				log.Info("Downloading: %.1f%%", state.Progress)
			case model.InstallStatusVerifying:
				log.Info("Verifying: %.1f%%", state.Progress)
			}
		})
	case "status":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		state := mgr.InstallState(settings)
		switch state.Status {
		case model.InstallStatusInstalled:
			fmt.Printf("%s: installed (updated %s)\n", settings.Name, state.Version)
		case model.InstallStatusFailedValidation:
			fmt.Printf("%s: broken install (%s)\n", settings.Name, state.Error)
		default:
			fmt.Printf("%s: not installed\n", settings.Name)
		}
		return nil
	case "check-mods":
		return runCheckMods(ctx, mgr)
	case "players":
		settings, err := namedServer(mgr, args)
		if err != nil {
			return err
		}
		players, err := mgr.Players(ctx, settings)
		if err != nil {
			return err
		}
		if len(players) == 0 {
			fmt.Println("No players connected")
			return nil
		}
		for _, player := range players {
			fmt.Printf("%3d. %s (%s)\n", player.PlayerNum, player.UserName, player.UserID)
		}
		return nil
	case "rcon":
		if len(args) < 2 {
			return fmt.Errorf("rcon requires a server name and a command")
		}
		settings, err := mgr.FindServerByName(args[0])
		if err != nil {
			return err
		}
		response, err := mgr.RunCommand(ctx, settings, strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Println(response)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func namedServer(mgr *manager.Manager, args []string) (*model.ServerSettings, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expected a server name")
	}
	return mgr.FindServerByName(args[0])
}

func runList(mgr *manager.Manager) error {
	servers := mgr.Servers()
	if len(servers) == 0 {
		fmt.Println("No server profiles")
		return nil
	}
	for _, s := range servers {
		state := mgr.RunState(s.ID)
		fmt.Printf("%-30s %-10s %s\n", s.Name, state.Status, s.GetFullInstallationLocation())
	}
	return nil
}

func runCheckMods(ctx context.Context, mgr *manager.Manager) error {
	statuses, err := mgr.CheckMods(ctx)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Println("No mods installed")
		return nil
	}
	for _, status := range statuses {
		settings, err := mgr.Server(status.ServerID)
		name := status.ServerID.String()
		if err == nil {
			name = settings.Name
		}
		fmt.Printf("%s:\n", name)
		for _, mod := range status.ModStatuses {
			label := mod.Name
			if label == "" {
				label = fmt.Sprintf("project %d", mod.ProjectID)
			}
			fmt.Printf("  %-40s %s\n", label, mod.Status)
		}
	}
	return nil
}
