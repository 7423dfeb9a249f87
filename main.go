package main

import (
	"context"
	"log"
	"os"
	"os/signal"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/hellosnippet/config"
	"github.com/milk9111/hellosnippet/script"
	"github.com/milk9111/hellosnippet/snippet"
	"github.com/spf13/cobra"
)

var (
	configPath string
	scriptName string
	frames     int
	watch      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hellosnippet",
		Short: "rigid body hello world: stacks, balls, a trigger and kinematic boxes",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the headless simulation",
		RunE:  runHeadless,
	}
	runCmd.Flags().IntVar(&frames, "frames", snippet.DefaultFrames, "number of steps")
	runCmd.Flags().StringVar(&scriptName, "script", "", "input script (path or embedded name)")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "open the interactive window",
		RunE:  runInteractive,
	}
	playCmd.Flags().BoolVar(&watch, "watch", false, "reload the config file when it changes")

	rootCmd.AddCommand(runCmd, playCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	var input *script.Input
	if scriptName != "" {
		if input, err = script.Load(scriptName); err != nil {
			return err
		}
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return snippet.New(cfg).Run(ctx, frames, input)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	demo := snippet.New(cfg)
	if err := demo.InitPhysics(true); err != nil {
		return err
	}

	var watcher *config.Watcher
	if watch && configPath != "" {
		if watcher, err = config.NewWatcher(configPath); err != nil {
			log.Printf("config: watch disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("hello world snippet")

	game := NewGame(demo, watcher)
	runErr := ebiten.RunGame(game)
	if runErr == errQuit {
		runErr = nil
	}
	if err := demo.CleanupPhysics(); err != nil {
		log.Printf("cleanup: %v", err)
	}
	return runErr
}
