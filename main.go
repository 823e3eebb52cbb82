package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"frost/app"
	"frost/hal"
	"frost/internal/config"
)

func main() {
	var (
		hc         hal.HeadlessConfig
		configPath string
		assetRoot  string
		modelPath  string
	)
	flag.BoolVar(&hc.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&hc.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&hc.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&hc.Realtime, "realtime", false, "Pace headless ticks with the wall clock.")
	flag.StringVar(&hc.Snapshot, "snapshot", "", "Write the last headless frame to this PNG file.")
	flag.StringVar(&configPath, "config", "", "Scene configuration (TOML).")
	flag.StringVar(&assetRoot, "assets", "", "Asset directory; overrides the config.")
	flag.StringVar(&modelPath, "model", "", "glTF model to load and frame, relative to the asset directory.")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if assetRoot != "" {
		cfg.Assets.Root = assetRoot
	}
	if modelPath != "" {
		cfg.Model.Path = modelPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var sess *app.Session
	newApp := func(h hal.HAL) (func() error, error) {
		s, err := app.New(ctx, h, cfg, nil)
		if err != nil {
			return nil, err
		}
		sess = s
		return s.Step, nil
	}
	hostCfg := hal.HostConfig{
		Width:  cfg.Window.Width,
		Height: cfg.Window.Height,
		Scale:  cfg.Window.Scale,
		Title:  cfg.Window.Title,
	}

	if hc.Enabled {
		err = hal.RunHeadless(ctx, hostCfg, newApp, hc)
	} else {
		err = hal.RunWindow(hostCfg, newApp)
	}
	if sess != nil {
		if cerr := sess.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
