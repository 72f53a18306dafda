package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scenecast/internal/bridge"
	"scenecast/internal/build"
	"scenecast/internal/config"
	"scenecast/internal/deps"
	"scenecast/internal/encoding"
	"scenecast/internal/history"
	"scenecast/internal/logging"
	"scenecast/internal/scene"
	"scenecast/internal/services"
	"scenecast/internal/tts"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var themeFlag string
	var nameFlag string
	var keepFrames bool

	cmd := &cobra.Command{
		Use:   "build <script.yaml>",
		Short: "Render a scene script into a narrated video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if keepFrames {
				cfg.Video.KeepFrames = true
			}

			script, err := scene.LoadScript(args[0])
			if err != nil {
				return err
			}
			var opts []scene.Option
			if cfg.TTS.WordsPerMinute > 0 {
				opts = append(opts, scene.WithWordsPerMinute(cfg.TTS.WordsPerMinute))
			}
			scn, err := script.Build(cfg.Video.FPS, opts...)
			if err != nil {
				return err
			}

			if err := preflight(cfg); err != nil {
				return err
			}

			logger, err := logging.New(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				OutputPaths: []string{
					"stderr",
					filepath.Join(cfg.Paths.LogDir, "scenecast.log"),
				},
			})
			if err != nil {
				return err
			}

			var engine tts.Engine
			if cfg.TTS.Enabled {
				engine = tts.CommandEngine{Command: cfg.TTS.Command, Voice: cfg.TTS.Voice}
			}

			var store *history.Store
			if cfg.History.Enabled {
				store, err = history.Open(cfg.History.Path)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			renderer := bridge.CommandBridge{
				Command: cfg.Bridge.Command,
				Args:    cfg.Bridge.Args,
				Theme:   pickTheme(themeFlag, script.Theme, cfg.Bridge.Theme),
			}
			encoder := encoding.NewFFmpeg(cfg.FFmpegBinary())
			prober := encoding.NewProber(cfg.FFprobeBinary())

			progressFn, stopProgress := newProgressFunc(cmd.OutOrStdout())

			orch := build.New(cfg, logger, renderer, encoder, prober, engine, store)
			result, err := orch.Run(cmd.Context(), build.Request{
				Scene:      scn,
				SceneName:  sceneName(nameFlag, script.Name, args[0]),
				Theme:      renderer.Theme,
				OutputPath: outputFlag,
				Progress:   progressFn,
			})
			stopProgress()
			if err != nil {
				details := services.Describe(err)
				return fmt.Errorf("%s failure: %s\nhint: %s", details.Category, details.Message, details.Hint)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Rendered %d frames (%.2fs) in %s\n", result.Frames, result.Duration, result.Elapsed.Round(10*time.Millisecond))
			fmt.Fprintf(out, "Output: %s\n", result.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output video path (default derived from the scene name)")
	cmd.Flags().StringVar(&themeFlag, "theme", "", "Theme override (dark, light)")
	cmd.Flags().StringVar(&nameFlag, "name", "", "Scene name override")
	cmd.Flags().BoolVar(&keepFrames, "keep-frames", false, "Keep the working directory with rendered frames")
	return cmd
}

// preflight fails fast, naming every missing binary, instead of dying partway
// through a render.
func preflight(cfg *config.Config) error {
	missing := deps.Missing(deps.CheckBinaries(deps.ForConfig(cfg)))
	if len(missing) == 0 {
		return nil
	}
	names := make([]string, 0, len(missing))
	for _, status := range missing {
		names = append(names, fmt.Sprintf("%s (%s)", status.Name, status.Detail))
	}
	return fmt.Errorf("missing dependencies: %s; run 'scenecast deps' for details", strings.Join(names, ", "))
}

func pickTheme(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func sceneName(flag, scripted, path string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	if strings.TrimSpace(scripted) != "" {
		return scripted
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
