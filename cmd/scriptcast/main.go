/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"scriptcast/internal/assemble"
	"scriptcast/internal/audio"
	"scriptcast/internal/config"
	"scriptcast/internal/crash"
	"scriptcast/internal/export"
	applog "scriptcast/internal/log"
	"scriptcast/internal/pipeline"
	"scriptcast/internal/render"
	"scriptcast/internal/storage"
	"scriptcast/internal/version"
)

func usage() {
	fmt.Println("ScriptCast — text-to-video pipeline")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scriptcast run <script.txt> <out.mp4>           Run the full pipeline")
	fmt.Println("  scriptcast parse <script.txt> <scenes.json>     Parse a script to scenes.json")
	fmt.Println("  scriptcast render <scenes.json> <frames_dir>    Render placeholder frames")
	fmt.Println("  scriptcast synth <scenes.json> <out.wav>        Synthesize the narration track")
	fmt.Println("  scriptcast assemble <frames_dir> <audio> <out>  Mux frames and audio into a video")
	fmt.Println("  scriptcast storyboard <scenes.json> <out.pdf>   Export a storyboard PDF")
	fmt.Println("  scriptcast config show                          Print the effective configuration")
	fmt.Println("  scriptcast config save                          Persist the effective configuration")
	fmt.Println("  scriptcast config set-token <token>             Store the fallback TTS token in the OS keychain")
	fmt.Println("  scriptcast config clear-token                   Remove the stored fallback TTS token")
	fmt.Println("  scriptcast version|-v|--version                 Show version")
	fmt.Println()
	fmt.Println("Common flags (after the subcommand): -fps N, -voice NAME, -rate WPM, -work DIR, -title TEXT")
}

func main() {
	cfg, token, err := config.Load()
	if err != nil {
		cfg = config.Defaults()
	}
	applog.Init(applog.Options{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.Source,
		File:      cfg.Logging.File,
	})
	l := applog.WithComponent("cli")
	defer func() { crash.Recover("") }()

	args := os.Args
	if len(args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("ScriptCast — text-to-video pipeline")
		fmt.Println(version.String())
		return

	case "run":
		fs := flag.NewFlagSet("run", flag.ExitOnError)
		fps := fs.Int("fps", cfg.Pipeline.FPS, "output frame rate")
		work := fs.String("work", cfg.Pipeline.OutputDir, "work directory for intermediate files (default: temp)")
		voice := fs.String("voice", cfg.Speech.Voice, "TTS voice")
		rate := fs.Int("rate", cfg.Speech.Rate, "TTS rate in words per minute")
		scriptPath, outPath := parseTwo(fs, args[2:], "run requires <script.txt> and <out.mp4>")

		l.Info("pipeline run", slog.String("script", scriptPath), slog.String("out", outPath))
		speech := cfg.Speech
		speech.Voice = *voice
		speech.Rate = *rate
		err = pipeline.Run(ctx, scriptPath, outPath, pipeline.Options{
			FPS:         *fps,
			WorkDir:     *work,
			Speech:      speech,
			SpeechToken: token,
		})
		exitOn(l, err)
		fmt.Println("Complete! Output:", outPath)

	case "parse":
		fs := flag.NewFlagSet("parse", flag.ExitOnError)
		scriptPath, outPath := parseTwo(fs, args[2:], "parse requires <script.txt> and <scenes.json>")

		doc, perr := pipeline.ParseToFile(scriptPath, outPath)
		exitOn(l, perr)
		fmt.Printf("Parsed %d scene(s) to %s\n", len(doc.Scenes), outPath)

	case "render":
		fs := flag.NewFlagSet("render", flag.ExitOnError)
		fps := fs.Int("fps", cfg.Pipeline.FPS, "output frame rate")
		scenesPath, framesDir := parseTwo(fs, args[2:], "render requires <scenes.json> and <frames_dir>")

		doc, lerr := storage.LoadScenes(scenesPath)
		exitOn(l, lerr)
		exitOn(l, render.Frames(doc, framesDir, *fps))
		fmt.Println("Frames written to", framesDir)

	case "synth":
		fs := flag.NewFlagSet("synth", flag.ExitOnError)
		voice := fs.String("voice", cfg.Speech.Voice, "TTS voice")
		rate := fs.Int("rate", cfg.Speech.Rate, "TTS rate in words per minute")
		scenesPath, outPath := parseTwo(fs, args[2:], "synth requires <scenes.json> and <out.wav>")

		doc, lerr := storage.LoadScenes(scenesPath)
		exitOn(l, lerr)
		text := doc.NarrationText()
		if strings.TrimSpace(text) == "" {
			text = audio.DefaultNarration
		}
		synth := audio.NewSynthesizer(*voice, *rate, cfg.Speech.FallbackURL, token)
		exitOn(l, synth.Synthesize(ctx, text, outPath))
		if secs, derr := audio.Duration(ctx, outPath); derr == nil {
			fmt.Printf("Narration written to %s (%.1fs)\n", outPath, secs)
		} else {
			fmt.Println("Narration written to", outPath)
		}

	case "assemble":
		fs := flag.NewFlagSet("assemble", flag.ExitOnError)
		fps := fs.Int("fps", cfg.Pipeline.FPS, "output frame rate")
		if err := fs.Parse(args[2:]); err != nil || fs.NArg() < 3 {
			fmt.Println("assemble requires <frames_dir>, <audio> and <out>")
			usage()
			os.Exit(2)
		}
		exitOn(l, assemble.Video(ctx, fs.Arg(0), fs.Arg(1), fs.Arg(2), *fps))
		fmt.Println("Video written to", fs.Arg(2))

	case "storyboard":
		fs := flag.NewFlagSet("storyboard", flag.ExitOnError)
		title := fs.String("title", "", "storyboard title")
		fps := fs.Int("fps", cfg.Pipeline.FPS, "frame rate shown in timing info")
		scenesPath, outPath := parseTwo(fs, args[2:], "storyboard requires <scenes.json> and <out.pdf>")

		doc, lerr := storage.LoadScenes(scenesPath)
		exitOn(l, lerr)
		exitOn(l, export.Storyboard(doc, outPath, export.StoryboardOptions{Title: *title, FPS: *fps}))
		fmt.Println("Storyboard written to", outPath)

	case "config":
		if len(args) < 3 {
			fmt.Println("config requires a subcommand: show, save, set-token, clear-token")
			usage()
			os.Exit(2)
		}
		switch args[2] {
		case "show":
			out, merr := yaml.Marshal(cfg)
			exitOn(l, merr)
			fmt.Print(string(out))
			if token != "" {
				fmt.Println("# fallback TTS token: stored in OS keychain")
			}
		case "save":
			exitOn(l, config.Save(cfg, token))
			path, _ := config.ConfigPath()
			fmt.Println("Configuration written to", path)
		case "set-token":
			if len(args) < 4 || strings.TrimSpace(args[3]) == "" {
				fmt.Println("set-token requires a non-empty <token>")
				os.Exit(2)
			}
			exitOn(l, config.Save(cfg, args[3]))
			fmt.Println("Token stored in OS keychain")
		case "clear-token":
			exitOn(l, config.ClearToken())
			fmt.Println("Token removed from OS keychain")
		default:
			fmt.Println("Unknown config subcommand:", args[2])
			usage()
			os.Exit(2)
		}

	default:
		fmt.Println("Unknown command:", args[1])
		usage()
		os.Exit(2)
	}
}

// parseTwo parses flags and requires exactly the two leading positional
// arguments every file-to-file subcommand takes.
func parseTwo(fs *flag.FlagSet, args []string, req string) (string, string) {
	if err := fs.Parse(args); err != nil || fs.NArg() < 2 {
		fmt.Println(req)
		usage()
		os.Exit(2)
	}
	return fs.Arg(0), fs.Arg(1)
}

func exitOn(l *slog.Logger, err error) {
	if err == nil {
		return
	}
	l.Error("command failed", slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
