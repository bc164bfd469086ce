package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/rviewer/internal/canvas"
	"github.com/ivlev/rviewer/internal/config"
	"github.com/ivlev/rviewer/internal/export"
	"github.com/ivlev/rviewer/internal/geom"
	"github.com/ivlev/rviewer/internal/player"
	"github.com/ivlev/rviewer/internal/scene"
	"github.com/ivlev/rviewer/internal/source"
	"github.com/ivlev/rviewer/internal/system"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	inputPtr := flag.String("input", "-", "Источник протокола: файл, '-' (stdin), 'latest' (самый свежий .txt в input/) или mqtt://host:port/topic")
	settingsPtr := flag.String("settings", config.DefaultSettingsPath, "Файл настроек YAML")
	modePtr := flag.String("mode", config.ModePlay, "Режим: "+strings.Join(config.Modes, ", "))
	framePtr := flag.Int("frame", 0, "Номер кадра для режимов preview, svg, png (с нуля)")
	outputPtr := flag.String("output", "", "Путь к результату для одиночного кадра")
	previewPtr := flag.String("preview", "", "PNG, в который плеер пишет текущий кадр")
	previewWidthPtr := flag.Int("preview-width", 800, "Ширина превью в пикселях")
	workersPtr := flag.Int("workers", 0, "Потоки растеризации (0 - из настроек)")
	statsPtr := flag.Bool("stats", false, "Показать статистику производительности")
	flag.Parse()

	cfg := &config.Config{
		InputPath:    *inputPtr,
		SettingsPath: *settingsPtr,
		Mode:         *modePtr,
		Frame:        *framePtr,
		OutputPath:   *outputPtr,
		PreviewPath:  *previewPtr,
		PreviewWidth: *previewWidthPtr,
		Workers:      *workersPtr,
		ShowStats:    *statsPtr,
		BuildVersion: buildVersion,
	}
	if !config.ValidMode(cfg.Mode) {
		log.Fatalf("[-] Неизвестный режим %q. Доступны: %s", cfg.Mode, strings.Join(config.Modes, ", "))
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("[-] Ошибка настроек: %v", err)
	}
	if cfg.Workers > 0 {
		settings.MaxThreads = cfg.Workers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, settings); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, settings config.Settings) error {
	start := time.Now()

	in, err := source.Open(ctx, cfg.InputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	var renderer *canvas.Renderer
	if cfg.Mode == config.ModePreview || (cfg.Mode == config.ModePlay && cfg.PreviewPath != "") {
		renderer, err = canvas.New(settings.FontPath)
		if err != nil {
			return err
		}
		defer renderer.Close()
	}

	s := scene.New()
	var unparsed int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.Ingest(gctx, in, nil)
		unparsed = n
		return err
	})
	if cfg.Mode == config.ModePlay {
		p := player.New(s)
		p.Renderer = renderer
		p.PreviewPath = cfg.PreviewPath
		p.PreviewWidth = cfg.PreviewWidth
		p.OnFrame = func(frame, total int) {
			fmt.Printf("[>] Кадр %d/%d\n", frame+1, total)
		}
		g.Go(func() error { return p.Run(gctx) })
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	loaded := time.Now()

	fmt.Printf("[*] Загружено кадров: %d, объектов: %d\n", s.FrameCount(), s.ObjectCount())
	if unparsed > 0 {
		fmt.Printf("[!] Не разобрано строк: %d\n", unparsed)
	}
	if ctx.Err() != nil {
		log.Printf("[!] Прервано")
		return nil
	}

	// Сбой экспорта не фатален: кадры, которые удалось сохранить, остаются
	if err := runMode(ctx, cfg, settings, s, renderer); err != nil {
		log.Printf("[!] Режим %s завершился с ошибкой: %v", cfg.Mode, err)
	}

	if cfg.ShowStats {
		printStats(cfg, s, start, loaded)
	}
	return nil
}

func runMode(ctx context.Context, cfg *config.Config, settings config.Settings, s *scene.Scene, renderer *canvas.Renderer) error {
	if cfg.Mode == config.ModePlay {
		return nil
	}
	if cfg.Mode == config.ModePreview {
		out := orDefault(cfg.OutputPath, fmt.Sprintf("frame_%05d.png", cfg.Frame+1))
		size := s.Size()
		w := float64(cfg.PreviewWidth)
		h := w
		if size.X > 0 {
			h = max(1, float64(int(w*size.Y/size.X)))
		}
		if err := renderer.SavePNG(out, s, cfg.Frame, geom.FitView(size, w, h)); err != nil {
			return err
		}
		fmt.Printf("[+++] Успех! Превью сохранено: %s\n", out)
		return nil
	}

	exp, err := export.New(s, settings)
	if err != nil {
		return err
	}

	switch cfg.Mode {
	case config.ModeSVG:
		out := orDefault(cfg.OutputPath, fmt.Sprintf("frame_%05d.svg", cfg.Frame+1))
		if err := exp.SaveFrameSVG(cfg.Frame, out); err != nil {
			return err
		}
		fmt.Printf("[+++] Успех! Кадр сохранен: %s\n", out)
	case config.ModePNG:
		out := orDefault(cfg.OutputPath, fmt.Sprintf("frame_%05d.png", cfg.Frame+1))
		if err := exp.SaveFramePNG(ctx, cfg.Frame, out); err != nil {
			return err
		}
		fmt.Printf("[+++] Успех! Кадр сохранен: %s\n", out)
	case config.ModeSVGAll:
		if err := exp.SaveAllSVG(ctx); err != nil {
			return err
		}
		fmt.Printf("[+++] Успех! Кадры сохранены в %s\n", settings.FramesDir)
	case config.ModePNGAll:
		rep, err := exp.SaveAllPNG(ctx)
		if err != nil {
			return err
		}
		reportBatch(rep, settings.FramesDir)
	case config.ModeVideo:
		return exp.MakeVideo(ctx)
	case config.ModeExport:
		rep, err := exp.ExportVideo(ctx)
		reportBatch(rep, settings.FramesDir)
		return err
	}
	return nil
}

func reportBatch(rep export.Report, dir string) {
	if len(rep.Failed) > 0 {
		log.Printf("[!] Не удалось сохранить кадры: %v", rep.Failed)
	}
	fmt.Printf("[*] Сохранено PNG: %d/%d в %s\n", rep.Saved, rep.Total, dir)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func printStats(cfg *config.Config, s *scene.Scene, start, loaded time.Time) {
	total := time.Since(start)
	used, all, err := system.MemoryUsage()
	mem := "n/a"
	if err == nil {
		mem = fmt.Sprintf("%d/%d MiB", used, all)
	}
	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Total Time: %.2fs\n"+
			"Loading: %.2fs\n"+
			"Export: %.2fs\n"+
			"Frames: %d | Objects: %d\n"+
			"Memory: %s\n"+
			"----------------------------\n",
		cfg.BuildVersion, total.Seconds(), loaded.Sub(start).Seconds(), time.Since(loaded).Seconds(),
		s.FrameCount(), s.ObjectCount(), mem,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Input: %s | Mode: %s | Frames: %d | Total: %.2fs\n",
		time.Now().Format("2006-01-02 15:04:05"),
		cfg.BuildVersion,
		filepath.Base(cfg.InputPath),
		cfg.Mode,
		s.FrameCount(),
		total.Seconds(),
	)
	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
