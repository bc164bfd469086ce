package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/rviewer/internal/figure"
	"github.com/ivlev/rviewer/internal/system"
)

// ErrInvalidSettings marks a settings file that cannot be used.
var ErrInvalidSettings = errors.New("invalid settings")

const DefaultSettingsPath = "settings.yaml"

// Settings are the persistent export settings.
type Settings struct {
	ConversionTool  string        `yaml:"conversion_tool"`
	InkscapePath    string        `yaml:"inkscape_path"`
	RsvgPath        string        `yaml:"rsvg_path"`
	FrameResolution int           `yaml:"frame_resolution"`
	MaxThreads      int           `yaml:"max_threads"`
	BaseTimeout     time.Duration `yaml:"base_timeout"`
	MaxAttempts     int           `yaml:"max_attempts"`
	FFmpegPath      string        `yaml:"ffmpeg_path"`
	VideoEncoder    string        `yaml:"video_encoder"`
	VideoOutput     string        `yaml:"video_output"`
	FramesDir       string        `yaml:"frames_dir"`
	Background      string        `yaml:"background"`
	FontPath        string        `yaml:"font_path"`
}

func DefaultSettings() Settings {
	return Settings{
		ConversionTool:  "rsvg-convert",
		InkscapePath:    "inkscape",
		RsvgPath:        "rsvg-convert",
		FrameResolution: 1080,
		MaxThreads:      system.DefaultWorkers(),
		BaseTimeout:     30 * time.Second,
		MaxAttempts:     3,
		FFmpegPath:      "ffmpeg",
		VideoEncoder:    "libx264",
		VideoOutput:     "video.mp4",
		FramesDir:       "frames",
		Background:      "#292929",
	}
}

// LoadSettings читает настройки из path. Если файла нет, он создается со
// значениями по умолчанию; недостающие ключи дописываются в файл.
func LoadSettings(path string) (Settings, error) {
	def := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		fmt.Printf("[*] Файл настроек %s не найден, создаю по умолчанию\n", path)
		return def, SaveSettings(path, def)
	}
	if err != nil {
		return def, fmt.Errorf("read settings %s: %w", path, err)
	}

	var present map[string]any
	if err := yaml.Unmarshal(data, &present); err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	s := def
	if err := yaml.Unmarshal(data, &s); err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}
	if err := s.Validate(); err != nil {
		return def, fmt.Errorf("%w: %s: %v", ErrInvalidSettings, path, err)
	}

	if missing := missingKeys(present); len(missing) > 0 {
		fmt.Printf("[*] В настройках не хватает ключей %v, дописываю значения по умолчанию\n", missing)
		if err := SaveSettings(path, s); err != nil {
			return s, err
		}
	}
	return s, nil
}

func missingKeys(present map[string]any) []string {
	var out []string
	for _, k := range settingKeys {
		if _, ok := present[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

var settingKeys = []string{
	"conversion_tool", "inkscape_path", "rsvg_path", "frame_resolution",
	"max_threads", "base_timeout", "max_attempts", "ffmpeg_path",
	"video_encoder", "video_output", "frames_dir", "background", "font_path",
}

func SaveSettings(path string, s Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write settings %s: %w", path, err)
	}
	return nil
}

func (s Settings) Validate() error {
	switch {
	case s.FrameResolution <= 0:
		return fmt.Errorf("frame_resolution must be positive, got %d", s.FrameResolution)
	case s.MaxThreads <= 0:
		return fmt.Errorf("max_threads must be positive, got %d", s.MaxThreads)
	case s.MaxAttempts <= 0:
		return fmt.Errorf("max_attempts must be positive, got %d", s.MaxAttempts)
	case s.BaseTimeout <= 0:
		return fmt.Errorf("base_timeout must be positive, got %v", s.BaseTimeout)
	case s.VideoOutput == "":
		return errors.New("video_output is empty")
	case s.FramesDir == "":
		return errors.New("frames_dir is empty")
	}
	if _, err := s.BackgroundColor(); err != nil {
		return fmt.Errorf("background: %v", err)
	}
	return nil
}

// BackgroundColor parses the background setting.
func (s Settings) BackgroundColor() (figure.Color, error) {
	return figure.Hex(s.Background)
}
