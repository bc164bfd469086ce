package config

// Config содержит параметры запуска из командной строки.
type Config struct {
	InputPath    string
	SettingsPath string
	Mode         string
	Frame        int
	OutputPath   string
	PreviewPath  string
	PreviewWidth int
	Workers      int
	ShowStats    bool
	BuildVersion string
}

// Режимы работы
const (
	ModePlay    = "play"
	ModePreview = "preview"
	ModeSVG     = "svg"
	ModePNG     = "png"
	ModeSVGAll  = "svg-all"
	ModePNGAll  = "png-all"
	ModeVideo   = "video"
	ModeExport  = "export"
)

var Modes = []string{ModePlay, ModePreview, ModeSVG, ModePNG, ModeSVGAll, ModePNGAll, ModeVideo, ModeExport}

func ValidMode(m string) bool {
	for _, v := range Modes {
		if v == m {
			return true
		}
	}
	return false
}
