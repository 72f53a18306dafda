package config

const (
	defaultWorkingDir     = "~/.local/share/scenecast/work"
	defaultOutputDir      = "~/videos/scenecast"
	defaultLogDir         = "~/.local/share/scenecast/logs"
	defaultHistoryPath    = "~/.local/share/scenecast/history.db"
	defaultWidth          = 1920
	defaultHeight         = 1080
	defaultFPS            = 30
	defaultQuality        = 18
	defaultVideoEncoder   = "libx264"
	defaultSampleRate     = 44100
	defaultChannels       = 1
	defaultWordsPerMinute = 150
	defaultLogLevel       = "info"
	defaultLogFormat      = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkingDir: defaultWorkingDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
		},
		Video: Video{
			Width:   defaultWidth,
			Height:  defaultHeight,
			FPS:     defaultFPS,
			Quality: defaultQuality,
			Encoder: defaultVideoEncoder,
		},
		Audio: Audio{
			SampleRate: defaultSampleRate,
			Channels:   defaultChannels,
		},
		TTS: TTS{
			Enabled:        false,
			WordsPerMinute: defaultWordsPerMinute,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
