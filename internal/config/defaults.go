package config

const (
	defaultConfigPath         = "~/.config/zeusmaker/config.toml"
	defaultOutputDir          = "~/zeusmaker/converted"
	defaultLogDir             = "~/.local/share/zeusmaker/logs"
	defaultStateDir           = "~/.local/share/zeusmaker"
	defaultLogRetentionDays   = 30
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultFFprobeBinary      = "ffprobe"
	defaultSegmentDuration    = 60
	defaultOverlapDuration    = 2
	defaultMaxSegments        = 16
	defaultMinSegmentDuration = 30
	defaultVideoQuality       = 5
	defaultAudioQuality       = 5
	defaultPollIntervalMS     = 100
	defaultProgressBuffer     = 1000

	// FFmpegEnvVar overrides ffmpeg.binary when the config leaves it empty.
	FFmpegEnvVar = "ZEUSMAKER_FFMPEG"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			StateDir:  defaultStateDir,
		},
		FFmpeg: FFmpeg{
			FFprobeBinary: defaultFFprobeBinary,
		},
		Conversion: Conversion{
			SegmentDuration:    defaultSegmentDuration,
			OverlapDuration:    defaultOverlapDuration,
			MaxSegments:        defaultMaxSegments,
			MinSegmentDuration: defaultMinSegmentDuration,
			SmartChunking:      true,
			FastMode:           false,
			VideoQuality:       defaultVideoQuality,
			AudioQuality:       defaultAudioQuality,
			PollIntervalMS:     defaultPollIntervalMS,
			ProgressBuffer:     defaultProgressBuffer,
			AdjustForFileSize:  true,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
