package config

const (
	defaultSharedDir                 = "/shared"
	defaultLogDir                    = "~/.local/share/cleaver/logs"
	defaultAPIBind                   = "0.0.0.0:5000"
	defaultFFmpegBinary              = "ffmpeg"
	defaultFFprobeBinary             = "ffprobe"
	defaultVideoCodec                = "libx264"
	defaultPreset                    = "medium"
	defaultAudioCodec                = "aac"
	defaultCutTimeoutSeconds         = 3600
	defaultNotifyRequestTimeout      = 10
	defaultWorkflowQueuePollInterval = 5
	defaultWorkflowErrorRetry        = 10
	defaultWorkflowHeartbeatInterval = 15
	defaultWorkflowHeartbeatTimeout  = 120
	defaultLogFormat                 = "console"
	defaultLogLevel                  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SharedDir: defaultSharedDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			Binary:          defaultFFmpegBinary,
			FFprobeBinary:   defaultFFprobeBinary,
			VideoCodec:      defaultVideoCodec,
			Preset:          defaultPreset,
			AudioCodec:      defaultAudioCodec,
			CutTimeout:      defaultCutTimeoutSeconds,
			ValidateOutputs: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			JobComplete:    true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultWorkflowQueuePollInterval,
			ErrorRetryInterval: defaultWorkflowErrorRetry,
			HeartbeatInterval:  defaultWorkflowHeartbeatInterval,
			HeartbeatTimeout:   defaultWorkflowHeartbeatTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
