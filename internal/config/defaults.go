package config

const (
	defaultDataDir           = "~/.local/share/titledoctor"
	defaultLogDir            = "~/.local/share/titledoctor/logs"
	defaultAPIBind           = "127.0.0.1:7489"
	defaultYouTubeBaseURL    = "https://www.googleapis.com/youtube/v3"
	defaultYouTubeTimeout    = 15
	defaultYouTubeMaxVideos  = 5
	defaultYouTubeRPS        = 5.0
	defaultLLMBaseURL        = "https://generativelanguage.googleapis.com/v1beta/openai/chat/completions"
	defaultLLMModel          = "gemini-2.0-flash"
	defaultLLMTimeout        = 60
	defaultEmailBaseURL      = "https://api.resend.com"
	defaultEmailTimeout      = 10
	defaultAutomationCron    = "0 0 * * *"
	defaultDrainTimeout      = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		YouTube: YouTube{
			BaseURL:           defaultYouTubeBaseURL,
			TimeoutSeconds:    defaultYouTubeTimeout,
			MaxVideos:         defaultYouTubeMaxVideos,
			RequestsPerSecond: defaultYouTubeRPS,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeout,
		},
		Email: Email{
			BaseURL:        defaultEmailBaseURL,
			TimeoutSeconds: defaultEmailTimeout,
		},
		Automation: Automation{
			Schedule: defaultAutomationCron,
		},
		Pipeline: Pipeline{
			DrainTimeoutSeconds: defaultDrainTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
