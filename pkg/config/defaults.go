package config

const (
	defaultListen       = ":8000"
	defaultClientTarget = "http://localhost:8000"

	defaultBaseURL        = "http://127.0.0.1:1234/v1"
	defaultTimeoutSeconds = 60

	defaultWordMin = 5
	defaultWordMax = 15
	defaultRetries = 2

	defaultTargetLanguage = "zh-TW"

	defaultWhisperThreads  = 4
	defaultWhisperBeamSize = 5
	defaultWhisperBestOf   = 5
	defaultWhisperLanguage = "en"
	defaultSampleRate      = 22050

	defaultAudioDir    = "./data/audio"
	defaultAuditDriver = "memory"
)

const defaultSystemPrompt = "You are a friendly English conversation partner " +
	"helping a learner practise speaking. Reply in two or three sentences using " +
	"a total of 5 to 15 English words. Do not use quotation marks, apostrophes, " +
	"emoji, special symbols, or bullet lists. Ask a short follow-up question when " +
	"it keeps the conversation going."

const defaultTranslatePrompt = "You are a translation engine. Translate the " +
	"text the user sends into {target_language}. Reply with the translation " +
	"only, without explanations or romanization."

const defaultGrammarPrompt = "You are an English grammar teacher reviewing a " +
	"learner's sentence. Reply with a single JSON object and nothing else: " +
	`{"is_correct": boolean, "feedback": string, "suggestion": string}. ` +
	"Keep the feedback short and encouraging. Leave the suggestion empty when " +
	"the sentence is already correct."

const defaultDictionaryPrompt = "You are a learner's dictionary. The user " +
	"sends a JSON object with a word and, optionally, the sentence it appeared " +
	"in. Reply with a single JSON object and nothing else: " +
	`{"headword": string, "part_of_speech": string, "definition": string, ` +
	`"examples": [string], "phonetics": [string], "notes": string}. ` +
	"Give at most three short example sentences."

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Client: ClientConfig{
			Target: defaultClientTarget,
		},
		LLM: LLMConfig{
			BaseURL:        defaultBaseURL,
			TimeoutSeconds: defaultTimeoutSeconds,
			SystemPrompt:   defaultSystemPrompt,
		},
		Constraint: ConstraintConfig{
			WordMin: defaultWordMin,
			WordMax: defaultWordMax,
			Retries: defaultRetries,
		},
		Translate: TranslateConfig{
			Prompt:         defaultTranslatePrompt,
			TargetLanguage: defaultTargetLanguage,
		},
		Grammar: GrammarConfig{
			Prompt: defaultGrammarPrompt,
		},
		Dictionary: DictionaryConfig{
			Prompt: defaultDictionaryPrompt,
		},
		Speech: SpeechConfig{
			Language:   defaultWhisperLanguage,
			Threads:    defaultWhisperThreads,
			BeamSize:   defaultWhisperBeamSize,
			BestOf:     defaultWhisperBestOf,
			SampleRate: defaultSampleRate,
		},
		Audio: AudioConfig{
			Dir: defaultAudioDir,
		},
		Audit: AuditConfig{
			Driver: defaultAuditDriver,
		},
	}
}
