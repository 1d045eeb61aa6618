package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "Asia/Seoul"
	configPathEnv   = "INBOX_SCHEDULER_CONFIG"
	judgeAPIKeyEnv  = "JUDGE_API_KEY"
	judgeModelEnv   = "JUDGE_MODEL"
	gmailCredsEnv   = "GMAIL_CREDENTIALS_FILE"
	gmailTokenEnv   = "GMAIL_TOKEN_FILE"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Run        RunConfig        `yaml:"run"`
	Gmail      GmailConfig      `yaml:"gmail"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	State      StateConfig      `yaml:"state"`
	Judge      JudgeConfig      `yaml:"judge"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Temporal   TemporalConfig   `yaml:"temporal"`
	Title      TitleConfig      `yaml:"title"`
	Vocab      VocabConfig      `yaml:"vocab"`
}

// LoggingConfig controls slog construction.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// RunConfig bounds a single batch run.
type RunConfig struct {
	MaxMessages  int            `yaml:"maxMessages"`
	LookbackDays int            `yaml:"lookbackDays"`
	Timezone     string         `yaml:"timezone"`
	location     *time.Location `yaml:"-"`
}

// Location resolves the target timezone string to a time.Location.
func (r RunConfig) Location() *time.Location {
	if r.location != nil {
		return r.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// GmailConfig wires the message source.
type GmailConfig struct {
	CredentialsFile string `yaml:"credentialsFile"`
	TokenFile       string `yaml:"tokenFile"`
	Query           string `yaml:"query"`
}

// CalendarConfig wires the event sink.
type CalendarConfig struct {
	CalendarID string `yaml:"calendarId"`
}

// StateConfig locates the persisted ledger and audit log.
type StateConfig struct {
	StatePath string `yaml:"statePath"`
	AuditPath string `yaml:"auditPath"`
}

// JudgeConfig defines how to contact the external semantic-judgment API.
type JudgeConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// ClassifierConfig selects and tunes the terminal classification strategy.
// Mode is one of "auto", "heuristic", "trained": auto prefers the trained
// classifier whenever enough audit history exists.
type ClassifierConfig struct {
	Mode            string  `yaml:"mode"`
	TrainedMinClass int     `yaml:"trainedMinClass"`
	TrainedAccept   float64 `yaml:"trainedAccept"`
	CheckSender     bool    `yaml:"checkSender"`
}

// TemporalConfig tunes date/time extraction.
type TemporalConfig struct {
	ProximityWindow int  `yaml:"proximityWindow"`
	RequireContext  bool `yaml:"requireContext"`
}

// TitleConfig bounds event-title derivation.
type TitleConfig struct {
	ScanLines int    `yaml:"scanLines"`
	MinLen    int    `yaml:"minLen"`
	MaxLen    int    `yaml:"maxLen"`
	Fallback  string `yaml:"fallback"`
}

// VocabConfig carries the fixed keyword/phrase tables, loaded once at startup
// so locale extension never touches pipeline logic.
type VocabConfig struct {
	ActionTerms        []string `yaml:"actionTerms"`
	CompletionPhrases  []string `yaml:"completionPhrases"`
	HardExcludePhrases []string `yaml:"hardExcludePhrases"`
	HardExcludeSenders []string `yaml:"hardExcludeSenders"`
	StrongTerms        []string `yaml:"strongTerms"`
	NoiseTerms         []string `yaml:"noiseTerms"`
	ScheduleContext    []string `yaml:"scheduleContext"`
	TitleBoilerplate   []string `yaml:"titleBoilerplate"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

// Rebind revalidates derived fields after programmatic overrides such as CLI
// flags changing the timezone string.
func Rebind(cfg Config) Config {
	cfg.bindTimezone()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(judgeAPIKeyEnv); v != "" {
		c.Judge.APIKey = v
	}
	if v := os.Getenv(judgeModelEnv); v != "" {
		c.Judge.Model = v
	}
	if v := os.Getenv(gmailCredsEnv); v != "" {
		c.Gmail.CredentialsFile = v
	}
	if v := os.Getenv(gmailTokenEnv); v != "" {
		c.Gmail.TokenFile = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Run.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
		c.Run.Timezone = defaultTimezone
	}
	c.Run.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Run.MaxMessages > 0 {
		base.Run.MaxMessages = override.Run.MaxMessages
	}
	if override.Run.LookbackDays > 0 {
		base.Run.LookbackDays = override.Run.LookbackDays
	}
	if override.Run.Timezone != "" {
		base.Run.Timezone = override.Run.Timezone
	}

	if override.Gmail.CredentialsFile != "" {
		base.Gmail.CredentialsFile = override.Gmail.CredentialsFile
	}
	if override.Gmail.TokenFile != "" {
		base.Gmail.TokenFile = override.Gmail.TokenFile
	}
	if override.Gmail.Query != "" {
		base.Gmail.Query = override.Gmail.Query
	}

	if override.Calendar.CalendarID != "" {
		base.Calendar.CalendarID = override.Calendar.CalendarID
	}

	if override.State.StatePath != "" {
		base.State.StatePath = override.State.StatePath
	}
	if override.State.AuditPath != "" {
		base.State.AuditPath = override.State.AuditPath
	}

	if override.Judge.Endpoint != "" {
		base.Judge.Endpoint = override.Judge.Endpoint
	}
	if override.Judge.Model != "" {
		base.Judge.Model = override.Judge.Model
	}
	if override.Judge.APIKey != "" {
		base.Judge.APIKey = override.Judge.APIKey
	}
	if override.Judge.SystemPrompt != "" {
		base.Judge.SystemPrompt = override.Judge.SystemPrompt
	}

	if override.Classifier.Mode != "" {
		base.Classifier.Mode = override.Classifier.Mode
	}
	if override.Classifier.TrainedMinClass > 0 {
		base.Classifier.TrainedMinClass = override.Classifier.TrainedMinClass
	}
	if override.Classifier.TrainedAccept > 0 {
		base.Classifier.TrainedAccept = override.Classifier.TrainedAccept
	}
	if override.Classifier.CheckSender {
		base.Classifier.CheckSender = true
	}

	if override.Temporal.ProximityWindow > 0 {
		base.Temporal.ProximityWindow = override.Temporal.ProximityWindow
	}
	if override.Temporal.RequireContext {
		base.Temporal.RequireContext = true
	}

	if override.Title.ScanLines > 0 {
		base.Title.ScanLines = override.Title.ScanLines
	}
	if override.Title.MinLen > 0 {
		base.Title.MinLen = override.Title.MinLen
	}
	if override.Title.MaxLen > 0 {
		base.Title.MaxLen = override.Title.MaxLen
	}
	if override.Title.Fallback != "" {
		base.Title.Fallback = override.Title.Fallback
	}

	base.Vocab = mergeVocab(base.Vocab, override.Vocab)

	return base
}

func mergeVocab(base, override VocabConfig) VocabConfig {
	if len(override.ActionTerms) > 0 {
		base.ActionTerms = override.ActionTerms
	}
	if len(override.CompletionPhrases) > 0 {
		base.CompletionPhrases = override.CompletionPhrases
	}
	if len(override.HardExcludePhrases) > 0 {
		base.HardExcludePhrases = override.HardExcludePhrases
	}
	if len(override.HardExcludeSenders) > 0 {
		base.HardExcludeSenders = override.HardExcludeSenders
	}
	if len(override.StrongTerms) > 0 {
		base.StrongTerms = override.StrongTerms
	}
	if len(override.NoiseTerms) > 0 {
		base.NoiseTerms = override.NoiseTerms
	}
	if len(override.ScheduleContext) > 0 {
		base.ScheduleContext = override.ScheduleContext
	}
	if len(override.TitleBoilerplate) > 0 {
		base.TitleBoilerplate = override.TitleBoilerplate
	}
	return base
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Run: RunConfig{
			MaxMessages: 15,
			Timezone:    defaultTimezone,
			location:    tz,
		},
		Gmail: GmailConfig{
			CredentialsFile: "credentials.json",
			TokenFile:       "token.json",
			Query:           "in:inbox is:unread",
		},
		Calendar: CalendarConfig{CalendarID: "primary"},
		State: StateConfig{
			StatePath: "memory/gmail-calendar-sync-state.json",
			AuditPath: "memory/gmail-calendar-processed.jsonl",
		},
		Judge: JudgeConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You decide whether an email describes a schedulable commitment.",
		},
		Classifier: ClassifierConfig{
			Mode:            "auto",
			TrainedMinClass: 3,
			TrainedAccept:   0.55,
			CheckSender:     true,
		},
		Temporal: TemporalConfig{
			ProximityWindow: 40,
			RequireContext:  false,
		},
		Title: TitleConfig{
			ScanLines: 8,
			MinLen:    4,
			MaxLen:    80,
			Fallback:  "메일 기반 일정",
		},
		Vocab: defaultVocab(),
	}
}

func defaultVocab() VocabConfig {
	return VocabConfig{
		ActionTerms: []string{
			"회의", "미팅", "약속", "일정", "면담", "콜", "검토", "요청", "제출", "마감",
			"meeting", "appointment", "call", "deadline", "review", "request",
			"submit", "schedule", "due",
		},
		CompletionPhrases: []string{
			"완료되었습니다", "처리되었습니다", "처리 완료", "참고 부탁",
			"참고하시기 바랍니다", "회신 불필요",
			"has been completed", "no action required", "no action needed",
			"for your information", "fyi",
		},
		HardExcludePhrases: []string{
			"인증번호", "인증 코드", "본인 확인", "비밀번호 재설정",
			"뉴스레터", "수신거부", "구독 해지", "결제가 완료", "배송이 시작",
			"배송이 완료", "주문이 접수", "가입을 환영",
			"verification code", "verify your email", "password reset",
			"newsletter", "unsubscribe", "order confirmation", "your receipt",
			"payment received", "welcome aboard",
		},
		HardExcludeSenders: []string{
			"no-reply", "noreply", "do-not-reply", "donotreply",
			"newsletter", "mailer-daemon", "notifications@", "alerts@",
		},
		StrongTerms: []string{
			"회의", "미팅", "면담", "약속", "마감", "제출", "검토", "요청드립니다",
			"meeting", "appointment", "deadline", "submit", "review", "schedule",
		},
		NoiseTerms: []string{
			"광고", "홍보", "혜택", "쿠폰", "뉴스레터", "구독",
			"newsletter", "sale", "discount", "promo", "digest",
		},
		ScheduleContext: []string{
			"회의", "미팅", "약속", "일정", "면담", "마감", "제출",
			"meeting", "appointment", "deadline", "submission", "due",
		},
		TitleBoilerplate: []string{
			"안내드립니다", "안내 드립니다", "알려드립니다", "공지",
			"자동 발신", "automated message", "please see below",
		},
	}
}
