package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	DBPath      string

	QueueWorkers int

	KnowledgeFile string

	BadWordsFile  string
	WatchBadWords bool

	FloodIntervalMS        int
	FloodMuteAfter         int
	FloodMuteSeconds       int
	FloodWarnThresholdsCSV string

	MemoryTTLMinutes int
	JanitorSpec      string

	TelegramToken string
	TelegramAPI   string
	TelegramPoll  int

	VKToken        string
	VKAPI          string
	VKConfirmation string
	VKSecret       string

	WebEnabled bool
}

func FromEnv() Config {
	dataDir := stringOrDefault("SUPPORTBOT_DATA_DIR", "/data")
	dbPath := stringOrDefault("SUPPORTBOT_DB_PATH", filepath.Join(dataDir, "supportbot", "support.sqlite"))

	return Config{
		Environment: stringOrDefault("SUPPORTBOT_ENV", "development"),
		HTTPAddr:    stringOrDefault("SUPPORTBOT_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		DBPath:      dbPath,

		QueueWorkers: intOrDefault("SUPPORTBOT_QUEUE_WORKERS", 2),

		KnowledgeFile: strings.TrimSpace(os.Getenv("SUPPORTBOT_KNOWLEDGE_FILE")),

		BadWordsFile:  strings.TrimSpace(os.Getenv("SUPPORTBOT_BAD_WORDS_FILE")),
		WatchBadWords: boolOrDefault("SUPPORTBOT_BAD_WORDS_WATCH", false),

		FloodIntervalMS:        intOrDefault("SUPPORTBOT_FLOOD_INTERVAL_MS", 1200),
		FloodMuteAfter:         intOrDefault("SUPPORTBOT_FLOOD_MUTE_AFTER", 4),
		FloodMuteSeconds:       intOrDefault("SUPPORTBOT_FLOOD_MUTE_SECONDS", 20),
		FloodWarnThresholdsCSV: stringOrDefault("SUPPORTBOT_FLOOD_WARN_THRESHOLDS", "2,4,6"),

		MemoryTTLMinutes: intOrDefault("SUPPORTBOT_MEMORY_TTL_MINUTES", 0),
		JanitorSpec:      stringOrDefault("SUPPORTBOT_JANITOR_SPEC", "@every 10m"),

		TelegramToken: os.Getenv("SUPPORTBOT_TELEGRAM_TOKEN"),
		TelegramAPI:   stringOrDefault("SUPPORTBOT_TELEGRAM_API_BASE", "https://api.telegram.org"),
		TelegramPoll:  intOrDefault("SUPPORTBOT_TELEGRAM_POLL_SECONDS", 25),

		VKToken:        os.Getenv("SUPPORTBOT_VK_TOKEN"),
		VKAPI:          stringOrDefault("SUPPORTBOT_VK_API_BASE", "https://api.vk.com/method"),
		VKConfirmation: strings.TrimSpace(os.Getenv("SUPPORTBOT_VK_CONFIRMATION")),
		VKSecret:       os.Getenv("SUPPORTBOT_VK_SECRET"),

		WebEnabled: boolOrDefault("SUPPORTBOT_WEB_ENABLED", true),
	}
}

// FloodWarnThresholds parses the CSV tier list, dropping entries that are not
// positive integers. An unusable list falls back to the default tiers.
func (c Config) FloodWarnThresholds() []int {
	var thresholds []int
	for _, field := range strings.Split(c.FloodWarnThresholdsCSV, ",") {
		parsed, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil || parsed < 1 {
			continue
		}
		thresholds = append(thresholds, parsed)
	}
	if len(thresholds) == 0 {
		return []int{2, 4, 6}
	}
	return thresholds
}

func stringOrDefault(name, fallback string) string {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(name string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return fallback
	}
	return parsed
}

func boolOrDefault(name string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
