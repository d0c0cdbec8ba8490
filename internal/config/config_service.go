package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// GraphConfig — настройки одного графа ссылок (html или md)
type GraphConfig struct {
	DelaySeconds int      `yaml:"delay_seconds"`
	MaxPasses    int      `yaml:"max_passes"`
	DeadLinks    []string `yaml:"dead_links"`
}

type Config struct {
	Env             string      `yaml:"env"`
	BaseURL         string      `yaml:"base_url"`
	AvailabilityURL string      `yaml:"availability_url"`
	Timestamp       string      `yaml:"timestamp"`
	UserAgent       string      `yaml:"user_agent"`
	OutDir          string      `yaml:"out_dir"`
	StartPage       string      `yaml:"start_page"`
	ExportDir       string      `yaml:"export_dir"`
	HTML            GraphConfig `yaml:"html"`
	MD              GraphConfig `yaml:"md"`
}

// Default возвращает конфигурацию по умолчанию: зеркало wiki.bash-hackers.org
// на срезе 2023-03-02, мёртвые ссылки собраны вручную по логам экспорта
func Default() *Config {
	return &Config{
		Env:             "local",
		BaseURL:         "https://wiki.bash-hackers.org",
		AvailabilityURL: "https://archive.org/wayback/available",
		Timestamp:       "20230302",
		UserAgent:       "firefox",
		OutDir:          ".",
		StartPage:       "start",
		ExportDir:       "_export",
		HTML: GraphConfig{
			DelaySeconds: 1,
			MaxPasses:    5,
			DeadLinks: []string{
				"pagead/js/adsbygoogle.js",
				"dict/terms/exit_code",
				"dict/terms/filename",
				"dict/terms/ctime",
				"dict/terms/positional_parameter",
				"dict/start",
				"dict/terms/atime",
				"dict/terms/variable",
				"dict/terms/shebang",
				"dict/terms/return_status",
			},
		},
		MD: GraphConfig{
			DelaySeconds: 2,
			MaxPasses:    2,
			DeadLinks: []string{
				"commands/builtin/true",
				"commands/builtin/source",
				"commands/builtin/false",
				"commands/builtin/continueBreak",
				"commands/builtin/times",
				"commands/builtin/command",
				"dict/terms/file",
				"dict/terms/hardlink",
				"dict/terms/directory",
				"commands/builtin/alias",
				"commands/builtin/hash",
				"commands/builtin/fc",
				"commands/builtin/select",
				"commands/builtin/continuebreak",
			},
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad читает конфиг из CONFIG_PATH, без переменной — значения по умолчанию
func MustLoad() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		return Default()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
