package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		DataDir    string `yaml:"data_dir"`
		StatusPort int    `yaml:"status_port"`
	} `yaml:"app"`

	Polling struct {
		IntervalMinutes  int `yaml:"interval_minutes"`
		DaysBack         int `yaml:"days_back"`
		FirstRunMessages int `yaml:"first_run_messages"`
		OngoingMessages  int `yaml:"ongoing_messages"`
		RetentionDays    int `yaml:"retention_days"`
	} `yaml:"polling"`

	Mailbox struct {
		IMAPHost   string   `yaml:"imap_host"`
		IMAPPort   int      `yaml:"imap_port"`
		Username   string   `yaml:"username"`
		Folder     string   `yaml:"folder"`
		SenderAny  []string `yaml:"sender_any"`
		SubjectAny []string `yaml:"subject_any"`
	} `yaml:"mailbox"`

	Model struct {
		Enabled           bool    `yaml:"enabled"`
		Name              string  `yaml:"name"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
	} `yaml:"model"`

	Notify struct {
		SMTPHost   string   `yaml:"smtp_host"`
		SMTPPort   int      `yaml:"smtp_port"`
		From       string   `yaml:"from"`
		Recipients []string `yaml:"recipients"`
	} `yaml:"notify"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default is the config written on first start. The mailbox keyword
// heuristics mirror the advisory filter the run orchestrator relies on.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "."
	cfg.App.StatusPort = 38472

	cfg.Polling.IntervalMinutes = 15
	cfg.Polling.DaysBack = 1
	cfg.Polling.FirstRunMessages = 50
	cfg.Polling.OngoingMessages = 10
	cfg.Polling.RetentionDays = 30

	cfg.Mailbox.IMAPHost = "imap.gmail.com"
	cfg.Mailbox.IMAPPort = 993
	cfg.Mailbox.Folder = "INBOX"
	cfg.Mailbox.SenderAny = []string{"noreply", "careers", "jobs", "hr", "recruiting", "talent"}
	cfg.Mailbox.SubjectAny = []string{
		"application", "interview", "position", "opportunity", "thank you",
		"assessment", "coding", "technical", "next", "congratulations",
	}

	cfg.Model.Enabled = true
	cfg.Model.Name = "gpt-4o-mini"
	cfg.Model.RequestsPerSecond = 0.5

	cfg.Notify.SMTPHost = "smtp.gmail.com"
	cfg.Notify.SMTPPort = 587
	return cfg
}
