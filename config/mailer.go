package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	mail "github.com/go-mail/mail/v2"
)

type MailerConfig struct {
	Host          string
	Port          int
	User          string
	Pass          string
	From          string // e.g. "Document Tracker <no-reply@city.gov.ph>"
	SkipTLSVerify bool
	// Mailboxes maps a department to the address notified when a document reaches it.
	Mailboxes map[string]string
}

var (
	mailerMu  sync.RWMutex
	mailerCfg = loadMailerConfig()
)

func loadMailerConfig() MailerConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}
	return MailerConfig{
		Host:          os.Getenv("SMTP_HOST"),
		Port:          port,
		User:          os.Getenv("SMTP_USER"),
		Pass:          os.Getenv("SMTP_PASS"),
		From:          os.Getenv("SMTP_FROM"),
		SkipTLSVerify: os.Getenv("SMTP_SKIP_TLS_VERIFY") == "1",
		Mailboxes:     ParseMailboxes(os.Getenv("ROUTING_NOTIFY_MAILBOXES")),
	}
}

// ReloadMailerConfig re-reads the SMTP settings, e.g. after godotenv.Load.
func ReloadMailerConfig() {
	cfg := loadMailerConfig()
	mailerMu.Lock()
	mailerCfg = cfg
	mailerMu.Unlock()
}

// Mailer returns the current SMTP settings.
func Mailer() MailerConfig {
	mailerMu.RLock()
	defer mailerMu.RUnlock()
	return mailerCfg
}

// ParseMailboxes parses "Finance:finance@city.gov,HR:hr@city.gov".
func ParseMailboxes(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		dept, addr, ok := strings.Cut(pair, ":")
		dept = strings.TrimSpace(dept)
		addr = strings.TrimSpace(addr)
		if !ok || dept == "" || addr == "" {
			continue
		}
		out[dept] = addr
	}
	return out
}

func SendMail(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	cfg := Mailer()
	if cfg.Host == "" || cfg.From == "" {
		return fmt.Errorf("smtp not configured (SMTP_HOST/SMTP_FROM)")
	}

	m := mail.NewMessage()
	m.SetHeader("From", cfg.From)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)

	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return d.DialAndSend(m)
}
