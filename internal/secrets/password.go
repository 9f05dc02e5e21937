// Package secrets resolves credentials from the OS keychain with env
// fallbacks, so the config file never carries a password.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups this app's secrets in the OS keychain.
const KeyringService = "jobtrack"

func fromKeyringOrEnv(account string, envNames ...string) (string, error) {
	if strings.TrimSpace(account) != "" {
		pw, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	for _, name := range envNames {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("secret not found in keychain (%s) or env %v", account, envNames)
}

// GetIMAPPassword resolves the mailbox password for the configured account.
func GetIMAPPassword(username, host string) (string, error) {
	return fromKeyringOrEnv(imapAccount(username, host), "IMAP_PASSWORD")
}

func SetIMAPPassword(username, host, password string) error {
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, imapAccount(username, host), password)
}

func imapAccount(username, host string) string {
	return fmt.Sprintf("jobtrack:imap:%s@%s", username, host)
}

// GetModelAPIKey resolves the classification model API key.
func GetModelAPIKey() (string, error) {
	return fromKeyringOrEnv("jobtrack:model", "MODEL_API_KEY", "OPENAI_API_KEY")
}

// GetSMTPPassword resolves the notification sender password.
func GetSMTPPassword(from string) (string, error) {
	return fromKeyringOrEnv("jobtrack:smtp:"+from, "SMTP_PASSWORD")
}
