package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// envKey overrides the saved key.
const envKey = "NP_API_KEY"

// ---- config/key store ----

type keyFile struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	KeyPrefix string    `json:"key_prefix"`
	Server    string    `json:"server"`
	SavedAt   time.Time `json:"saved_at"`
}

func cfgDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "neuralpress")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "neuralpress")
}

func keyPath() string { return filepath.Join(cfgDir(), "key.json") }

func saveKey(kf keyFile) error {
	if err := os.MkdirAll(cfgDir(), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(keyPath(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(kf)
}

func loadKeyFile() (keyFile, error) {
	var kf keyFile
	b, err := os.ReadFile(keyPath())
	if err != nil {
		return kf, err
	}
	if err := json.Unmarshal(b, &kf); err != nil {
		return kf, err
	}
	if kf.Key == "" {
		return kf, errors.New("saved key file is empty")
	}
	return kf, nil
}

// loadKey returns the key from the environment or the key file.
func loadKey() (string, error) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}
	kf, err := loadKeyFile()
	if err != nil {
		return "", errors.New("no API key (run `np keys create` or set " + envKey + ")")
	}
	return kf.Key, nil
}
