package data

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Dir returns the data directory, honouring DATA_DIR when set.
func Dir() string {
	if d := os.Getenv("DATA_DIR"); d != "" {
		return d
	}
	return filepath.Join(os.ExpandEnv("$HOME/.hushmap"), "data")
}

// Save to disk
func Save(key, val string) error {
	path := Dir()
	file := filepath.Join(path, key)
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	return os.WriteFile(file, []byte(val), 0644)
}

// Load file from disk
func Load(key string) ([]byte, error) {
	return os.ReadFile(filepath.Join(Dir(), key))
}

// SaveJSON marshals val and writes it under key.
func SaveJSON(key string, val interface{}) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	path := Dir()
	file := filepath.Join(path, key)
	if err := os.MkdirAll(filepath.Dir(file), 0700); err != nil {
		return err
	}
	return os.WriteFile(file, b, 0644)
}

// LoadJSON reads the file under key and unmarshals it into val.
func LoadJSON(key string, val interface{}) error {
	b, err := os.ReadFile(filepath.Join(Dir(), key))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, val)
}

// Delete removes the file under key. Missing files are not an error.
func Delete(key string) error {
	err := os.Remove(filepath.Join(Dir(), key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
