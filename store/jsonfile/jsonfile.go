package jsonfile

import (
	"encoding/json"
	"os"
	"strings"
)

const ProviderKey = "jsonfile"

type Provider struct {
	dataDirectory string
}

func FromJson(data []byte) (*Provider, error) {
	cfg := struct {
		DataDirectory string `json:"dataDirectory"`
	}{}

	if err := json.Unmarshal(data, &cfg); err == nil {
		return New(cfg.DataDirectory), nil
	} else {
		return nil, err
	}
}

func New(dataDirectory string) *Provider {
	return &Provider{dataDirectory: dataDirectory}
}

// Connect ensures the data directory exists so first writes succeed.
func (p Provider) Connect() error {
	return os.MkdirAll(p.dataDirectory, 0o755)
}

func (p Provider) Close() error { return nil }

func (p Provider) filePath(dataType, filename string) string {
	return strings.TrimRight(p.dataDirectory, "/") + "/" + dataType + "." + filename + ".json"
}

func (p Provider) fileData(filePath string) []byte {
	bytes, _ := os.ReadFile(filePath)
	return bytes
}

func (p Provider) writeJson(filePath string, v any) error {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, bytes, 0o644)
}
