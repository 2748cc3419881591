package config

import (
	"encoding/json"
	"os"

	"github.com/mkurbatov/landledger/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty fields
// leave the current value untouched, so a partial file only overrides what
// it names.
type JsonConfig struct {
	SessionEndpoint string `json:"session_endpoint"`
	SessionAPIKey   string `json:"session_api_key"`
	DatabaseDSN     string `json:"database_dsn"`
	ChainRPCURL     string `json:"chain_rpc_url"`
	ContractAddress string `json:"contract_address"`
	KeystoreDir     string `json:"keystore_dir"`
	PrefsPath       string `json:"prefs_path"`

	S3BaseEndpoint string `json:"s3_base_endpoint"`
	S3Region       string `json:"s3_region"`
	S3AccessKey    string `json:"s3_access_key"`
	S3SecretKey    string `json:"s3_secret_key"`
	S3Bucket       string `json:"s3_bucket"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags (flagx.JsonConfigFlags); when neither
// is set nothing is loaded. Read or unmarshal errors panic, matching the
// fail-at-startup contract of LoadConfig.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlay(&cfg.SessionEndpoint, jc.SessionEndpoint)
	overlay(&cfg.SessionAPIKey, jc.SessionAPIKey)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.ChainRPCURL, jc.ChainRPCURL)
	overlay(&cfg.ContractAddress, jc.ContractAddress)
	overlay(&cfg.KeystoreDir, jc.KeystoreDir)
	overlay(&cfg.PrefsPath, jc.PrefsPath)
	overlay(&cfg.S3BaseEndpoint, jc.S3BaseEndpoint)
	overlay(&cfg.S3Region, jc.S3Region)
	overlay(&cfg.S3AccessKey, jc.S3AccessKey)
	overlay(&cfg.S3SecretKey, jc.S3SecretKey)
	overlay(&cfg.S3Bucket, jc.S3Bucket)
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
