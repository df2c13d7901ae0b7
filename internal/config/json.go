// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Vladimir Panarin

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		ReplicaID string `json:"replica_id"`
		Version   string `json:"version"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		WSAddress      string   `json:"ws_address"`
		RequestTimeout Duration `json:"request_timeout"`
		AuthToken      string   `json:"auth_token"`
	} `json:"adapter,omitempty"`

	Sync struct {
		Concurrency      int      `json:"concurrency"`
		MaxAttempts      int      `json:"max_attempts"`
		BackoffBase      Duration `json:"backoff_base"`
		BackoffCap       Duration `json:"backoff_cap"`
		BreakerThreshold int      `json:"breaker_threshold"`
		BreakerCooldown  Duration `json:"breaker_cooldown"`
		ShutdownGrace    Duration `json:"shutdown_grace"`
	} `json:"sync,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			ReplicaID: jsonCfg.App.ReplicaID,
			Version:   jsonCfg.App.Version,
		},
		Storage: Storage{
			DB: DB{
				DSN: jsonCfg.Storage.DB.DSN,
			},
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			WSAddress:      jsonCfg.Adapter.WSAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			AuthToken:      jsonCfg.Adapter.AuthToken,
		},
		Sync: Sync{
			Concurrency:      jsonCfg.Sync.Concurrency,
			MaxAttempts:      jsonCfg.Sync.MaxAttempts,
			BackoffBase:      time.Duration(jsonCfg.Sync.BackoffBase),
			BackoffCap:       time.Duration(jsonCfg.Sync.BackoffCap),
			BreakerThreshold: jsonCfg.Sync.BreakerThreshold,
			BreakerCooldown:  time.Duration(jsonCfg.Sync.BreakerCooldown),
			ShutdownGrace:    time.Duration(jsonCfg.Sync.ShutdownGrace),
		},
		JSONFilePath: "",
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
