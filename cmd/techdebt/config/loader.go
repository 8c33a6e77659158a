// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the per-project config file looked up in the scanned root.
const FileName = ".techdebt.yaml"

var (
	// ErrInvalidConfig wraps every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConfigExists is returned by WriteDefault when the file is present.
	ErrConfigExists = errors.New("config file already exists")
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load reads the configuration for a run.
//
// Description:
//
//	An explicit path must exist. Without one, <root>/.techdebt.yaml is
//	used when present and the defaults otherwise. Values from the file
//	are merged over DefaultConfig, then OPENAI_MODEL and OPENAI_BASE_URL
//	override the ai section, then the result is validated.
//
// Inputs:
//
//	path - Explicit config file (from --config), or "".
//	root - Project directory being scanned.
//
// Outputs:
//
//	TechDebtConfig - The merged configuration.
//	string - The file that was read, or "" when defaults were used.
//	error - Read, parse or validation failure.
func Load(path, root string) (TechDebtConfig, string, error) {
	cfg := DefaultConfig()

	if path == "" {
		candidate := filepath.Join(root, FileName)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, "", fmt.Errorf("failed to read the config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

func applyEnv(cfg *TechDebtConfig) {
	if model := strings.TrimSpace(os.Getenv("OPENAI_MODEL")); model != "" {
		cfg.AI.Model = model
	}
	if baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")); baseURL != "" {
		cfg.AI.BaseURL = baseURL
	}
}

// Validate checks struct tags and reports every failing field.
func Validate(cfg TechDebtConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			fields = append(fields, fmt.Sprintf("%s failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(fields, "; "))
}

// WriteDefault writes DefaultConfig to path, refusing to overwrite.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create the config directory %w", err)
		}
	}
	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
