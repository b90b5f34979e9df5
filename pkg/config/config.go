// Copyright 2026 ccpemu project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package config loads JSON configs (with # comment lines) and YAML documents into structs,
// rejecting unknown fields.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"regexp"

	"github.com/google/ccpemu/pkg/osutil"
	"gopkg.in/yaml.v3"
)

func LoadFile(filename string, cfg any) error {
	if filename == "" {
		return fmt.Errorf("no config file specified")
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return LoadData(data, cfg)
}

var commentRe = regexp.MustCompile(`(^|\n)\s*#[^\n]*`)

func LoadData(data []byte, cfg any) error {
	if err := checkType(cfg); err != nil {
		return err
	}
	// Remove comment lines starting with #.
	data = commentRe.ReplaceAll(data, nil)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func LoadYAMLFile(filename string, cfg any) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read %v: %w", filename, err)
	}
	if err := LoadYAMLData(data, cfg); err != nil {
		return fmt.Errorf("%v: %w", filename, err)
	}
	return nil
}

func LoadYAMLData(data []byte, cfg any) error {
	if err := checkType(cfg); err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to parse yaml: %w", err)
	}
	return nil
}

func SaveFile(filename string, cfg any) error {
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	return osutil.WriteFile(filename, data)
}

// MergeJSONData overrides fields of left with the fields present in right.
// Nested objects are merged recursively, all other values are replaced.
func MergeJSONData(left, right []byte) ([]byte, error) {
	vLeft := map[string]any{}
	if err := json.Unmarshal(left, &vLeft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal left: %w", err)
	}
	vRight := map[string]any{}
	if len(bytes.TrimSpace(right)) != 0 {
		if err := json.Unmarshal(right, &vRight); err != nil {
			return nil, fmt.Errorf("failed to unmarshal right: %w", err)
		}
	}
	return json.Marshal(mergeRecursive(vLeft, vRight))
}

func mergeRecursive(left, right map[string]any) map[string]any {
	for key, rv := range right {
		rm, rok := rv.(map[string]any)
		lm, lok := left[key].(map[string]any)
		if rok && lok {
			left[key] = mergeRecursive(lm, rm)
			continue
		}
		left[key] = rv
	}
	return left
}

func checkType(cfg any) error {
	typ := reflect.TypeOf(cfg)
	if typ == nil || typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("config type is not pointer to struct")
	}
	return nil
}
