package config

import (
	"maps"
	"sort"
)

func preset(model, integrator string, t0, y0, dt, tf float64) *Config {
	cfg := DefaultConfig()
	cfg.Model = model
	cfg.Integrator = integrator
	cfg.T0, cfg.Y0, cfg.Dt, cfg.TF = t0, y0, dt, tf
	return cfg
}

var Presets = map[string]map[string]*Config{
	"growth": {
		"unit":     preset("growth", "rk4", 0, 1, 0.1, 1),
		"adaptive": preset("growth", "rk45", 0, 1, 0.1, 1),
		"coarse":   preset("growth", "euler", 0, 1, 0.1, 1),
	},
	"decay": {
		"long":     preset("decay", "rk4", 0, 1, 0.01, 5),
		"adaptive": preset("decay", "rk45", 0, 1, 0.5, 5),
	},
	"logistic": {
		"seed":       preset("logistic", "rk4", 0, 0.01, 0.05, 10),
		"saturation": preset("logistic", "rk45", 0, 0.5, 0.1, 20),
	},
	"cooling": {
		"coffee": preset("cooling", "rk4", 0, 90, 0.1, 10),
	},
	"oscillating": {
		"periods": preset("oscillating", "rk45", 0, 0, 0.1, 20),
	},
	"blowup": {
		"safe":     preset("blowup", "rk4", 0, 0.5, 0.01, 1.5),
		"singular": preset("blowup", "rk45", 0, 1, 0.1, 2),
	},
}

func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	clone := *cfg
	clone.Params = maps.Clone(cfg.Params)
	return &clone
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
