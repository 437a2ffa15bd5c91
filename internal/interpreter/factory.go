package interpreter

import (
	"fmt"
	"log/slog"

	"bankmetrics/internal/config"
	"bankmetrics/internal/port"
)

// ProviderFactory is a function that creates an Interpreter from a provider config.
type ProviderFactory func(cfg *config.InterpreterProviderConfig) (port.Interpreter, error)

// registry of interpreter provider factories, populated by init() in each provider package
// or explicitly via RegisterProvider.
var providers = map[string]ProviderFactory{}

// RegisterProvider registers an interpreter provider factory by name.
func RegisterProvider(name string, factory ProviderFactory) {
	providers[name] = factory
}

// NewInterpreter creates an Interpreter from a provider config using the registered factory.
func NewInterpreter(cfg *config.InterpreterProviderConfig) (port.Interpreter, error) {
	factory, ok := providers[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown interpreter provider: %s", cfg.Provider)
	}
	return factory(cfg)
}

// NewFromConfig builds the configured interpreter chain. A single provider is returned
// as is; secondary and tertiary providers are wrapped in a FallbackInterpreter.
func NewFromConfig(cfg *config.InterpreterConfig, logger *slog.Logger) (port.Interpreter, error) {
	tiers := []*config.InterpreterProviderConfig{cfg.PrimaryConfig(), cfg.SecondaryConfig(), cfg.TertiaryConfig()}

	var interpreters []port.Interpreter
	var names []string
	for _, tier := range tiers {
		if tier == nil {
			continue
		}
		in, err := NewInterpreter(tier)
		if err != nil {
			return nil, err
		}
		interpreters = append(interpreters, in)
		names = append(names, tier.Provider)
	}

	if len(interpreters) == 1 {
		return interpreters[0], nil
	}
	return NewFallbackInterpreter(interpreters, names, logger), nil
}
