package main

import (
	"encoding/json"
	"fmt"
)

// Run executes the health command.
func (c *HealthCmd) Run(deps *Dependencies) error {
	health := deps.Extractor.HealthCheck(deps.Ctx)

	encoded, err := json.MarshalIndent(health, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode health report: %w", err)
	}
	fmt.Fprintln(deps.Stdout, string(encoded))
	return nil
}
