package cmd

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// printOutput writes v to the command output in the configured format. YAML
// output is converted from the JSON encoding so both formats carry the same
// field names.
func printOutput(cmd *cobra.Command, cfg Config, v interface{}) error {
	bz, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	if cfg.Output == OutputYAML {
		var generic interface{}
		if err := json.Unmarshal(bz, &generic); err != nil {
			return errors.Wrap(err, "failed to encode output")
		}

		if bz, err = yaml.Marshal(generic); err != nil {
			return errors.Wrap(err, "failed to encode output")
		}
	} else {
		bz = append(bz, '\n')
	}

	_, err = cmd.OutOrStdout().Write(bz)
	return err
}
