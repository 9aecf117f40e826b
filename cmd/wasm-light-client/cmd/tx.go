package cmd

import (
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cosmos/wasm-light-client/modules/light-clients/08-wasm/types"
)

const flagChecksum = "checksum"

// TxResult is the output of a transaction command.
type TxResult struct {
	Height   int64            `json:"height" yaml:"height"`
	ClientID string           `json:"client_id,omitempty" yaml:"client_id,omitempty"`
	Status   string           `json:"status,omitempty" yaml:"status,omitempty"`
	Events   sdk.StringEvents `json:"events" yaml:"events"`
}

// runTx executes fn in a new block and prints the events of the block. The
// block is committed only when fn succeeds.
func runTx(cmd *cobra.Command, v *viper.Viper, fn func(ctx sdk.Context, app *App, result *TxResult) error) error {
	cfg, app, err := openApp(cmd, v)
	if err != nil {
		return err
	}
	defer closeApp(app)

	t, err := blockTime(cmd, time.Now().UTC())
	if err != nil {
		return err
	}

	result := TxResult{}
	events, err := app.DeliverTx(t, func(ctx sdk.Context) error {
		return fn(ctx, app, &result)
	})
	if err != nil {
		return err
	}

	result.Height = app.LastBlockHeight()
	result.Events = sdk.StringifyEvents(events.ToABCIEvents())
	return printOutput(cmd, cfg, result)
}

func newCreateClientCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-client [path/to/client-state.json] [path/to/consensus-state.json]",
		Short: "Create a new wasm light client from its initial client and consensus states",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			checksum, err := readChecksum(cmd)
			if err != nil {
				return err
			}

			clientState, err := readJSONFile(args[0], &types.ClientState{})
			if err != nil {
				return err
			}

			consensusState, err := readJSONFile(args[1], &types.ConsensusState{})
			if err != nil {
				return err
			}

			return runTx(cmd, v, func(ctx sdk.Context, app *App, result *TxResult) error {
				clientID, err := app.ClientKeeper.CreateClient(ctx, checksum, clientState, consensusState)
				if err != nil {
					return err
				}

				result.ClientID = clientID
				result.Status = app.ClientKeeper.GetClientStatus(ctx, clientID).String()
				return nil
			})
		},
	}

	cmd.Flags().String(flagChecksum, "", "hex encoded sha256 checksum of the light client code")
	addBlockTimeFlag(cmd)
	return cmd
}

func newUpdateClientCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update-client [client-id] [path/to/header.json]",
		Short: "Update a client with a header of the counterparty chain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			header := &types.Header{}
			if _, err := readJSONFile(args[1], header); err != nil {
				return err
			}

			return submitClientMessage(cmd, v, args[0], types.NewHeaderMessage(header))
		},
	}

	addBlockTimeFlag(cmd)
	return cmd
}

func newSubmitMisbehaviourCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit-misbehaviour [client-id] [path/to/misbehaviour.json]",
		Short: "Freeze a client with evidence of two conflicting headers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			misbehaviour := &types.Misbehaviour{}
			if _, err := readJSONFile(args[1], misbehaviour); err != nil {
				return err
			}

			return submitClientMessage(cmd, v, args[0], types.NewMisbehaviourMessage(misbehaviour))
		},
	}

	addBlockTimeFlag(cmd)
	return cmd
}

func submitClientMessage(cmd *cobra.Command, v *viper.Viper, clientID string, clientMsg *types.ClientMessage) error {
	return runTx(cmd, v, func(ctx sdk.Context, app *App, result *TxResult) error {
		if err := app.ClientKeeper.UpdateClient(ctx, clientID, clientMsg); err != nil {
			return err
		}

		result.ClientID = clientID
		result.Status = app.ClientKeeper.GetClientStatus(ctx, clientID).String()
		return nil
	})
}

func newUpgradeClientCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upgrade-client [client-id] [path/to/upgrade.json]",
		Short: "Upgrade a client to the client and consensus states committed by the counterparty",
		Long: `Upgrade a client to the client and consensus states committed by the counterparty.
The file holds the upgraded states and their proofs:

  {"upgrade_client_state": ..., "upgrade_consensus_state": ...,
   "proof_upgrade_client": ..., "proof_upgrade_consensus_state": ...}

where every value is base64 encoded.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var msg types.VerifyUpgradeAndUpdateStateMsg
			if _, err := readJSONFile(args[1], &msg); err != nil {
				return err
			}

			clientID := args[0]
			return runTx(cmd, v, func(ctx sdk.Context, app *App, result *TxResult) error {
				if err := app.ClientKeeper.UpgradeClient(ctx, clientID,
					msg.UpgradeClientState, msg.UpgradeConsensusState,
					msg.ProofUpgradeClient, msg.ProofUpgradeConsensusState,
				); err != nil {
					return err
				}

				result.ClientID = clientID
				result.Status = app.ClientKeeper.GetClientStatus(ctx, clientID).String()
				return nil
			})
		},
	}

	addBlockTimeFlag(cmd)
	return cmd
}

func newRecoverClientCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover-client [subject-client-id] [substitute-client-id]",
		Short: "Recover a frozen or expired client with the state of an active substitute",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			subjectClientID, substituteClientID := args[0], args[1]
			return runTx(cmd, v, func(ctx sdk.Context, app *App, result *TxResult) error {
				if err := app.ClientKeeper.RecoverClient(ctx, subjectClientID, substituteClientID); err != nil {
					return err
				}

				result.ClientID = subjectClientID
				result.Status = app.ClientKeeper.GetClientStatus(ctx, subjectClientID).String()
				return nil
			})
		},
	}

	addBlockTimeFlag(cmd)
	return cmd
}

func readChecksum(cmd *cobra.Command) ([]byte, error) {
	value, err := cmd.Flags().GetString(flagChecksum)
	if err != nil {
		return nil, err
	}

	checksum, err := hex.DecodeString(value)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s", flagChecksum)
	}
	if err := types.ValidateChecksum(checksum); err != nil {
		return nil, err
	}
	return checksum, nil
}

// readJSONFile decodes the JSON file at path into v and returns its raw bytes.
func readJSONFile(path string, v interface{}) ([]byte, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	return bz, nil
}
