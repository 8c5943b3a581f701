package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGrantMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-mint <contract-id> <identity>",
		Short: "Grant an identity a one-shot mint approval",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			_, err = conn.contract(recordContractName).SubmitTransaction("GrantMintApproval", args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("identity", args[1]).Info("mint approval granted")
			return nil
		},
	}
}

func newGrantEditorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-editor <contract-id> <identity>",
		Short: "Grant an identity a standing editor approval",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			_, err = conn.contract(recordContractName).SubmitTransaction("GrantEditorApproval", args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("identity", args[1]).Info("editor approval granted")
			return nil
		},
	}
}

func newGrantReaderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant-reader <contract-id> <token-id> <identity>",
		Short: "Grant an identity read access to one token",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			_, err = conn.contract(recordContractName).SubmitTransaction("GrantReaderApproval", args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("identity", args[2]).Info("reader approval granted")
			return nil
		},
	}
}

func newMintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mint <contract-id> <content-pointer>",
		Short: "Mint a material with its off-chain content pointer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(recordContractName).SubmitTransaction("MintMaterial", args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update <contract-id> <token-id> <content-pointer>",
		Short: "Rewrite the content pointer of a minted material",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			_, err = conn.contract(recordContractName).SubmitTransaction("UpdateContentPointer", args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("token", args[1]).Info("content pointer updated")
			return nil
		},
	}
}

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <contract-id> <token-id>",
		Short: "Read a token's content pointer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(recordContractName).EvaluateTransaction("ReadContentPointer", args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(string(result))
			return nil
		},
	}
}

func newFundCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fund <contract-id> <statement> <amount-usd>",
		Short: "Raise a funding request against the registry",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(recordContractName).SubmitTransaction("RaiseFundingRequest", args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("amountUsd", args[2]).Info("funding request raised")
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "materials <contract-id>",
		Short: "List the materials of a record contract (administrator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(recordContractName).EvaluateTransaction("GetMaterials", args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newInstanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instance <contract-id>",
		Short: "Show a record contract's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(recordContractName).EvaluateTransaction("GetRecordInstance", args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}
