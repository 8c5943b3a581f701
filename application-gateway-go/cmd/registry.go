package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRegisterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <role>",
		Short: "Register the calling identity under a role (PATIENT deploys a record contract)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).SubmitTransaction("RegisterParticipant", args[0])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("role", args[0]).Info("participant registered")
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <identity>",
		Short: "Look up the record contract tracked for an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).EvaluateTransaction("LookupRecordContract", args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			if len(result) == 0 {
				fmt.Println("no record contract tracked for this identity")
				return nil
			}
			fmt.Println(string(result))
			return nil
		},
	}
}

func newRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <identity>",
		Short: "Show the registered role of an identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).EvaluateTransaction("GetParticipantRole", args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			if len(result) == 0 {
				fmt.Println("identity never registered")
				return nil
			}
			fmt.Println(string(result))
			return nil
		},
	}
}

func newRequestsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requests",
		Short: "List the funding-request sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).EvaluateTransaction("GetFundingRequests")
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newRequestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "request <index>",
		Short: "Show one funding request by index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.ParseUint(args[0], 10, 64); err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).EvaluateTransaction("GetFundingRequest", args[0])
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}

func newSubmitQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit-quote <round-id> <price> <decimals>",
		Short: "Submit a price quote (requires the oracle feed attribute)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			_, err = conn.contract(registryContractName).SubmitTransaction("SubmitPriceQuote", args[0], args[1], args[2])
			if err != nil {
				return fmt.Errorf("failed to submit transaction: %w", err)
			}
			log.WithField("round", args[0]).Info("price quote submitted")
			return nil
		},
	}
}

func newQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote",
		Short: "Show the latest price quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := connect()
			if err != nil {
				return err
			}
			defer conn.Close()

			result, err := conn.contract(registryContractName).EvaluateTransaction("GetLatestPriceQuote")
			if err != nil {
				return fmt.Errorf("failed to evaluate transaction: %w", err)
			}
			fmt.Println(formatJSON(result))
			return nil
		},
	}
}
