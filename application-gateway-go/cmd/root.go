// Package cmd implements the operator CLI for the record network. Every
// subcommand opens a Fabric Gateway connection with the configured client
// identity and submits or evaluates one chaincode transaction.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var log = logrus.New()

var rootCmd = &cobra.Command{
	Use:   "recordnetwork",
	Short: "Operator CLI for the medical record registry network",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if viper.GetBool("verbose") {
			log.SetLevel(logrus.DebugLevel)
		}
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("msp-id", "Org1MSP", "MSP id of the client organization")
	flags.String("cert-path", "", "path to the client signing certificate")
	flags.String("key-path", "", "path to the client private key directory")
	flags.String("tls-cert-path", "", "path to the peer TLS CA certificate")
	flags.String("peer-endpoint", "localhost:7051", "gateway peer endpoint")
	flags.String("gateway-peer", "peer0.org1.example.com", "gateway peer server name override")
	flags.String("channel", "mychannel", "channel name")
	flags.String("chaincode", "recordnetwork", "chaincode name")
	flags.Bool("verbose", false, "enable debug logging")

	cobra.CheckErr(viper.BindPFlags(flags))
	viper.SetEnvPrefix("RECORDNETWORK")
	viper.AutomaticEnv()

	viper.SetConfigName("recordnetwork")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.recordnetwork")
	if err := viper.ReadInConfig(); err == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("loaded configuration file")
	}

	rootCmd.AddCommand(
		newRegisterCmd(),
		newLookupCmd(),
		newRoleCmd(),
		newRequestsCmd(),
		newRequestCmd(),
		newSubmitQuoteCmd(),
		newQuoteCmd(),
		newGrantMintCmd(),
		newGrantEditorCmd(),
		newGrantReaderCmd(),
		newMintCmd(),
		newUpdateCmd(),
		newReadCmd(),
		newFundCmd(),
		newMaterialsCmd(),
		newInstanceCmd(),
	)
}
