package cmd

import (
	"bytes"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/hyperledger/fabric-gateway/pkg/client"
	"github.com/hyperledger/fabric-gateway/pkg/identity"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
)

const (
	registryContractName = "RegistryContract"
	recordContractName   = "RecordContract"
)

// gatewayConnection bundles the gRPC connection and the gateway so callers
// can close both.
type gatewayConnection struct {
	grpcConn *grpc.ClientConn
	gateway  *client.Gateway
}

func (c *gatewayConnection) Close() {
	c.gateway.Close()
	c.grpcConn.Close()
}

// contract returns a named contract of the configured chaincode.
func (c *gatewayConnection) contract(name string) *client.Contract {
	network := c.gateway.GetNetwork(viper.GetString("channel"))
	return network.GetContractWithName(viper.GetString("chaincode"), name)
}

// connect opens a Gateway connection for the configured client identity.
func connect() (*gatewayConnection, error) {
	grpcConn, err := newGrpcConnection()
	if err != nil {
		return nil, err
	}

	id, err := newIdentity()
	if err != nil {
		grpcConn.Close()
		return nil, err
	}
	sign, err := newSign()
	if err != nil {
		grpcConn.Close()
		return nil, err
	}

	gw, err := client.Connect(
		id,
		client.WithSign(sign),
		client.WithClientConnection(grpcConn),
		client.WithEvaluateTimeout(5*time.Second),
		client.WithEndorseTimeout(15*time.Second),
		client.WithSubmitTimeout(5*time.Second),
		client.WithCommitStatusTimeout(1*time.Minute),
	)
	if err != nil {
		grpcConn.Close()
		return nil, fmt.Errorf("failed to connect to gateway: %w", err)
	}

	log.WithField("peer", viper.GetString("peer-endpoint")).Debug("connected to gateway")
	return &gatewayConnection{grpcConn: grpcConn, gateway: gw}, nil
}

// newGrpcConnection creates a gRPC connection to the Gateway server.
func newGrpcConnection() (*grpc.ClientConn, error) {
	certificate, err := loadCertificate(viper.GetString("tls-cert-path"))
	if err != nil {
		return nil, err
	}

	certPool := x509.NewCertPool()
	certPool.AddCert(certificate)
	transportCredentials := credentials.NewClientTLSFromCert(certPool, viper.GetString("gateway-peer"))

	connection, err := grpc.Dial(viper.GetString("peer-endpoint"), grpc.WithTransportCredentials(transportCredentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}
	return connection, nil
}

// newIdentity creates a client identity for this Gateway connection using
// an X.509 certificate.
func newIdentity() (*identity.X509Identity, error) {
	certificate, err := loadCertificate(viper.GetString("cert-path"))
	if err != nil {
		return nil, err
	}
	return identity.NewX509Identity(viper.GetString("msp-id"), certificate)
}

func loadCertificate(filename string) (*x509.Certificate, error) {
	certificatePEM, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}
	return identity.CertificateFromPEM(certificatePEM)
}

// newSign creates a function that generates a digital signature from a
// message digest using the first private key in the configured directory.
func newSign() (identity.Sign, error) {
	keyPath := viper.GetString("key-path")
	files, err := os.ReadDir(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no private key found in %s", keyPath)
	}
	privateKeyPEM, err := os.ReadFile(path.Join(keyPath, files[0].Name()))
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	privateKey, err := identity.PrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, err
	}
	return identity.NewPrivateKeySign(privateKey)
}

// formatJSON pretty-prints a chaincode result for the terminal.
func formatJSON(data []byte) string {
	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, data, "", "  "); err != nil {
		return string(data)
	}
	return prettyJSON.String()
}
