package internal

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"

	"github.com/mkloubert/editgate/pkg/config"
)

// LoadTLSConfig turns the configuration's TLS material into a tls.Config.
// A passphrase decrypts legacy RSA-encrypted PEM keys, kept for
// compatibility with existing deployments. With RejectUnauthorized the
// server demands a client certificate signed by the configured CA;
// otherwise a configured CA only verifies certificates clients volunteer.
func LoadTLSConfig(cfg *config.TLS) (*tls.Config, error) {
	if cfg == nil {
		return nil, nil
	}

	certPEM, err := os.ReadFile(cfg.Cert)
	if err != nil {
		return nil, fmt.Errorf("tls: read cert: %w", err)
	}
	keyPEM, err := os.ReadFile(cfg.Key)
	if err != nil {
		return nil, fmt.Errorf("tls: read key: %w", err)
	}

	if cfg.Passphrase != "" {
		if keyPEM, err = decryptKey(keyPEM, cfg.Passphrase); err != nil {
			return nil, err
		}
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, fmt.Errorf("tls: load key pair: %w", err)
	}

	out := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if cfg.CA != "" {
		caPEM, err := os.ReadFile(cfg.CA)
		if err != nil {
			return nil, fmt.Errorf("tls: read ca: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, fmt.Errorf("tls: no certificates in %s", cfg.CA)
		}
		out.ClientCAs = pool
		if cfg.RejectUnauthorized {
			out.ClientAuth = tls.RequireAndVerifyClientCert
		} else {
			out.ClientAuth = tls.VerifyClientCertIfGiven
		}
	}

	return out, nil
}

// decryptKey handles passphrase-protected PEM keys in the legacy RFC 1423
// encrypted form.
func decryptKey(keyPEM []byte, passphrase string) ([]byte, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("tls: key is not PEM encoded")
	}
	if !x509.IsEncryptedPEMBlock(block) {
		return keyPEM, nil
	}

	der, err := x509.DecryptPEMBlock(block, []byte(passphrase))
	if err != nil {
		return nil, fmt.Errorf("tls: decrypt key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: block.Type, Bytes: der}), nil
}
