package utils

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stellar/go/clients/horizonclient"
	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
)

// EnvelopeTimeout bounds how long an unsigned premium envelope stays valid.
const EnvelopeTimeout = 300

const stroopDigits = 7

var ErrBadSignature = errors.New("signature does not match address")

type StellarClientInterface interface {
	ValidateAccount(accountID string) error
	BuildPremiumTx(subscriber, poolAccount, assetCode, issuer, stroops, memo string) (string, error)
}

type StellarClient struct {
	client            *horizonclient.Client
	networkPassphrase string
}

func NewStellarClient(horizonURL, networkPassphrase string) StellarClientInterface {
	return &StellarClient{
		client:            &horizonclient.Client{HorizonURL: horizonURL},
		networkPassphrase: networkPassphrase,
	}
}

func (s *StellarClient) ValidateAccount(accountID string) error {
	_, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: accountID})
	if err != nil {
		return fmt.Errorf("invalid or non-existent account: %w", err)
	}
	return nil
}

// BuildPremiumTx returns the base64 XDR of an unsigned premium payment from
// subscriber to the pool account. The subscriber signs and submits it from
// their wallet.
func (s *StellarClient) BuildPremiumTx(subscriber, poolAccount, assetCode, issuer, stroops, memo string) (string, error) {
	sourceAccount, err := s.client.AccountDetail(horizonclient.AccountRequest{AccountID: subscriber})
	if err != nil {
		return "", fmt.Errorf("failed to load source account: %w", err)
	}

	amount, err := StroopsToAmount(stroops)
	if err != nil {
		return "", err
	}

	tx, err := BuildPaymentTx(&sourceAccount, poolAccount, assetCode, issuer, amount, memo)
	if err != nil {
		return "", err
	}

	xdr, err := tx.Base64()
	if err != nil {
		return "", fmt.Errorf("failed to encode transaction to XDR: %w", err)
	}
	return xdr, nil
}

// BuildPaymentTx builds a single-payment transaction. XLM (or an empty
// code) selects the native asset.
func BuildPaymentTx(source txnbuild.Account, destination, assetCode, issuer, amount, memo string) (*txnbuild.Transaction, error) {
	var asset txnbuild.Asset
	if assetCode == "" || assetCode == "XLM" {
		asset = txnbuild.NativeAsset{}
	} else {
		asset = txnbuild.CreditAsset{Code: assetCode, Issuer: issuer}
	}

	params := txnbuild.TransactionParams{
		SourceAccount:        source,
		IncrementSequenceNum: true,
		BaseFee:              txnbuild.MinBaseFee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(EnvelopeTimeout)},
		Operations: []txnbuild.Operation{
			&txnbuild.Payment{
				Destination: destination,
				Amount:      amount,
				Asset:       asset,
			},
		},
	}
	if memo != "" {
		params.Memo = txnbuild.MemoText(memo)
	}

	tx, err := txnbuild.NewTransaction(params)
	if err != nil {
		return nil, fmt.Errorf("failed to build payment transaction: %w", err)
	}
	return tx, nil
}

// StroopsToAmount converts an integer stroop count to the 7-decimal amount
// string Stellar operations expect.
func StroopsToAmount(stroops string) (string, error) {
	d, err := decimal.NewFromString(stroops)
	if err != nil || !d.IsInteger() || d.IsNegative() {
		return "", fmt.Errorf("invalid stroop amount %q", stroops)
	}
	return d.Shift(-stroopDigits).StringFixed(stroopDigits), nil
}

// VerifySignature checks a base64 ed25519 signature of message against a
// Stellar public address.
func VerifySignature(address, message, signature string) error {
	kp, err := keypair.ParseAddress(address)
	if err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("invalid signature encoding: %w", err)
	}
	if err := kp.Verify([]byte(message), sig); err != nil {
		return ErrBadSignature
	}
	return nil
}
