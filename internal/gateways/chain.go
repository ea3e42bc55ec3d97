package gateways

import (
	"context"
	"crypto/ecdsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/holdr-id/wallet-node/internal/config"
	"github.com/holdr-id/wallet-node/internal/core/domain"
	"github.com/holdr-id/wallet-node/internal/log"
)

const defaultRPCTimeout = 10 * time.Second

// credential registry and proof verifier live behind one contract
const verifierContractABI = `[
	{"name":"getCredential","type":"function","stateMutability":"view",
		"inputs":[{"name":"id","type":"bytes16"}],
		"outputs":[
			{"name":"subject","type":"string"},
			{"name":"issuer","type":"string"},
			{"name":"credentialType","type":"uint8"},
			{"name":"status","type":"uint8"},
			{"name":"issuedAt","type":"uint64"},
			{"name":"expiresAt","type":"uint64"},
			{"name":"fields","type":"string"}]},
	{"name":"verifyProof","type":"function","stateMutability":"view",
		"inputs":[
			{"name":"circuitId","type":"string"},
			{"name":"proof","type":"bytes"},
			{"name":"publicInputs","type":"string[]"}],
		"outputs":[{"name":"","type":"bool"}]},
	{"name":"submitVerification","type":"function","stateMutability":"nonpayable",
		"inputs":[
			{"name":"circuitId","type":"string"},
			{"name":"proofHash","type":"bytes32"}],
		"outputs":[]}
]`

var credentialTypeByCode = []domain.CredentialType{
	domain.CredentialTypeEducation,
	domain.CredentialTypeHealth,
	domain.CredentialTypeEmployment,
	domain.CredentialTypeAge,
	domain.CredentialTypeAddress,
	domain.CredentialTypeCustom,
}

var credentialStatusByCode = []domain.CredentialStatus{
	domain.CredentialStatusActive,
	domain.CredentialStatusRevoked,
	domain.CredentialStatusExpired,
	domain.CredentialStatusSuspended,
}

// ChainGateway implements ports.ChainService against the verifier contract.
// Read calls work without a transactor key; SubmitVerification needs one.
type ChainGateway struct {
	client     *ethclient.Client
	abi        abi.ABI
	contract   common.Address
	chainID    *big.Int
	timeout    time.Duration
	transactor *ecdsa.PrivateKey
}

// NewChainGateway dials the rpc node and prepares the contract binding
func NewChainGateway(ctx context.Context, cfg config.Ethereum) (*ChainGateway, error) {
	if !common.IsHexAddress(cfg.VerifierContract) {
		return nil, errors.Errorf("invalid verifier contract address <%s>", cfg.VerifierContract)
	}
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "dialing ethereum rpc")
	}
	parsed, err := abi.JSON(strings.NewReader(verifierContractABI))
	if err != nil {
		return nil, errors.Wrap(err, "parsing verifier abi")
	}

	var key *ecdsa.PrivateKey
	if cfg.TransactorKey != "" {
		key, err = crypto.HexToECDSA(strings.TrimPrefix(cfg.TransactorKey, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "parsing transactor key")
		}
	}

	timeout := cfg.RPCResponseTimeout
	if timeout <= 0 {
		timeout = defaultRPCTimeout
	}
	log.Info(ctx, "chain gateway ready", "contract", cfg.VerifierContract, "chainID", cfg.ChainID)
	return &ChainGateway{
		client:     client,
		abi:        parsed,
		contract:   common.HexToAddress(cfg.VerifierContract),
		chainID:    big.NewInt(cfg.ChainID),
		timeout:    timeout,
		transactor: key,
	}, nil
}

// GetCredential fetches the chain view of a credential, including its
// current status
func (g *ChainGateway) GetCredential(ctx context.Context, id uuid.UUID) (*domain.Credential, error) {
	out, err := g.call(ctx, "getCredential", [16]byte(id))
	if err != nil {
		return nil, err
	}
	subject, _ := out[0].(string)
	if subject == "" {
		return nil, domain.ErrCredentialNotFound
	}
	issuer, _ := out[1].(string)
	typeCode, _ := out[2].(uint8)
	statusCode, _ := out[3].(uint8)
	issuedAt, _ := out[4].(uint64)
	expiresAt, _ := out[5].(uint64)
	fieldsJSON, _ := out[6].(string)

	credential := &domain.Credential{
		ID:             id,
		Subject:        subject,
		Issuer:         issuer,
		CredentialType: domain.CredentialTypeCustom,
		Status:         domain.CredentialStatusActive,
		IssuedAt:       time.Unix(int64(issuedAt), 0).UTC(),
		Fields:         map[string]string{},
	}
	if int(typeCode) < len(credentialTypeByCode) {
		credential.CredentialType = credentialTypeByCode[typeCode]
	}
	if int(statusCode) < len(credentialStatusByCode) {
		credential.Status = credentialStatusByCode[statusCode]
	}
	if expiresAt > 0 {
		exp := time.Unix(int64(expiresAt), 0).UTC()
		credential.ExpiresAt = &exp
	}
	if fieldsJSON != "" {
		if err := json.Unmarshal([]byte(fieldsJSON), &credential.Fields); err != nil {
			return nil, errors.Wrap(err, "decoding credential fields")
		}
	}
	return credential, nil
}

// VerifyProof checks a proof share against the on chain verifier
func (g *ChainGateway) VerifyProof(ctx context.Context, share *domain.ProofShare) (bool, error) {
	proofBytes, err := base64.StdEncoding.DecodeString(share.Proof)
	if err != nil {
		return false, errors.Wrap(err, "decoding proof")
	}
	out, err := g.call(ctx, "verifyProof", share.CircuitID, proofBytes, share.PublicInputs)
	if err != nil {
		return false, err
	}
	valid, ok := out[0].(bool)
	if !ok {
		return false, errors.New("unexpected verifyProof response")
	}
	return valid, nil
}

// SubmitVerification records a verification on chain and returns the
// transaction hash
func (g *ChainGateway) SubmitVerification(ctx context.Context, share *domain.ProofShare) (string, error) {
	if g.transactor == nil {
		return "", errors.New("submitting verifications requires a transactor key")
	}
	proofBytes, err := base64.StdEncoding.DecodeString(share.Proof)
	if err != nil {
		return "", errors.Wrap(err, "decoding proof")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(g.transactor, g.chainID)
	if err != nil {
		return "", errors.Wrap(err, "creating transaction signer")
	}
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	opts.Context = cctx

	bound := bind.NewBoundContract(g.contract, g.abi, g.client, g.client, g.client)
	tx, err := bound.Transact(opts, "submitVerification", share.CircuitID, crypto.Keccak256Hash(proofBytes))
	if err != nil {
		return "", errors.Wrap(err, "submitting verification")
	}
	log.Info(ctx, "verification submitted", "tx", tx.Hash().Hex(), "circuit", share.CircuitID)
	return tx.Hash().Hex(), nil
}

func (g *ChainGateway) call(ctx context.Context, method string, args ...any) ([]any, error) {
	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s call", method)
	}
	cctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	raw, err := g.client.CallContract(cctx, ethereum.CallMsg{To: &g.contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "calling %s", method)
	}
	out, err := g.abi.Unpack(method, raw)
	if err != nil {
		return nil, errors.Wrapf(err, "unpacking %s response", method)
	}
	return out, nil
}
