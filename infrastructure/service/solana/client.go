package solana

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	associatedtokenaccount "github.com/gagliardetto/solana-go/programs/associated-token-account"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/bluecarbon/registry-api/infrastructure/service/logger"
)

// Client implements the outbound.Ledger port against a Solana RPC node.
// It signs everything with the operator payer keypair. It does not retry
// and does not bound RPC calls beyond the caller's context.
type Client struct {
	rpc     *rpc.Client
	payer   solana.PrivateKey
	cluster string
	log     logger.Logger
}

// NewClient parses the payer secret and wires up the RPC client.
func NewClient(endpoint, cluster, payerSecret string, log logger.Logger) (*Client, error) {
	payer, err := parsePayerKey(payerSecret)
	if err != nil {
		return nil, err
	}
	return &Client{
		rpc:     rpc.New(endpoint),
		payer:   payer,
		cluster: cluster,
		log:     log,
	}, nil
}

func (c *Client) PayerAddress() string {
	return c.payer.PublicKey().String()
}

// Healthy pings the RPC node.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.rpc.GetHealth(ctx)
	return err
}

func (c *Client) GetBalance(ctx context.Context, account string) (uint64, error) {
	pub, err := solana.PublicKeyFromBase58(account)
	if err != nil {
		return 0, fmt.Errorf("invalid account address: %w", err)
	}
	res, err := c.rpc.GetBalance(ctx, pub, rpc.CommitmentFinalized)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch balance: %w", err)
	}
	return res.Value, nil
}

// CreateMint allocates a fresh mint account and initializes it with the
// payer as mint and freeze authority.
func (c *Client) CreateMint(ctx context.Context, decimals uint8) (string, error) {
	mintKey, err := solana.NewRandomPrivateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate mint keypair: %w", err)
	}

	rent, err := c.rpc.GetMinimumBalanceForRentExemption(ctx, token.MINT_SIZE, rpc.CommitmentFinalized)
	if err != nil {
		return "", fmt.Errorf("failed to fetch rent exemption: %w", err)
	}

	payerPub := c.payer.PublicKey()
	instructions := []solana.Instruction{
		system.NewCreateAccountInstruction(
			rent,
			token.MINT_SIZE,
			token.ProgramID,
			payerPub,
			mintKey.PublicKey(),
		).Build(),
		token.NewInitializeMintInstruction(
			decimals,
			mintKey.PublicKey(),
			payerPub,
			payerPub,
			solana.SysVarRentPubkey,
		).Build(),
	}

	sig, err := c.signAndSend(ctx, instructions, []solana.PrivateKey{c.payer, mintKey})
	if err != nil {
		return "", fmt.Errorf("failed to create mint: %w", err)
	}

	c.log.Info(ctx, "Mint account created", map[string]interface{}{
		"mint":      mintKey.PublicKey().String(),
		"decimals":  decimals,
		"signature": sig.String(),
	})
	return mintKey.PublicKey().String(), nil
}

// CreateOrGetAssociatedAccount ensures the owner's token account for the
// mint exists, creating it when absent.
func (c *Client) CreateOrGetAssociatedAccount(ctx context.Context, mint, owner string) (string, error) {
	mintPub, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint address: %w", err)
	}
	ownerPub, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return "", fmt.Errorf("invalid owner address: %w", err)
	}

	ataAddr, _, err := solana.FindAssociatedTokenAddress(ownerPub, mintPub)
	if err != nil {
		return "", fmt.Errorf("failed to derive associated token address: %w", err)
	}

	_, err = c.rpc.GetAccountInfo(ctx, ataAddr)
	if err == nil {
		return ataAddr.String(), nil
	}
	if !errors.Is(err, rpc.ErrNotFound) {
		return "", fmt.Errorf("failed to look up associated token account: %w", err)
	}

	create := associatedtokenaccount.NewCreateInstruction(
		c.payer.PublicKey(),
		ownerPub,
		mintPub,
	).Build()

	if _, err := c.signAndSend(ctx, []solana.Instruction{create}, []solana.PrivateKey{c.payer}); err != nil {
		return "", fmt.Errorf("failed to create associated token account: %w", err)
	}
	return ataAddr.String(), nil
}

// MintTo issues amount base units of the mint to the destination token
// account and returns the transaction signature.
func (c *Client) MintTo(ctx context.Context, mint, destination string, amount uint64) (string, error) {
	mintPub, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("invalid mint address: %w", err)
	}
	destPub, err := solana.PublicKeyFromBase58(destination)
	if err != nil {
		return "", fmt.Errorf("invalid destination address: %w", err)
	}

	ix := token.NewMintToInstruction(
		amount,
		mintPub,
		destPub,
		c.payer.PublicKey(),
		nil,
	).Build()

	sig, err := c.signAndSend(ctx, []solana.Instruction{ix}, []solana.PrivateKey{c.payer})
	if err != nil {
		return "", fmt.Errorf("failed to mint tokens: %w", err)
	}
	return sig.String(), nil
}

func (c *Client) ExplorerURL(signature string) string {
	url := "https://explorer.solana.com/tx/" + signature
	if c.cluster != "" && c.cluster != "mainnet-beta" {
		url += "?cluster=" + c.cluster
	}
	return url
}

func (c *Client) signAndSend(ctx context.Context, instructions []solana.Instruction, signers []solana.PrivateKey) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(instructions, recent.Value.Blockhash, solana.TransactionPayer(c.payer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to build transaction: %w", err)
	}

	_, err = tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		for i := range signers {
			if signers[i].PublicKey().Equals(key) {
				return &signers[i]
			}
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentFinalized,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}
