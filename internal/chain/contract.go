package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// landRegistryABI is the application binary interface of the deployed
// LandRegistry contract.
const landRegistryABI = `[
  {"type":"function","name":"registerProperty","stateMutability":"nonpayable","inputs":[{"name":"id","type":"string"},{"name":"owner","type":"address"},{"name":"location","type":"string"},{"name":"documentHash","type":"string"},{"name":"price","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"transferProperty","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"string"},{"name":"newOwner","type":"address"}],"outputs":[]},
  {"type":"function","name":"createMortgage","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"string"},{"name":"lender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"releaseMortgage","stateMutability":"nonpayable","inputs":[{"name":"propertyId","type":"string"}],"outputs":[]},
  {"type":"function","name":"getPropertyOwner","stateMutability":"view","inputs":[{"name":"propertyId","type":"string"}],"outputs":[{"name":"","type":"address"}]},
  {"type":"function","name":"getPropertyDetails","stateMutability":"view","inputs":[{"name":"propertyId","type":"string"}],"outputs":[{"name":"isRegistered","type":"bool"},{"name":"owner","type":"address"}]},
  {"type":"function","name":"getMortgageStatus","stateMutability":"view","inputs":[{"name":"propertyId","type":"string"}],"outputs":[{"name":"isMortgaged","type":"bool"},{"name":"lender","type":"address"},{"name":"amount","type":"uint256"}]},
  {"type":"function","name":"getVerificationStatus","stateMutability":"view","inputs":[{"name":"propertyId","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"getTransactionHistory","stateMutability":"view","inputs":[{"name":"propertyId","type":"string"}],"outputs":[{"name":"","type":"tuple[]","components":[{"name":"propertyId","type":"string"},{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"transactionType","type":"string"},{"name":"timestamp","type":"uint256"},{"name":"value","type":"uint256"}]}]}
]`

// historyRecord mirrors the tuple layout of getTransactionHistory for
// ABI decoding.
type historyRecord struct {
	PropertyId      string
	From            common.Address
	To              common.Address
	TransactionType string
	Timestamp       *big.Int
	Value           *big.Int
}

// Client is a connection to an EVM node with the LandRegistry contract
// bound at a fixed address.
type Client struct {
	eth      *ethclient.Client
	chainID  *big.Int
	address  common.Address
	parsed   abi.ABI
	contract *bind.BoundContract
}

// Dial connects to the node at rpcURL and binds the LandRegistry
// deployed at contractAddr.
func Dial(ctx context.Context, rpcURL string, contractAddr string) (*Client, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("contract address %q is not a hex address", contractAddr)
	}

	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", rpcURL, err)
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("query chain id: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(landRegistryABI))
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	address := common.HexToAddress(contractAddr)
	return &Client{
		eth:      eth,
		chainID:  chainID,
		address:  address,
		parsed:   parsed,
		contract: bind.NewBoundContract(address, parsed, eth, eth, eth),
	}, nil
}

func (c *Client) ChainID() *big.Int { return c.chainID }

func (c *Client) Close() { c.eth.Close() }

// Bind attaches the wallet's unlocked account to the contract for
// transacting. Read-only calls work without a bound wallet.
func (c *Client) Bind(w *KeystoreWallet) (*BoundRegistry, error) {
	account, err := w.Account()
	if err != nil {
		return nil, err
	}
	opts, err := bind.NewKeyStoreTransactorWithChainID(w.ks, account, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return &BoundRegistry{client: c, opts: opts}, nil
}

// BoundRegistry is the LandRegistry contract bound to a signing account.
type BoundRegistry struct {
	client *Client
	opts   *bind.TransactOpts
}

func (r *BoundRegistry) RegisterProperty(ctx context.Context, id, owner, location, documentHash string, priceWei *big.Int) (*Receipt, error) {
	ownerAddr, err := parseAddress(owner)
	if err != nil {
		return nil, err
	}
	return r.transact(ctx, "registerProperty", id, ownerAddr, location, documentHash, priceWei)
}

func (r *BoundRegistry) TransferProperty(ctx context.Context, propertyID, newOwner string) (*Receipt, error) {
	ownerAddr, err := parseAddress(newOwner)
	if err != nil {
		return nil, err
	}
	return r.transact(ctx, "transferProperty", propertyID, ownerAddr)
}

func (r *BoundRegistry) CreateMortgage(ctx context.Context, propertyID, lender string, amountWei *big.Int) (*Receipt, error) {
	lenderAddr, err := parseAddress(lender)
	if err != nil {
		return nil, err
	}
	return r.transact(ctx, "createMortgage", propertyID, lenderAddr, amountWei)
}

func (r *BoundRegistry) ReleaseMortgage(ctx context.Context, propertyID string) (*Receipt, error) {
	return r.transact(ctx, "releaseMortgage", propertyID)
}

func (r *BoundRegistry) PropertyOwner(ctx context.Context, propertyID string) (string, error) {
	return r.client.PropertyOwner(ctx, propertyID)
}

func (r *BoundRegistry) PropertyDetails(ctx context.Context, propertyID string) (*PropertyDetails, error) {
	return r.client.PropertyDetails(ctx, propertyID)
}

func (r *BoundRegistry) MortgageStatus(ctx context.Context, propertyID string) (*MortgageStatus, error) {
	return r.client.MortgageStatus(ctx, propertyID)
}

func (r *BoundRegistry) VerificationStatus(ctx context.Context, propertyID string) (bool, error) {
	return r.client.VerificationStatus(ctx, propertyID)
}

func (r *BoundRegistry) TransactionHistory(ctx context.Context, propertyID string) ([]HistoryEntry, error) {
	return r.client.TransactionHistory(ctx, propertyID)
}

// transact submits the call and waits for it to be mined. The returned
// Receipt reports whether the transaction succeeded on chain.
func (r *BoundRegistry) transact(ctx context.Context, method string, params ...interface{}) (*Receipt, error) {
	opts := *r.opts
	opts.Context = ctx

	tx, err := r.client.contract.Transact(&opts, method, params...)
	if err != nil {
		return nil, fmt.Errorf("submit %s: %w", method, err)
	}

	receipt, err := bind.WaitMined(ctx, r.client.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for %s: %w", method, err)
	}

	return &Receipt{
		TxHash:      receipt.TxHash.Hex(),
		BlockNumber: receipt.BlockNumber.Int64(),
		Succeeded:   receipt.Status == types.ReceiptStatusSuccessful,
	}, nil
}

func (c *Client) PropertyOwner(ctx context.Context, propertyID string) (string, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getPropertyOwner", propertyID); err != nil {
		return "", err
	}
	return out[0].(common.Address).Hex(), nil
}

func (c *Client) PropertyDetails(ctx context.Context, propertyID string) (*PropertyDetails, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getPropertyDetails", propertyID); err != nil {
		return nil, err
	}
	return &PropertyDetails{
		IsRegistered: out[0].(bool),
		Owner:        out[1].(common.Address).Hex(),
	}, nil
}

func (c *Client) MortgageStatus(ctx context.Context, propertyID string) (*MortgageStatus, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getMortgageStatus", propertyID); err != nil {
		return nil, err
	}
	return &MortgageStatus{
		IsMortgaged: out[0].(bool),
		Lender:      out[1].(common.Address).Hex(),
		AmountWei:   out[2].(*big.Int),
	}, nil
}

func (c *Client) VerificationStatus(ctx context.Context, propertyID string) (bool, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getVerificationStatus", propertyID); err != nil {
		return false, err
	}
	return out[0].(bool), nil
}

func (c *Client) TransactionHistory(ctx context.Context, propertyID string) ([]HistoryEntry, error) {
	var out []interface{}
	if err := c.call(ctx, &out, "getTransactionHistory", propertyID); err != nil {
		return nil, err
	}

	records := *abi.ConvertType(out[0], new([]historyRecord)).(*[]historyRecord)
	entries := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, HistoryEntry{
			PropertyID: rec.PropertyId,
			From:       rec.From.Hex(),
			To:         rec.To.Hex(),
			Type:       rec.TransactionType,
			Timestamp:  time.Unix(rec.Timestamp.Int64(), 0).UTC(),
			ValueWei:   rec.Value,
		})
	}
	return entries, nil
}

func (c *Client) call(ctx context.Context, out *[]interface{}, method string, params ...interface{}) error {
	opts := &bind.CallOpts{Context: ctx}
	if err := c.contract.Call(opts, out, method, params...); err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	return nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%q is not a hex address", s)
	}
	return common.HexToAddress(s), nil
}
