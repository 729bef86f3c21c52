package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"

	"engagehub/internal/feed"
)

const linkSharedABI = `[{
	"anonymous": false,
	"inputs": [
		{"indexed": true, "name": "user", "type": "address"},
		{"indexed": false, "name": "link", "type": "string"}
	],
	"name": "LinkShared",
	"type": "event"
}]`

const linkSharedEvent = "LinkShared"

var (
	ErrInvalidContract = errors.New("invalid link contract address")
	ErrMalformedLog    = errors.New("malformed LinkShared log")
)

// EthConfig configures an EthSource.
type EthConfig struct {
	RPCURL   string
	WSURL    string // empty disables live subscriptions
	Contract string
	// Lookback bounds how many blocks behind head RecentLinks scans.
	Lookback uint64
	// StartBlock is the deployment block; scans never go below it.
	StartBlock uint64
}

// EthSource reads LinkShared events from the link contract over JSON-RPC.
type EthSource struct {
	cfg      EthConfig
	client   *ethclient.Client
	ws       *ethclient.Client
	contract common.Address
	abi      abi.ABI
	topic    common.Hash
}

// NewEthSource dials the configured endpoints.
func NewEthSource(ctx context.Context, cfg EthConfig) (*EthSource, error) {
	if !common.IsHexAddress(cfg.Contract) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContract, cfg.Contract)
	}

	parsed, err := parseLinkSharedABI()
	if err != nil {
		return nil, err
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	s := &EthSource{
		cfg:      cfg,
		client:   client,
		contract: common.HexToAddress(cfg.Contract),
		abi:      parsed,
		topic:    parsed.Events[linkSharedEvent].ID,
	}

	if cfg.WSURL != "" {
		ws, err := ethclient.DialContext(ctx, cfg.WSURL)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("dial websocket: %w", err)
		}
		s.ws = ws
	}

	return s, nil
}

func parseLinkSharedABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(linkSharedABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse LinkShared abi: %w", err)
	}
	return parsed, nil
}

func (s *EthSource) query(from uint64) ethereum.FilterQuery {
	return ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(from),
		Addresses: []common.Address{s.contract},
		Topics:    [][]common.Hash{{s.topic}},
	}
}

// RecentLinks scans the lookback window and returns the newest limit shares.
func (s *EthSource) RecentLinks(ctx context.Context, limit int) ([]feed.RawLink, error) {
	head, err := s.client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head block: %w", err)
	}

	from := s.cfg.StartBlock
	if s.cfg.Lookback > 0 && head > s.cfg.Lookback && head-s.cfg.Lookback > from {
		from = head - s.cfg.Lookback
	}

	logs, err := s.client.FilterLogs(ctx, s.query(from))
	if err != nil {
		return nil, fmt.Errorf("filter LinkShared logs: %w", err)
	}

	links := make([]feed.RawLink, 0, len(logs))
	for _, lg := range logs {
		link, err := s.decode(lg)
		if err != nil {
			continue
		}
		links = append(links, link)
	}
	if limit > 0 && len(links) > limit {
		links = links[len(links)-limit:]
	}
	return links, nil
}

// OnLinkShared subscribes to new LinkShared logs over the websocket endpoint.
func (s *EthSource) OnLinkShared(ctx context.Context, handler func(feed.RawLink)) (Subscription, error) {
	if s.ws == nil {
		return nil, ErrLiveUnsupported
	}

	head, err := s.ws.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch head block: %w", err)
	}

	logs := make(chan types.Log, 16)
	sub, err := s.ws.SubscribeFilterLogs(ctx, s.query(head), logs)
	if err != nil {
		return nil, fmt.Errorf("subscribe LinkShared: %w", err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case lg := <-logs:
				if lg.Removed {
					continue
				}
				link, err := s.decode(lg)
				if err != nil {
					continue
				}
				handler(link)
			case <-done:
				return
			}
		}
	}()

	return &ethSub{sub: sub, done: done}, nil
}

// decode turns a LinkShared log into a raw link. The sender is the indexed
// topic; the link string is the ABI-encoded data.
func (s *EthSource) decode(lg types.Log) (feed.RawLink, error) {
	if len(lg.Topics) < 2 {
		return feed.RawLink{}, ErrMalformedLog
	}
	values, err := s.abi.Unpack(linkSharedEvent, lg.Data)
	if err != nil || len(values) != 1 {
		return feed.RawLink{}, ErrMalformedLog
	}
	link, ok := values[0].(string)
	if !ok {
		return feed.RawLink{}, ErrMalformedLog
	}
	return feed.RawLink{
		User:            common.BytesToAddress(lg.Topics[1].Bytes()).Hex(),
		Link:            link,
		TransactionHash: lg.TxHash.Hex(),
		BlockNumber:     lg.BlockNumber,
	}, nil
}

// Close releases the RPC connections.
func (s *EthSource) Close() {
	s.client.Close()
	if s.ws != nil {
		s.ws.Close()
	}
}

type ethSub struct {
	sub  ethereum.Subscription
	done chan struct{}
	once sync.Once
}

func (e *ethSub) Unsubscribe() {
	e.sub.Unsubscribe()
	e.once.Do(func() { close(e.done) })
}

func (e *ethSub) Err() <-chan error {
	return e.sub.Err()
}
