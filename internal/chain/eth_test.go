package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func testDecoder(t *testing.T) *EthSource {
	t.Helper()
	parsed, err := parseLinkSharedABI()
	if err != nil {
		t.Fatalf("parseLinkSharedABI() error = %v", err)
	}
	return &EthSource{abi: parsed, topic: parsed.Events[linkSharedEvent].ID}
}

func TestLinkSharedTopic(t *testing.T) {
	s := testDecoder(t)
	want := crypto.Keccak256Hash([]byte("LinkShared(address,string)"))
	if s.topic != want {
		t.Errorf("topic = %s, want %s", s.topic.Hex(), want.Hex())
	}
}

func TestDecode(t *testing.T) {
	s := testDecoder(t)
	user := common.HexToAddress("0x5a3ddc1c12338bbbadd24469b3b01b236fc5761a")
	data, err := s.abi.Events[linkSharedEvent].Inputs.NonIndexed().Pack("https://farcaster.xyz/ertu")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	lg := types.Log{
		Topics:      []common.Hash{s.topic, common.BytesToHash(user.Bytes())},
		Data:        data,
		BlockNumber: 123,
		TxHash:      common.HexToHash("0xABCDEF"),
	}

	link, err := s.decode(lg)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}
	if link.User != user.Hex() {
		t.Errorf("User = %s, want %s", link.User, user.Hex())
	}
	if link.Link != "https://farcaster.xyz/ertu" {
		t.Errorf("Link = %q", link.Link)
	}
	if link.BlockNumber != 123 {
		t.Errorf("BlockNumber = %d", link.BlockNumber)
	}
	if link.TransactionHash != lg.TxHash.Hex() {
		t.Errorf("TransactionHash = %s", link.TransactionHash)
	}
}

func TestDecode_Malformed(t *testing.T) {
	s := testDecoder(t)

	tests := []struct {
		name string
		log  types.Log
	}{
		{"missing user topic", types.Log{Topics: []common.Hash{s.topic}}},
		{"garbage data", types.Log{Topics: []common.Hash{s.topic, {}}, Data: []byte{1, 2, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.decode(tt.log); !errors.Is(err, ErrMalformedLog) {
				t.Errorf("decode() error = %v, want ErrMalformedLog", err)
			}
		})
	}
}

func TestNewEthSource_InvalidContract(t *testing.T) {
	_, err := NewEthSource(context.Background(), EthConfig{RPCURL: "http://127.0.0.1:1", Contract: "not-an-address"})
	if !errors.Is(err, ErrInvalidContract) {
		t.Errorf("NewEthSource() error = %v, want ErrInvalidContract", err)
	}
}

func TestOnLinkShared_WithoutWebsocket(t *testing.T) {
	s := testDecoder(t)
	if _, err := s.OnLinkShared(context.Background(), nil); !errors.Is(err, ErrLiveUnsupported) {
		t.Errorf("OnLinkShared() error = %v, want ErrLiveUnsupported", err)
	}
}
