package models

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// GenesisPrevHash is the sentinel previous-hash of the genesis block.
const GenesisPrevHash = "0"

type Block struct {
	Index        uint64        `json:"index"`
	Timestamp    int64         `json:"timestamp"`
	Transactions []Transaction `json:"transactions"`
	PrevHash     string        `json:"prev_hash"`
	Nonce        uint64        `json:"nonce"`
	Hash         string        `json:"hash"`
}

// NewBlock constructs an unsealed block (nonce 0). The caller seals it
// with Mine before appending it to a chain.
func NewBlock(index uint64, transactions []Transaction, prevHash string) *Block {
	block := &Block{
		Index:        index,
		Timestamp:    time.Now().Unix(),
		Transactions: transactions,
		PrevHash:     prevHash,
	}
	block.Hash = block.CalculateHash()
	return block
}

// NewGenesisBlock constructs the fixed index-0 block with no transactions.
func NewGenesisBlock() *Block {
	return NewBlock(0, make([]Transaction, 0), GenesisPrevHash)
}

// CalculateHash computes the Keccak-256 digest of the block's canonical
// fields, rendered as hex. The transaction slice is serialized as JSON,
// which keeps field order stable across processes.
func (b *Block) CalculateHash() string {
	txData, _ := json.Marshal(b.Transactions)

	buffer := new(bytes.Buffer)
	binary.Write(buffer, binary.BigEndian, b.Index)
	buffer.WriteString(b.PrevHash)
	binary.Write(buffer, binary.BigEndian, b.Timestamp)
	buffer.Write(txData)
	binary.Write(buffer, binary.BigEndian, b.Nonce)

	digest := sha3.NewLegacyKeccak256()
	digest.Write(buffer.Bytes())
	return hex.EncodeToString(digest.Sum(nil))
}

// Mine seals the block in place: it increments Nonce from 0 until the
// hash starts with difficulty leading zero characters. Once sealed the
// block is never mutated.
func (b *Block) Mine(difficulty int) {
	target := strings.Repeat("0", difficulty)
	b.Nonce = 0
	for {
		b.Hash = b.CalculateHash()
		if strings.HasPrefix(b.Hash, target) {
			return
		}
		b.Nonce++
		if b.Nonce%1000 == 0 {
			time.Sleep(time.Microsecond) // Prevent CPU hogging
		}
	}
}

// Validate recomputes the hash and compares it to the stored one.
func (b *Block) Validate() bool {
	return b.Hash == b.CalculateHash()
}

// MeetsDifficulty reports whether the stored hash has the required
// leading-zero prefix.
func (b *Block) MeetsDifficulty(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}
