package usecases

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

type DerivationMode string

const (
	// DerivationPlaceholder renders display addresses from a hash of the mnemonic.
	DerivationPlaceholder DerivationMode = "placeholder"
	// DerivationBIP44 derives real keys from the BIP-39 seed.
	DerivationBIP44 DerivationMode = "bip44"
)

const (
	coinTypeEthereum = 60
	coinTypeTron     = 195
	coinTypeSolana   = 501
	coinTypeTON      = 607

	tronAddressPrefix = 0x41
	tonBounceableTag  = 0x11
	tonBaseWorkchain  = 0x00
)

func derivePlaceholder(mnemonic string) entities.DerivedAddresses {
	hash := base64.StdEncoding.EncodeToString([]byte(mnemonic))
	if len(hash) > 10 {
		hash = hash[:10]
	}

	return entities.DerivedAddresses{
		entities.ChainTON: "EQD" + hash + "xxxTONv4",
		entities.ChainBSC: "0x" + hash + "7f...3e4d",
		entities.ChainTRX: "T" + hash + "rx...Address",
		entities.ChainSOL: hash + "Solana...Key",
	}
}

// deriveBIP44 derives the first account of every chain:
//
//	BSC m/44'/60'/0'/0/0   TRX m/44'/195'/0'/0/0   (secp256k1, BIP-32)
//	SOL m/44'/501'/0'/0'   TON m/44'/607'/0'       (ed25519, SLIP-10)
//
// The TON value is the bounceable user-friendly form of the public key hash,
// not the address of a deployed wallet contract.
func deriveBIP44(mnemonic string) (entities.DerivedAddresses, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrInvalidMnemonic)
	}
	seed := bip39.NewSeed(mnemonic, "")
	defer clear(seed)

	master, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, fmt.Errorf("failed to create master key: %w", err)
	}

	bscKey, err := deriveSecp256k1(master, coinTypeEthereum)
	if err != nil {
		return nil, err
	}
	trxKey, err := deriveSecp256k1(master, coinTypeTron)
	if err != nil {
		return nil, err
	}

	solKey := ed25519.NewKeyFromSeed(slip10Ed25519(seed, hardened(44), hardened(coinTypeSolana), hardened(0), hardened(0)))
	tonKey := ed25519.NewKeyFromSeed(slip10Ed25519(seed, hardened(44), hardened(coinTypeTON), hardened(0)))
	tonPublic := tonKey.Public().(ed25519.PublicKey)

	return entities.DerivedAddresses{
		entities.ChainTON: tonUserFriendlyAddress(sha256.Sum256(tonPublic)),
		entities.ChainBSC: crypto.PubkeyToAddress(bscKey.PublicKey).Hex(),
		entities.ChainTRX: tronAddress(crypto.PubkeyToAddress(trxKey.PublicKey).Bytes()),
		entities.ChainSOL: solana.PrivateKey(solKey).PublicKey().String(),
	}, nil
}

func hardened(index uint32) uint32 {
	return bip32.FirstHardenedChild + index
}

func deriveSecp256k1(master *bip32.Key, coinType uint32) (*ecdsa.PrivateKey, error) {
	path := []uint32{hardened(44), hardened(coinType), hardened(0), 0, 0}

	key := master
	for _, index := range path {
		child, err := key.NewChildKey(index)
		if err != nil {
			return nil, fmt.Errorf("failed to derive child key for coin %d: %w", coinType, err)
		}
		key = child
	}

	privateKey, err := crypto.ToECDSA(key.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to convert key for coin %d: %w", coinType, err)
	}
	return privateKey, nil
}

// slip10Ed25519 returns the private key seed at a hardened-only SLIP-10 path.
func slip10Ed25519(seed []byte, path ...uint32) []byte {
	mac := hmac.New(sha512.New, []byte("ed25519 seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	key, chainCode := sum[:32], sum[32:]

	for _, index := range path {
		data := make([]byte, 0, 1+32+4)
		data = append(data, 0)
		data = append(data, key...)
		data = binary.BigEndian.AppendUint32(data, index)

		mac = hmac.New(sha512.New, chainCode)
		mac.Write(data)
		sum = mac.Sum(nil)
		key, chainCode = sum[:32], sum[32:]
	}
	return key
}

// tronAddress renders a 20 byte account id as base58check with the 0x41 prefix.
func tronAddress(account []byte) string {
	payload := make([]byte, 0, 1+len(account)+4)
	payload = append(payload, tronAddressPrefix)
	payload = append(payload, account...)

	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	payload = append(payload, second[:4]...)

	return base58.Encode(payload)
}

func tonUserFriendlyAddress(hash [32]byte) string {
	raw := make([]byte, 0, 36)
	raw = append(raw, tonBounceableTag, tonBaseWorkchain)
	raw = append(raw, hash[:]...)
	raw = binary.BigEndian.AppendUint16(raw, crc16XModem(raw))

	return base64.URLEncoding.EncodeToString(raw)
}

func crc16XModem(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for range 8 {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
