package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// Well-known seeds and the identities they produce.
const (
	TrusteeSeed   = "000000000000000000000000Trustee1"
	TrusteeDID    = "V4SGRU86Z58d6TV7PBUe6f"
	TrusteeVerkey = "GJ1SzoWzavQYfNL9XkaJdrQejfztN4XqdsiV4ct3LXKL"

	MySeed   = "00000000000000000000000000000My1"
	MyDID    = "VsKV7grR1BUE29mG2Fm2kX"
	MyVerkey = "GjZWsBLgZCR18aL468JAT7w9CZRiBnpxUPPgyQxh4voa"
	// MyAbbreviatedVerkey is MyVerkey relative to MyDID.
	MyAbbreviatedVerkey = "~HYwqs2vrTc8Tn4uBV7NBTe"

	IssuerDID = "NcYxiDXkpYi6ov5FcYDi1e"
)

// RawWalletKey is a fixed key for the RAW derivation method, so tests skip
// argon2.
const RawWalletKey = "4wBqpZM9xaSheZzJSMawUKKwhdpChKbZ5eu5ky4Vigw"

// WalletConfig returns the config of a fresh in-memory wallet.
func WalletConfig() string {
	return WalletConfigFor(uuid.NewString())
}

// WalletConfigFor returns an in-memory wallet config for id.
func WalletConfigFor(id string) string {
	return fmt.Sprintf(`{"id":%q,"storage_type":"inmem"}`, id)
}

// WalletCredentials returns credentials opening a wallet with RawWalletKey.
func WalletCredentials() string {
	return `{"key":"` + RawWalletKey + `","key_derivation_method":"RAW"}`
}
