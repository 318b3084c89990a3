// Command generate_key prints a fresh analytics signing key in hex and
// bech32 form, ready to paste into analytics.private_key.
package main

import (
	"fmt"
	"os"

	"github.com/OpenTollGate/awareness-food/src/analytics"
	"github.com/nbd-wtf/go-nostr"
)

func main() {
	privateKeyHex := nostr.GeneratePrivateKey()
	fmt.Println("Hex Private Key:", privateKeyHex)

	nsec, err := analytics.EncodeBech32("nsec", privateKeyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Bech32 Encoded Private Key (nsec):", nsec)

	npub, err := analytics.Npub(privateKeyHex)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println("Analytics feed (npub):", npub)
}
