// Command plc-verify exercises the plcvalidate library against CBOR
// operation files from the command line: a worked example of the call
// shape a hosting on-chain validator would use, standing in for the
// transaction-dispatch layer this module does not implement.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log"
	"os"

	plcvalidate "github.com/primal-host/ckb-plc-verify"
	"github.com/primal-host/ckb-plc-verify/internal/cliconfig"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "genesis":
		err = runGenesis(os.Args[2:])
	case "chain":
		err = runChain(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("plc-verify: %v", err)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: plc-verify genesis -op <file> -did <hex> -key-index <n>")
	fmt.Fprintln(os.Stderr, "       plc-verify chain -manifest <file>")
}

func runGenesis(args []string) error {
	fs := flag.NewFlagSet("genesis", flag.ExitOnError)
	opPath := fs.String("op", "", "path to the genesis operation's CBOR bytes")
	didHex := fs.String("did", "", "expected 15-byte binary DID, hex-encoded")
	keyIndex := fs.Int("key-index", 0, "rotation key index used for the self-signature")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *opPath == "" || *didHex == "" {
		return fmt.Errorf("genesis: -op and -did are required")
	}

	opBytes, err := os.ReadFile(*opPath)
	if err != nil {
		return fmt.Errorf("read operation file: %w", err)
	}
	didBytes, err := hex.DecodeString(*didHex)
	if err != nil {
		return fmt.Errorf("decode -did: %w", err)
	}
	if len(didBytes) != 15 {
		return fmt.Errorf("-did must decode to exactly 15 bytes, got %d", len(didBytes))
	}
	var binaryDid [15]byte
	copy(binaryDid[:], didBytes)

	if verr := plcvalidate.ValidateGenesisOperation(opBytes, binaryDid, *keyIndex); verr != nil {
		return fmt.Errorf("rejected: %w (exit %d)", verr, verr.Code.ExitCode())
	}
	log.Printf("genesis operation %s accepted", *opPath)
	return nil
}

func runChain(args []string) error {
	fs := flag.NewFlagSet("chain", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "path to a JSON manifest describing the chain")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *manifestPath == "" {
		return fmt.Errorf("chain: -manifest is required")
	}

	m, err := cliconfig.Load(*manifestPath)
	if err != nil {
		return err
	}

	didBytes, err := hex.DecodeString(m.BinaryDidHex)
	if err != nil || len(didBytes) != 15 {
		return fmt.Errorf("manifest binaryDidHex must decode to exactly 15 bytes")
	}
	var binaryDid [15]byte
	copy(binaryDid[:], didBytes)

	history := make([][]byte, len(m.OperationFiles))
	for i, p := range m.OperationFiles {
		b, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read operation file %s: %w", p, err)
		}
		history[i] = b
	}

	msg, err := hex.DecodeString(m.FinalMessageHex)
	if err != nil {
		return fmt.Errorf("decode finalMessageHex: %w", err)
	}
	finalSig, err := hex.DecodeString(m.FinalSigHex)
	if err != nil {
		return fmt.Errorf("decode finalSigHex: %w", err)
	}

	if verr := plcvalidate.ValidateOperationHistory(binaryDid, history, m.KeyIndices, msg, finalSig); verr != nil {
		return fmt.Errorf("rejected: %w (exit %d)", verr, verr.Code.ExitCode())
	}
	log.Printf("chain of %d operations accepted", len(history))
	return nil
}
